package handlers

import (
	"github.com/gin-gonic/gin"
	"nebulaverse/database"
	"nebulaverse/friendship"
	"nebulaverse/middleware"
)

// Publisher fans an event out to every connected client.
type Publisher interface {
	Publish(event string, payload interface{})
}

// Server holds the collaborators the HTTP handlers call into.
type Server struct {
	accounts *database.AccountStore
	posts    *database.PostStore
	friends  *friendship.Engine
	events   Publisher
}

func NewServer(accounts *database.AccountStore, posts *database.PostStore, friends *friendship.Engine, events Publisher) *Server {
	return &Server{
		accounts: accounts,
		posts:    posts,
		friends:  friends,
		events:   events,
	}
}

// NewRouter wires every route. ws may be nil when no real-time channel is
// served.
func NewRouter(s *Server, ws gin.HandlerFunc, corsOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(corsOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
		auth.POST("/logout", s.Logout)
		auth.GET("/me", middleware.AuthMiddleware(), s.GetCurrentAccount)
		auth.GET("/:id", middleware.AuthMiddleware(), s.GetAccount)
	}

	users := r.Group("/api/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/search", s.SearchUsers)
	}

	friends := r.Group("/api/friends")
	friends.Use(middleware.AuthMiddleware())
	{
		friends.GET("", s.GetFriends)
		friends.GET("/requests", s.GetFriendRequests)
		friends.POST("/send", s.SendFriendRequest)
		friends.POST("/:id/respond", s.RespondFriendRequest)
	}

	posts := r.Group("/api/posts")
	{
		posts.GET("", s.GetPosts)
		posts.GET("/user/:userId", s.GetPostsByUser)
		posts.POST("", middleware.AuthMiddleware(), s.CreatePost)
		posts.POST("/:id/like", middleware.AuthMiddleware(), s.LikePost)
		posts.POST("/:id/comment", middleware.AuthMiddleware(), s.CommentPost)
	}

	if ws != nil {
		r.GET("/ws", ws)
	}

	return r
}
