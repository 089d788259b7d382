package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"nebulaverse/database"
	"nebulaverse/middleware"
	"nebulaverse/models"
	"nebulaverse/utils"
)

const (
	EventNewPost     = "newPost"
	EventPostUpdated = "postUpdated"
)

const maxPostLength = 5000

type CreatePostRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) GetPosts(c *gin.Context) {
	s.writePosts(c, "")
}

func (s *Server) GetPostsByUser(c *gin.Context) {
	s.writePosts(c, c.Param("userId"))
}

func (s *Server) writePosts(c *gin.Context, authorID string) {
	posts, err := s.posts.List(c.Request.Context(), authorID)
	if err != nil {
		logrus.WithError(err).Error("failed to list posts")
		utils.InternalError(c, "database error")
		return
	}
	utils.Success(c, posts)
}

func (s *Server) CreatePost(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	text, ok := validText(c, req.Text)
	if !ok {
		return
	}

	author, ok := s.currentAccount(c, userID)
	if !ok {
		return
	}

	post := &models.Post{
		ID:        utils.GenerateUUID(),
		Author:    author.Ref(),
		Text:      text,
		Likes:     []string{},
		Comments:  []models.Comment{},
		CreatedAt: time.Now(),
	}
	if err := s.posts.Create(c.Request.Context(), post); err != nil {
		logrus.WithError(err).Error("failed to create post")
		utils.InternalError(c, "failed to create post")
		return
	}

	s.events.Publish(EventNewPost, post)
	utils.Success(c, post)
}

func (s *Server) LikePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	if _, err := s.posts.ToggleLike(c.Request.Context(), postID, userID); err != nil {
		writePostError(c, err, "failed to toggle like")
		return
	}

	s.publishUpdated(c, postID)
}

func (s *Server) CommentPost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	text, ok := validText(c, req.Text)
	if !ok {
		return
	}

	author, ok := s.currentAccount(c, userID)
	if !ok {
		return
	}

	comment := &models.Comment{
		ID:        utils.GenerateUUID(),
		Author:    author.Ref(),
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.posts.AddComment(c.Request.Context(), postID, comment); err != nil {
		writePostError(c, err, "failed to add comment")
		return
	}

	s.publishUpdated(c, postID)
}

func (s *Server) publishUpdated(c *gin.Context, postID string) {
	post, err := s.posts.Get(c.Request.Context(), postID)
	if err != nil {
		writePostError(c, err, "failed to reload post")
		return
	}

	s.events.Publish(EventPostUpdated, post)
	utils.Success(c, post)
}

// currentAccount loads the authenticated account, writing the error
// response itself when that fails.
func (s *Server) currentAccount(c *gin.Context, userID string) (*models.Account, bool) {
	account, err := s.accounts.FindByID(c.Request.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		utils.Unauthorized(c, "account no longer exists")
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).Error("failed to load account")
		utils.InternalError(c, "database error")
		return nil, false
	}
	return account, true
}

func validText(c *gin.Context, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		utils.BadRequest(c, "text is required")
		return "", false
	}
	if len([]rune(text)) > maxPostLength {
		utils.BadRequest(c, "text is too long")
		return "", false
	}
	return text, true
}

func writePostError(c *gin.Context, err error, msg string) {
	if errors.Is(err, database.ErrNotFound) {
		utils.NotFound(c, "post not found")
		return
	}
	logrus.WithError(err).Error(msg)
	utils.InternalError(c, "database error")
}
