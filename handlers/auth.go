package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"nebulaverse/database"
	"nebulaverse/middleware"
	"nebulaverse/models"
	"nebulaverse/utils"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest accepts either the username or the email as the login.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string                 `json:"token"`
	User  models.AccountResponse `json:"user"`
}

func (s *Server) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalError(c, "failed to hash password")
		return
	}

	now := time.Now()
	account := &models.Account{
		ID:        utils.GenerateUUID(),
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashedPassword),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Create(c.Request.Context(), account); err != nil {
		if errors.Is(err, database.ErrAccountExists) {
			utils.BadRequest(c, err.Error())
			return
		}
		logrus.WithError(err).Error("failed to create account")
		utils.InternalError(c, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(account.ID)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	utils.Success(c, AuthResponse{
		Token: token,
		User:  *account.ToResponse(nil),
	})
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	login := strings.TrimSpace(req.Email)
	if login == "" {
		login = strings.TrimSpace(req.Username)
	} else {
		login = strings.ToLower(login)
	}
	if login == "" {
		utils.BadRequest(c, "username or email is required")
		return
	}

	account, err := s.accounts.FindByLogin(c.Request.Context(), login)
	if errors.Is(err, database.ErrNotFound) {
		utils.Unauthorized(c, "invalid credentials")
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to look up account")
		utils.InternalError(c, "database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(account.ID)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	friends, err := s.accounts.Friends(c.Request.Context(), account.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to load friends")
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, AuthResponse{
		Token: token,
		User:  *account.ToResponse(friends),
	})
}

// Logout is a no-op: tokens are stateless and dropped by the client.
func (s *Server) Logout(c *gin.Context) {
	utils.Success(c, nil)
}

func (s *Server) GetCurrentAccount(c *gin.Context) {
	s.writeAccount(c, middleware.GetUserID(c))
}

func (s *Server) GetAccount(c *gin.Context) {
	s.writeAccount(c, c.Param("id"))
}

func (s *Server) writeAccount(c *gin.Context, id string) {
	account, err := s.accounts.FindByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		utils.NotFound(c, "user not found")
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("account", id).Error("failed to load account")
		utils.InternalError(c, "database error")
		return
	}

	friends, err := s.accounts.Friends(c.Request.Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("account", id).Error("failed to load friends")
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, account.ToResponse(friends))
}
