package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"nebulaverse/friendship"
	"nebulaverse/middleware"
	"nebulaverse/utils"
)

type SendFriendRequestBody struct {
	To string `json:"to" binding:"required"`
}

type RespondFriendRequestBody struct {
	Action string `json:"action" binding:"required"`
}

func (s *Server) GetFriends(c *gin.Context) {
	userID := middleware.GetUserID(c)

	friends, err := s.accounts.Friends(c.Request.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("failed to list friends")
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, friends)
}

func (s *Server) GetFriendRequests(c *gin.Context) {
	userID := middleware.GetUserID(c)

	requests, err := s.friends.ListPending(c.Request.Context(), userID)
	if err != nil {
		writeFriendshipError(c, err)
		return
	}

	utils.Success(c, requests)
}

func (s *Server) SendFriendRequest(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req SendFriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if !utils.IsUUID(req.To) {
		writeFriendshipError(c, friendship.ErrTargetNotFound)
		return
	}

	created, err := s.friends.Send(c.Request.Context(), userID, req.To)
	if err != nil {
		writeFriendshipError(c, err)
		return
	}

	utils.Success(c, created)
}

func (s *Server) RespondFriendRequest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	requestID := c.Param("id")

	var req RespondFriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	action, err := friendship.ParseAction(req.Action)
	if err != nil {
		writeFriendshipError(c, err)
		return
	}

	if !utils.IsUUID(requestID) {
		writeFriendshipError(c, friendship.ErrRequestNotFound)
		return
	}

	updated, err := s.friends.Respond(c.Request.Context(), userID, requestID, action)
	if err != nil {
		writeFriendshipError(c, err)
		return
	}

	utils.Success(c, updated)
}

// friendshipStatus maps an engine failure to its HTTP status.
func friendshipStatus(err error) int {
	switch {
	case errors.Is(err, friendship.ErrTargetNotFound), errors.Is(err, friendship.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, friendship.ErrNotAuthorized):
		return http.StatusForbidden
	case friendship.IsDomainError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeFriendshipError(c *gin.Context, err error) {
	status := friendshipStatus(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		utils.InternalError(c, "database error")
		return
	}
	utils.Error(c, status, err.Error())
}
