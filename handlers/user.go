package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"nebulaverse/middleware"
	"nebulaverse/utils"
)

const searchLimit = 20

func (s *Server) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.BadRequest(c, "search query is required")
		return
	}

	userID := middleware.GetUserID(c)

	users, err := s.accounts.Search(c.Request.Context(), query, userID, searchLimit)
	if err != nil {
		logrus.WithError(err).Error("failed to search accounts")
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, users)
}
