package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blitzit/internal/lifecycle"
	"blitzit/internal/middleware"
	"blitzit/internal/repository"
)

// currentUserID reads the authenticated user; on failure the response is
// already written.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return authenticatedUserID, true
}

func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidColumn),
		errors.Is(err, lifecycle.ErrInvalidOrder),
		errors.Is(err, lifecycle.ErrInvalidPriority):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case repository.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateProject),
		errors.Is(err, repository.ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
