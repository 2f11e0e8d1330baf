package response

import (
	"net/http"

	"anoa.com/signupform/pkg/apperror"
	"anoa.com/signupform/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetSessionID retrieves the signup session ID set by the session middleware.
func GetSessionID(c *gin.Context) (uuid.UUID, error) {
	sessionIDStr, exists := c.Get("session_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := sessionIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	sessionID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return sessionID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		logger.Get().Error("internal error", zap.Error(err), zap.String("path", c.FullPath()))
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
