package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ot-practice-api/internal/middleware"
	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
	"github.com/noah-isme/ot-practice-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireUserID writes a 401 and returns false when no authenticated user is present.
func requireUserID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}
