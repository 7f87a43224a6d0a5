package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nurse-assist/nai-admin-api/internal/middleware"
	"github.com/nurse-assist/nai-admin-api/internal/models"
	"github.com/nurse-assist/nai-admin-api/internal/service"
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

// actorFromContext assembles audit attribution for the current request.
func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if claims := claimsFromContext(c); claims != nil {
		id := claims.UserID
		actor.ID = &id
		actor.Email = claims.Email
	}
	return actor
}
