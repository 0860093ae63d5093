package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eyewear-store/internal/auth"
)

const userIDKey = "userId"

// TokenParser is satisfied by *auth.Issuer.
type TokenParser interface {
	Parse(raw string) (primitive.ObjectID, error)
}

// UserAuth validates the bearer token and injects the userId into the context.
func UserAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c, tokens)
		if !ok {
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id set by UserAuth or AdminAuth.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}

func authenticate(c *gin.Context, tokens TokenParser) (primitive.ObjectID, bool) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		log.Println("[AUTH] [ERROR] missing token")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
		return primitive.NilObjectID, false
	}

	parts := strings.Fields(raw)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		log.Println("[AUTH] [ERROR] invalid token format")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return primitive.NilObjectID, false
	}

	userID, err := tokens.Parse(parts[1])
	if errors.Is(err, auth.ErrExpiredToken) {
		log.Println("[AUTH] [ERROR] token expired")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
		return primitive.NilObjectID, false
	}
	if err != nil {
		log.Println("[AUTH] [ERROR] token validation failed:", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return primitive.NilObjectID, false
	}

	return userID, true
}
