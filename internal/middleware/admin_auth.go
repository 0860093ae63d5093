package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminAuth authenticates the bearer token, then loads the user and requires
// isAdmin. Admin rights are read from the store on every request so a
// demotion takes effect immediately.
func AdminAuth(db *mongo.Database, tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c, tokens)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user struct {
			IsAdmin bool `bson:"isAdmin"`
		}
		opts := options.FindOne().SetProjection(bson.M{"isAdmin": 1})
		err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Println("[AUTH] [ERROR] admin user not found:", userID.Hex())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] admin lookup failed:", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if !user.IsAdmin {
			log.Println("[AUTH] [ERROR] admin access denied:", userID.Hex())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Admins only."})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
