package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func Health(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /health"
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithCause(c, http.StatusServiceUnavailable, route, "database unavailable", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
