package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"eyewear-store/internal/catalog"
)

// GetCategories returns the category tree built from both catalog
// partitions.
func GetCategories(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		tree, err := store.Categories(ctx)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching categories", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"categories": tree})
	}
}
