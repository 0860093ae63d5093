package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eyewear-store/internal/catalog"
	"eyewear-store/internal/models"
)

type wishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// GetWishlist returns the saved items in the order they were added.
// Products deleted since are skipped.
func GetWishlist(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "GET /wishlist"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusNotFound, route, "User not found", err)
			return
		}

		products, err := store.FindMany(ctx, user.Wishlist)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching wishlist", err)
			return
		}

		ordered := make([]models.CatalogItem, 0, len(products))
		for _, id := range user.Wishlist {
			if product, found := products[id]; found {
				ordered = append(ordered, product)
			}
		}

		c.JSON(http.StatusOK, gin.H{"wishlist": ordered})
	}
}

func AddToWishlist(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "POST /wishlist"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		var req wishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if _, err := store.FindByID(ctx, productID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				respondWithError(c, http.StatusNotFound, route, "Product not found")
				return
			}
			respondWithCause(c, http.StatusInternalServerError, route, "Error updating wishlist", err)
			return
		}

		_, err = db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$addToSet": bson.M{"wishlist": productID},
			"$set":      bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "wishlist updated"})
	}
}

func RemoveFromWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /wishlist/:productId"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}
		productID, ok := parseObjectIDParam(c, route, "productId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"wishlist": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "wishlist updated"})
	}
}
