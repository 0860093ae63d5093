package handlers

import (
	"errors"
	"log"
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

type cartAddRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type cartLine struct {
	ProductID primitive.ObjectID  `json:"productId"`
	Quantity  int                 `json:"quantity"`
	Product   *models.CatalogItem `json:"product"`
}

// addToCart merges into an existing line for the same product.
func addToCart(cart []models.CartItem, productID primitive.ObjectID, quantity int) []models.CartItem {
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity += quantity
			return cart
		}
	}
	return append(cart, models.CartItem{ProductID: productID, Quantity: quantity})
}

func setCartQuantity(cart []models.CartItem, productID primitive.ObjectID, quantity int) bool {
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity = quantity
			return true
		}
	}
	return false
}

func removeFromCart(cart []models.CartItem, productID primitive.ObjectID) ([]models.CartItem, bool) {
	out := make([]models.CartItem, 0, len(cart))
	found := false
	for _, line := range cart {
		if line.ProductID == productID {
			found = true
			continue
		}
		out = append(out, line)
	}
	return out, found
}

func cartIDs(cart []models.CartItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, line := range cart {
		ids = append(ids, line.ProductID)
	}
	return ids
}

func GetCart(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "GET /cart"
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

		products, err := store.FindMany(ctx, cartIDs(user.Cart))
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching cart", err)
			return
		}

		lines := make([]cartLine, 0, len(user.Cart))
		total := 0.0
		for _, item := range user.Cart {
			line := cartLine{ProductID: item.ProductID, Quantity: item.Quantity}
			if product, found := products[item.ProductID]; found {
				line.Product = &product
				total += float64(product.Price) * float64(item.Quantity)
			}
			lines = append(lines, line)
		}

		c.JSON(http.StatusOK, gin.H{"items": lines, "total": total})
	}
}

func AddToCart(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		var req cartAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if _, err := store.FindByID(ctx, productID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				respondWithError(c, http.StatusNotFound, route, "Product not found")
				return
			}
			respondWithCause(c, http.StatusInternalServerError, route, "Error adding to cart", err)
			return
		}

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusNotFound, route, "User not found", err)
			return
		}

		user.Cart = addToCart(user.Cart, productID, req.Quantity)
		if err := saveCart(c, db, userID, user.Cart); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		log.Printf("[CART] [INFO] user=%s added %s x%d", userID.Hex(), productID.Hex(), req.Quantity)
		c.JSON(http.StatusOK, gin.H{"cart": user.Cart})
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/:productId"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}
		productID, ok := parseObjectIDParam(c, route, "productId")
		if !ok {
			return
		}

		var req cartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusNotFound, route, "User not found", err)
			return
		}
		if !setCartQuantity(user.Cart, productID, req.Quantity) {
			respondWithError(c, http.StatusNotFound, route, "Item not in cart")
			return
		}

		if err := saveCart(c, db, userID, user.Cart); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": user.Cart})
	}
}

func RemoveFromCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:productId"
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

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusNotFound, route, "User not found", err)
			return
		}

		cart, found := removeFromCart(user.Cart, productID)
		if !found {
			respondWithError(c, http.StatusNotFound, route, "Item not in cart")
			return
		}
		if err := saveCart(c, db, userID, cart); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		if err := saveCart(c, db, userID, []models.CartItem{}); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": []models.CartItem{}})
	}
}

func saveCart(c *gin.Context, db *mongo.Database, userID primitive.ObjectID, cart []models.CartItem) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if cart == nil {
		cart = []models.CartItem{}
	}
	_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"cart": cart, "updatedAt": time.Now()},
	})
	return err
}
