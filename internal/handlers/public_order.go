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
	"go.mongodb.org/mongo-driver/mongo/options"

	"eyewear-store/internal/catalog"
	"eyewear-store/internal/models"
)

var errEmptyCart = errors.New("cart is empty")

type checkoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
}

// buildOrderItems snapshots catalog prices for the cart. Lines whose product
// no longer exists are dropped.
func buildOrderItems(cart []models.CartItem, products map[primitive.ObjectID]models.CatalogItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart))
	for _, line := range cart {
		product, ok := products[line.ProductID]
		if !ok || line.Quantity <= 0 {
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			Price:     float64(product.Price),
		})
	}
	return items
}

func trimShippingAddress(a models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		Name:    strings.TrimSpace(a.Name),
		Address: strings.TrimSpace(a.Address),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Phone:   strings.TrimSpace(a.Phone),
	}
}

/* =========================
   CHECKOUT
========================= */

func Checkout(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req checkoutRequest
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
		if len(user.Cart) == 0 {
			respondWithError(c, http.StatusBadRequest, route, errEmptyCart.Error())
			return
		}

		products, err := store.FindMany(ctx, cartIDs(user.Cart))
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error creating order", err)
			return
		}
		items := buildOrderItems(user.Cart, products)
		if len(items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "cart has no available items")
			return
		}

		now := time.Now()
		order := models.Order{
			UserID:          userID,
			Items:           items,
			TotalAmount:     models.LineTotal(items),
			Status:          models.OrderPending,
			ShippingAddress: trimShippingAddress(req.ShippingAddress),
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error creating order", err)
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		// The order is already stored; a failed cart reset is only logged.
		if err := saveCart(c, db, userID, nil); err != nil {
			log.Printf("[ORDER] [WARN] order %s created but cart not cleared: %v", order.ID.Hex(), err)
		}

		log.Printf("[ORDER] [INFO] order %s created for user %s total=%.2f", order.ID.Hex(), userID.Hex(), order.TotalAmount)
		c.JSON(http.StatusCreated, order)
	}
}

/* =========================
   MY ORDERS
========================= */

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Orders could not be fetched", err)
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Failed to parse orders", err)
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func GetMyOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}
		orderID, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).Decode(&order)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching order", err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}
