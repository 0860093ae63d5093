package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eyewear-store/internal/models"
)

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// populateOrderUsers attaches owner name and email. Orders whose owner was
// deleted are left without a user.
func populateOrderUsers(ctx context.Context, db *mongo.Database, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	seen := map[primitive.ObjectID]struct{}{}
	ids := bson.A{}
	for _, order := range orders {
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		ids = append(ids, order.UserID)
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "firstName": 1, "lastName": 1, "email": 1})
	cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range orders {
		if u, ok := byID[orders[i].UserID]; ok {
			orders[i].User = &models.OrderUser{ID: u.ID, Name: u.DisplayName(), Email: u.Email}
		}
	}
	return nil
}

func AdminListOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders"
		defer handlePanic(c, route)

		filter := bson.M{}
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseOrderStatus(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid status")
				return
			}
			filter["status"] = status
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
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

		if err := populateOrderUsers(ctx, db, orders); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Orders could not be fetched", err)
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/orders/:id/status"
		defer handlePanic(c, route)

		orderID, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid status")
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid status")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var current models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&current)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error updating order status", err)
			return
		}
		if err := models.CanTransition(current.Status, status); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid status")
			return
		}

		var updated models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error updating order status", err)
			return
		}

		orders := []models.Order{updated}
		if err := populateOrderUsers(ctx, db, orders); err != nil {
			log.Printf("[ORDER] [WARN] order %s owner lookup failed: %v", orderID.Hex(), err)
		}

		log.Printf("[ORDER] [%s] order %s status %s -> %s", transitionLevel(current.Status, status), orderID.Hex(), current.Status, status)
		c.JSON(http.StatusOK, orders[0])
	}
}

// transitionLevel flags admin corrections that reopen a finished order.
func transitionLevel(from, to models.OrderStatus) string {
	if from.IsTerminal() && !to.IsTerminal() {
		return "WARN"
	}
	return "INFO"
}

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/orders/:id"
		defer handlePanic(c, route)

		orderID, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}

		log.Println("[ORDER] [INFO] order deleted:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
