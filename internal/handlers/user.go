package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eyewear-store/internal/auth"
	"eyewear-store/internal/models"
)

type profileRequest struct {
	Name      *string `json:"name"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password"`
}

type addressRequest struct {
	Type       string `json:"type"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

func (r addressRequest) apply(a *models.Address) {
	a.Type = strings.TrimSpace(r.Type)
	a.Street = strings.TrimSpace(r.Street)
	a.City = strings.TrimSpace(r.City)
	a.State = strings.TrimSpace(r.State)
	a.PostalCode = strings.TrimSpace(r.PostalCode)
	a.Country = strings.TrimSpace(r.Country)
	a.IsDefault = r.IsDefault
}

// markDefault leaves exactly one default address when id is present.
func markDefault(addresses []models.Address, id string) bool {
	found := false
	for i := range addresses {
		if addresses[i].ID == id {
			found = true
		}
	}
	if !found {
		return false
	}
	for i := range addresses {
		addresses[i].IsDefault = addresses[i].ID == id
	}
	return true
}

func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/update"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		set := bson.M{}
		for field, value := range map[string]*string{
			"name":      req.Name,
			"firstName": req.FirstName,
			"lastName":  req.LastName,
			"phone":     req.Phone,
		} {
			if value != nil {
				set[field] = strings.TrimSpace(*value)
			}
		}
		if req.Password != nil {
			hash, err := auth.HashPassword(*req.Password)
			if errors.Is(err, auth.ErrPasswordTooShort) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			if err != nil {
				respondWithCause(c, http.StatusInternalServerError, route, "password hash failed", err)
				return
			}
			set["password"] = hash
		}
		if len(set) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		set["updatedAt"] = time.Now()

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{"$set": set})
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error updating user", err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching user", err)
			return
		}

		log.Println("[USER] [INFO] profile updated:", userID.Hex())
		c.JSON(http.StatusOK, newSessionUser(user))
	}
}

func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/addresses"
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
		if user.Addresses == nil {
			user.Addresses = []models.Address{}
		}

		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func CreateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/addresses"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		var req addressRequest
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

		address := models.Address{ID: uuid.NewString()}
		req.apply(&address)
		user.Addresses = append(user.Addresses, address)
		if address.IsDefault || len(user.Addresses) == 1 {
			markDefault(user.Addresses, address.ID)
		}

		if err := saveAddresses(c, db, user); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		log.Println("[ADDRESS] [INFO] address created:", address.ID)
		c.JSON(http.StatusCreated, gin.H{"addresses": user.Addresses})
	}
}

func UpdateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		addressID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusNotFound, route, "User not found", err)
			return
		}

		index := -1
		for i, addr := range user.Addresses {
			if addr.ID == addressID {
				index = i
				break
			}
		}
		if index == -1 {
			respondWithError(c, http.StatusNotFound, route, "Address not found")
			return
		}

		wasDefault := user.Addresses[index].IsDefault
		req.apply(&user.Addresses[index])
		if req.IsDefault {
			markDefault(user.Addresses, addressID)
		} else if wasDefault {
			user.Addresses[index].IsDefault = true
		}

		if err := saveAddresses(c, db, user); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		log.Println("[ADDRESS] [INFO] address updated:", addressID)
		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func DeleteUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /users/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}
		addressID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusNotFound, route, "User not found", err)
			return
		}

		remaining := make([]models.Address, 0, len(user.Addresses))
		var removed *models.Address
		for i, addr := range user.Addresses {
			if addr.ID == addressID {
				removed = &user.Addresses[i]
				continue
			}
			remaining = append(remaining, addr)
		}
		if removed == nil {
			respondWithError(c, http.StatusNotFound, route, "Address not found")
			return
		}
		if removed.IsDefault && len(remaining) > 0 {
			remaining[0].IsDefault = true
		}
		user.Addresses = remaining

		if err := saveAddresses(c, db, user); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		log.Println("[ADDRESS] [INFO] address deleted:", addressID)
		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func SetDefaultAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/addresses/:id/default"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}
		addressID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := findUser(ctx, db, userID)
		if err != nil {
			respondWithCause(c, http.StatusNotFound, route, "User not found", err)
			return
		}
		if !markDefault(user.Addresses, addressID) {
			respondWithError(c, http.StatusNotFound, route, "Address not found")
			return
		}

		if err := saveAddresses(c, db, user); err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func saveAddresses(c *gin.Context, db *mongo.Database, user models.User) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	_, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
		"$set": bson.M{
			"addresses": user.Addresses,
			"updatedAt": time.Now(),
		},
	})
	return err
}
