package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a single saved shipping address of a user.
type Address struct {
	ID         string `bson:"id" json:"id"`
	Type       string `bson:"type" json:"type"`
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	IsDefault  bool   `bson:"isDefault" json:"isDefault"`
}

// CartItem is a weak reference to a catalog item; the item may have been
// deleted since it was added.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// User represents the application user account.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name,omitempty" json:"name"`
	FirstName    string               `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string               `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	IsAdmin      bool                 `bson:"isAdmin" json:"isAdmin"`
	Cart         []CartItem           `bson:"cart" json:"cart"`
	Wishlist     []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	Addresses    []Address            `bson:"addresses" json:"addresses"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName falls back to "first last" for accounts created without a name.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	parts := make([]string, 0, 2)
	for _, part := range []string{u.FirstName, u.LastName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
