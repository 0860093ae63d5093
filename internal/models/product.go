package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogItem is a sellable item from either catalog partition. Type is
// filled in on read ("product" or "contactLens") and never persisted.
type CatalogItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Type           string             `bson:"_type,omitempty" json:"_type,omitempty"`
	Title          string             `bson:"title" json:"title"`
	Price          Amount             `bson:"price" json:"price"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"`
	SubCategory    string             `bson:"subCategory,omitempty" json:"subCategory,omitempty"`
	SubSubCategory string             `bson:"subSubCategory,omitempty" json:"subSubCategory,omitempty"`
	ProductInfo    Attributes         `bson:"product_info" json:"product_info"`
	Images         []string           `bson:"images" json:"images"`
	Ratings        float64            `bson:"ratings" json:"ratings"`
	Discount       float64            `bson:"discount" json:"discount"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize replaces nil collections so JSON clients always see [] and {}.
func (p *CatalogItem) Normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.ProductInfo == nil {
		p.ProductInfo = Attributes{}
	}
}
