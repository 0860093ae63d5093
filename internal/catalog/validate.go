package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"eyewear-store/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrDuplicateTitle = errors.New("a product with this title already exists")
	ErrNoChanges      = errors.New("no fields to update")
)

// ValidationError is returned for input that can never be stored.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ValidateItem checks a new item before insert.
func ValidateItem(item models.CatalogItem) error {
	if strings.TrimSpace(item.Title) == "" {
		return invalid("title is required")
	}
	return validateNumbers(float64(item.Price), item.Ratings, item.Discount)
}

func validateNumbers(price, ratings, discount float64) error {
	if price < 0 {
		return invalid("price must be greater than or equal to 0")
	}
	if ratings < 0 || ratings > 5 {
		return invalid("ratings must be between 0 and 5")
	}
	if discount < 0 || discount > 100 {
		return invalid("discount must be between 0 and 100")
	}
	return nil
}

// ItemPatch is a partial update. Nil fields are left unchanged. A non-nil
// empty Images clears the gallery; ProductInfo is only replaced when
// non-empty.
type ItemPatch struct {
	Title          *string
	Price          *float64
	Description    *string
	Category       *string
	SubCategory    *string
	SubSubCategory *string
	ProductInfo    models.Attributes
	Images         []string
	Ratings        *float64
	Discount       *float64
}

func (p ItemPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title cannot be empty")
	}
	var price, ratings, discount float64
	if p.Price != nil {
		price = *p.Price
	}
	if p.Ratings != nil {
		ratings = *p.Ratings
	}
	if p.Discount != nil {
		discount = *p.Discount
	}
	return validateNumbers(price, ratings, discount)
}

func (p ItemPatch) setDoc(now time.Time) bson.M {
	set := bson.M{}
	setString := func(field string, v *string) {
		if v != nil {
			set[field] = strings.TrimSpace(*v)
		}
	}
	setString("title", p.Title)
	setString("description", p.Description)
	setString("category", p.Category)
	setString("subCategory", p.SubCategory)
	setString("subSubCategory", p.SubSubCategory)
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Ratings != nil {
		set["ratings"] = *p.Ratings
	}
	if p.Discount != nil {
		set["discount"] = *p.Discount
	}
	if len(p.ProductInfo) > 0 {
		set["product_info"] = p.ProductInfo
	}
	if p.Images != nil {
		set["images"] = p.Images
	}
	if len(set) == 0 {
		return set
	}
	set["updatedAt"] = now
	return set
}
