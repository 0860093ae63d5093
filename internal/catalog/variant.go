package catalog

import (
	"regexp"
	"strings"
)

// Variant tags which catalog partition an item lives in.
type Variant string

const (
	Standard    Variant = "product"
	ContactLens Variant = "contactLens"
)

var (
	contactLensCategory = regexp.MustCompile(`(?i)^contact\s+lenses$`)
	contactLensType     = regexp.MustCompile(`(?i)^contactlens`)
)

// Collection returns the Mongo collection backing the variant.
func (v Variant) Collection() string {
	if v == ContactLens {
		return "contactlenses"
	}
	return "products"
}

// Route picks the partitions a listing or facet request must read.
// "contact lenses" reads only lenses, any other category only general
// products, and no category reads both as one union.
func Route(category string) []Variant {
	category = strings.TrimSpace(category)
	switch {
	case category == "":
		return []Variant{Standard, ContactLens}
	case contactLensCategory.MatchString(category):
		return []Variant{ContactLens}
	default:
		return []Variant{Standard}
	}
}

// ParseVariant maps the admin "type" parameter; anything that does not start
// with "contactlens" is a general product.
func ParseVariant(raw string) Variant {
	if contactLensType.MatchString(strings.TrimSpace(raw)) {
		return ContactLens
	}
	return Standard
}

// AllVariants is the lookup order used when the partition is unknown.
func AllVariants() []Variant {
	return []Variant{Standard, ContactLens}
}
