package catalog

import (
	"net/url"
	"sort"
	"strings"
)

// Hierarchical filter keys shown as refinement groups in the storefront
// menus. A selection matches either through subCategory/subSubCategory
// tagging or through the mapped product_info attribute.
var hierarchicalKeys = map[string]struct{}{
	"Gender":                   {},
	"Collection":               {},
	"Shape":                    {},
	"Style":                    {},
	"Brands":                   {},
	"Usage":                    {},
	"Explore by Disposability": {},
	"Explore by Power":         {},
	"Explore by Color":         {},
	"Solution":                 {},
}

var reservedParams = map[string]struct{}{
	"category":       {},
	"subCategory":    {},
	"subSubCategory": {},
	"limit":          {},
	"page":           {},
	"search":         {},
	"sort":           {},
	"order":          {},
	"priceRange":     {},
	"gender":         {},
	"color":          {},
}

var attributeAliases = map[string]string{
	"brands":                   "brand",
	"brand":                    "brand",
	"gender":                   "gender",
	"shape":                    "frameShape",
	"style":                    "rimDetails",
	"usage":                    "usage",
	"explore by disposability": "disposability",
	"explore by power":         "power",
	"explore by color":         "color",
	"solution":                 "solution",
}

func IsHierarchicalKey(key string) bool {
	_, ok := hierarchicalKeys[key]
	return ok
}

// AttributePath maps a filter key to its nested product_info path. Unknown
// keys map to their lowercased name.
func AttributePath(key string) string {
	lower := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := attributeAliases[lower]; ok {
		return "product_info." + alias
	}
	return "product_info." + lower
}

// Selection is one hierarchical refinement, e.g. Brands=Vincent Chase.
type Selection struct {
	Key   string
	Value string
}

// ListingQuery is the typed form of a storefront listing or facet request.
// Attributes carries the additional product_info filters that are not one of
// the named dimensions.
type ListingQuery struct {
	Category       string
	SubCategory    string
	SubSubCategory string
	Hierarchical   []Selection
	Attributes     map[string]string
	Search         string
	PriceRange     string
	Gender         string
	Color          string
	Page           string
	Limit          string
}

// ParseListingQuery is the single place raw request parameters are read.
// Repeated parameters keep their first value; empty values are ignored.
func ParseListingQuery(values url.Values) ListingQuery {
	q := ListingQuery{
		Category:       first(values, "category"),
		SubCategory:    first(values, "subCategory"),
		SubSubCategory: first(values, "subSubCategory"),
		Search:         first(values, "search"),
		PriceRange:     first(values, "priceRange"),
		Gender:         first(values, "gender"),
		Color:          first(values, "color"),
		Page:           first(values, "page"),
		Limit:          first(values, "limit"),
		Attributes:     map[string]string{},
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := first(values, key)
		if value == "" {
			continue
		}
		if IsHierarchicalKey(key) {
			q.Hierarchical = append(q.Hierarchical, Selection{Key: key, Value: value})
			continue
		}
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		q.Attributes[key] = value
	}

	return q
}

// FilterValues re-encodes the filtering dimensions without pagination. The
// encoding is sorted, so equal filters produce equal strings.
func (q ListingQuery) FilterValues() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("category", q.Category)
	set("subCategory", q.SubCategory)
	set("subSubCategory", q.SubSubCategory)
	set("search", q.Search)
	set("priceRange", q.PriceRange)
	set("gender", q.Gender)
	set("color", q.Color)
	for _, sel := range q.Hierarchical {
		set(sel.Key, sel.Value)
	}
	for key, value := range q.Attributes {
		set(key, value)
	}
	return values
}

func first(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
