package catalog

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PriceBucket is an inclusive price band. Open buckets have no upper bound.
type PriceBucket struct {
	Label string
	Min   float64
	Max   float64
	Open  bool
}

func (b PriceBucket) Contains(price float64) bool {
	if price < b.Min {
		return false
	}
	return b.Open || price <= b.Max
}

// PriceBuckets are checked in order and a price counts toward the first
// bucket that contains it, so boundary prices land in the lower band.
var PriceBuckets = []PriceBucket{
	{Label: "300-1000", Min: 300, Max: 1000},
	{Label: "1001-2000", Min: 1001, Max: 2000},
	{Label: "2001-3000", Min: 2001, Max: 3000},
	{Label: "3001-4000", Min: 3001, Max: 4000},
	{Label: "4001-5000", Min: 4001, Max: 5000},
	{Label: "5000+", Min: 5000, Open: true},
}

// BucketPrices counts prices per bucket. Every label is present, prices
// outside all buckets are dropped.
func BucketPrices(prices []float64) map[string]int64 {
	counts := make(map[string]int64, len(PriceBuckets))
	for _, b := range PriceBuckets {
		counts[b.Label] = 0
	}
	for _, price := range prices {
		for _, b := range PriceBuckets {
			if b.Contains(price) {
				counts[b.Label]++
				break
			}
		}
	}
	return counts
}

// Facets is the response body of the facet endpoint.
type Facets struct {
	PriceBuckets map[string]int64 `json:"priceBuckets"`
	Genders      map[string]int64 `json:"genders"`
	Colors       map[string]int64 `json:"colors"`
}

type facetGroup struct {
	Value string `bson:"_id"`
	Count int64  `bson:"count"`
}

type facetPrices struct {
	Values bson.A `bson:"values"`
}

type facetResult struct {
	Genders []facetGroup  `bson:"genders"`
	Colors  []facetGroup  `bson:"colors"`
	Prices  []facetPrices `bson:"prices"`
}

func (r facetResult) facets() Facets {
	var prices []float64
	for _, group := range r.Prices {
		for _, v := range group.Values {
			if price, ok := numericValue(v); ok {
				prices = append(prices, price)
			}
		}
	}
	return Facets{
		PriceBuckets: BucketPrices(prices),
		Genders:      countGroups(r.Genders),
		Colors:       countGroups(r.Colors),
	}
}

func countGroups(groups []facetGroup) map[string]int64 {
	counts := make(map[string]int64, len(groups))
	for _, g := range groups {
		key := strings.TrimSpace(g.Value)
		if key == "" {
			continue
		}
		counts[key] += g.Count
	}
	return counts
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
