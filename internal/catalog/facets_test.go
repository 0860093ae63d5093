package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBucketPrices(t *testing.T) {
	counts := BucketPrices([]float64{250, 300, 1000, 1001, 6000})
	assert.Equal(t, map[string]int64{
		"300-1000":  2,
		"1001-2000": 1,
		"2001-3000": 0,
		"3001-4000": 0,
		"4001-5000": 0,
		"5000+":     1,
	}, counts)
}

func TestBucketPricesBoundaryGoesToFirstMatch(t *testing.T) {
	counts := BucketPrices([]float64{5000})
	assert.Equal(t, int64(1), counts["4001-5000"])
	assert.Equal(t, int64(0), counts["5000+"])
}

func TestBucketPricesEmpty(t *testing.T) {
	counts := BucketPrices(nil)
	assert.Len(t, counts, len(PriceBuckets))
	for _, n := range counts {
		assert.Zero(t, n)
	}
}

func TestFacetResultDecode(t *testing.T) {
	r := facetResult{
		Genders: []facetGroup{{Value: "MEN", Count: 3}, {Value: "", Count: 2}, {Value: "WOMEN", Count: 1}},
		Colors:  []facetGroup{{Value: "BLACK", Count: 4}},
		Prices:  []facetPrices{{Values: bson.A{int32(500), int64(1500), 2500.5, "n/a"}}},
	}
	f := r.facets()
	assert.Equal(t, map[string]int64{"MEN": 3, "WOMEN": 1}, f.Genders)
	assert.Equal(t, map[string]int64{"BLACK": 4}, f.Colors)
	assert.Equal(t, int64(1), f.PriceBuckets["300-1000"])
	assert.Equal(t, int64(1), f.PriceBuckets["1001-2000"])
	assert.Equal(t, int64(1), f.PriceBuckets["2001-3000"])
}
