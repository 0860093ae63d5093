package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	boundedPriceRange = regexp.MustCompile(`^(\d+)-(\d+)$`)
	openPriceRange    = regexp.MustCompile(`^(\d+)\+$`)
)

// BuildFilter turns a listing query into a conjunctive Mongo filter. User
// input is escaped before it is embedded in a pattern. An empty query
// matches everything.
func BuildFilter(q ListingQuery) bson.M {
	conds := bson.A{}

	if q.Category != "" {
		conds = append(conds, bson.M{"category": exactMatch(q.Category)})
	}
	if q.SubCategory != "" {
		conds = append(conds, bson.M{"subCategory": exactMatch(q.SubCategory)})
	}
	if q.SubSubCategory != "" {
		conds = append(conds, bson.M{"subSubCategory": exactMatch(q.SubSubCategory)})
	}

	for _, sel := range q.Hierarchical {
		conds = append(conds, bson.M{"$or": bson.A{
			bson.M{"subCategory": sel.Key, "subSubCategory": sel.Value},
			bson.M{AttributePath(sel.Key): exactMatch(sel.Value)},
		}})
	}

	keys := make([]string, 0, len(q.Attributes))
	for key := range q.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		conds = append(conds, bson.M{AttributePath(key): exactMatch(q.Attributes[key])})
	}

	if q.Search != "" {
		conds = append(conds, bson.M{"title": containsMatch(q.Search)})
	}

	if pr, ok := ParsePriceRange(q.PriceRange); ok {
		conds = append(conds, bson.M{"price": pr.Condition()})
	}

	if q.Gender != "" {
		conds = append(conds, bson.M{"product_info.gender": exactMatch(q.Gender)})
	}
	if q.Color != "" {
		conds = append(conds, bson.M{"product_info.color": exactMatch(q.Color)})
	}

	if len(conds) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": conds}
}

// TitleSearch is the admin listing filter: substring match on the title only.
func TitleSearch(search string) bson.M {
	search = strings.TrimSpace(search)
	if search == "" {
		return bson.M{}
	}
	return bson.M{"title": containsMatch(search)}
}

func exactMatch(value string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(value) + "$", "$options": "i"}
}

func containsMatch(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

// PriceRange is an inclusive price window; Bounded is false for "<min>+".
type PriceRange struct {
	Min     int64
	Max     int64
	Bounded bool
}

// ParsePriceRange accepts "<min>-<max>" or "<min>+". Anything else,
// including numbers too large to parse, yields ok=false.
func ParsePriceRange(raw string) (PriceRange, bool) {
	raw = strings.TrimSpace(raw)
	if m := boundedPriceRange.FindStringSubmatch(raw); m != nil {
		lo, errLo := strconv.ParseInt(m[1], 10, 64)
		hi, errHi := strconv.ParseInt(m[2], 10, 64)
		if errLo != nil || errHi != nil {
			return PriceRange{}, false
		}
		return PriceRange{Min: lo, Max: hi, Bounded: true}, true
	}
	if m := openPriceRange.FindStringSubmatch(raw); m != nil {
		lo, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return PriceRange{}, false
		}
		return PriceRange{Min: lo}, true
	}
	return PriceRange{}, false
}

func (r PriceRange) Condition() bson.M {
	cond := bson.M{"$gte": r.Min}
	if r.Bounded {
		cond["$lte"] = r.Max
	}
	return cond
}

func (r PriceRange) Contains(price float64) bool {
	if price < float64(r.Min) {
		return false
	}
	return !r.Bounded || price <= float64(r.Max)
}
