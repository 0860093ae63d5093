package catalog

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// unionStages reads every routed partition with the same filter and tags
// each document with its variant. The first variant is the collection the
// aggregate runs on.
func unionStages(filter bson.M, variants []Variant) mongo.Pipeline {
	if len(variants) == 0 {
		variants = AllVariants()
	}
	if filter == nil {
		filter = bson.M{}
	}

	stages := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{"_type": string(variants[0])}}},
	}
	for _, v := range variants[1:] {
		stages = append(stages, bson.D{{Key: "$unionWith", Value: bson.M{
			"coll": v.Collection(),
			"pipeline": bson.A{
				bson.M{"$match": filter},
				bson.M{"$addFields": bson.M{"_type": string(v)}},
			},
		}}})
	}
	return stages
}

// ListPipeline sorts the union by _id so pages are stable across requests,
// then returns one page and the total count in a single round trip.
func ListPipeline(filter bson.M, variants []Variant, page Page) mongo.Pipeline {
	stages := unionStages(filter, variants)
	stages = append(stages,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		bson.D{{Key: "$facet", Value: bson.M{
			"data": bson.A{
				bson.M{"$skip": page.Skip()},
				bson.M{"$limit": page.Limit},
			},
			"totalCount": bson.A{
				bson.M{"$count": "count"},
			},
		}}},
	)
	return stages
}

// FacetPipeline groups the filtered union by upper-cased gender and color
// and collects raw prices for bucketing.
func FacetPipeline(filter bson.M, variants []Variant) mongo.Pipeline {
	stages := unionStages(filter, variants)
	stages = append(stages, bson.D{{Key: "$facet", Value: bson.M{
		"genders": bson.A{
			bson.M{"$group": bson.M{
				"_id":   bson.M{"$toUpper": "$product_info.gender"},
				"count": bson.M{"$sum": 1},
			}},
		},
		"colors": bson.A{
			bson.M{"$group": bson.M{
				"_id":   bson.M{"$toUpper": "$product_info.color"},
				"count": bson.M{"$sum": 1},
			}},
		},
		"prices": bson.A{
			bson.M{"$group": bson.M{
				"_id":    nil,
				"values": bson.M{"$push": "$price"},
			}},
		},
	}}})
	return stages
}

// CategoryPipeline collects the distinct category paths across both
// partitions.
func CategoryPipeline() mongo.Pipeline {
	stages := unionStages(bson.M{}, AllVariants())
	stages = append(stages,
		bson.D{{Key: "$group", Value: bson.M{"_id": bson.M{
			"category":       "$category",
			"subCategory":    "$subCategory",
			"subSubCategory": "$subSubCategory",
		}}}},
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$_id"}}},
	)
	return stages
}
