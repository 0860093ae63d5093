package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"eyewear-store/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TitleCollation is the case-insensitive collation titles are unique under.
var TitleCollation = &options.Collation{Locale: "en", Strength: 2}

// Store reads and writes both catalog partitions.
type Store struct {
	db  *mongo.Database
	now func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) collection(v Variant) *mongo.Collection {
	return s.db.Collection(v.Collection())
}

type ListResult struct {
	Items []models.CatalogItem
	Total int64
}

type listPage struct {
	Data       []models.CatalogItem `bson:"data"`
	TotalCount []struct {
		Count int64 `bson:"count"`
	} `bson:"totalCount"`
}

// List returns one page of the routed partitions and the matching total.
func (s *Store) List(ctx context.Context, filter bson.M, variants []Variant, page Page) (ListResult, error) {
	if len(variants) == 0 {
		variants = AllVariants()
	}
	cursor, err := s.collection(variants[0]).Aggregate(ctx, ListPipeline(filter, variants, page))
	if err != nil {
		return ListResult{}, err
	}
	defer cursor.Close(ctx)

	var pages []listPage
	if err := cursor.All(ctx, &pages); err != nil {
		return ListResult{}, err
	}

	result := ListResult{Items: []models.CatalogItem{}}
	if len(pages) == 0 {
		return result, nil
	}
	for i := range pages[0].Data {
		pages[0].Data[i].Normalize()
	}
	if pages[0].Data != nil {
		result.Items = pages[0].Data
	}
	if len(pages[0].TotalCount) > 0 {
		result.Total = pages[0].TotalCount[0].Count
	}
	return result, nil
}

// Facets aggregates gender, color and price distributions over the same
// filter and routing as List.
func (s *Store) Facets(ctx context.Context, filter bson.M, variants []Variant) (Facets, error) {
	if len(variants) == 0 {
		variants = AllVariants()
	}
	cursor, err := s.collection(variants[0]).Aggregate(ctx, FacetPipeline(filter, variants))
	if err != nil {
		return Facets{}, err
	}
	defer cursor.Close(ctx)

	var results []facetResult
	if err := cursor.All(ctx, &results); err != nil {
		return Facets{}, err
	}
	if len(results) == 0 {
		return facetResult{}.facets(), nil
	}
	return results[0].facets(), nil
}

// FindByID looks the id up in each variant in order and tags the hit.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID, variants ...Variant) (models.CatalogItem, error) {
	if len(variants) == 0 {
		variants = AllVariants()
	}
	for _, v := range variants {
		var item models.CatalogItem
		err := s.collection(v).FindOne(ctx, bson.M{"_id": id}).Decode(&item)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return models.CatalogItem{}, err
		}
		item.Type = string(v)
		item.Normalize()
		return item, nil
	}
	return models.CatalogItem{}, ErrNotFound
}

// FindMany resolves ids across both partitions. Missing ids are absent from
// the result.
func (s *Store) FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CatalogItem, error) {
	found := make(map[primitive.ObjectID]models.CatalogItem, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	for _, v := range AllVariants() {
		cursor, err := s.collection(v).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		var items []models.CatalogItem
		err = cursor.All(ctx, &items)
		cursor.Close(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if _, dup := found[item.ID]; dup {
				continue
			}
			item.Type = string(v)
			item.Normalize()
			found[item.ID] = item
		}
	}
	return found, nil
}

// AdminList pages one partition newest first, optionally narrowed by title.
func (s *Store) AdminList(ctx context.Context, v Variant, search string, page Page) (ListResult, error) {
	filter := TitleSearch(search)
	coll := s.collection(v)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}

	opts := options.Find().
		SetSkip(page.Skip()).
		SetLimit(page.Limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return ListResult{}, err
	}
	defer cursor.Close(ctx)

	items := []models.CatalogItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return ListResult{}, err
	}
	for i := range items {
		items[i].Type = string(v)
		items[i].Normalize()
	}
	return ListResult{Items: items, Total: total}, nil
}

func (s *Store) titleTaken(ctx context.Context, v Variant, title string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"title": strings.TrimSpace(title)}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	err := s.collection(v).FindOne(ctx, filter, options.FindOne().SetCollation(TitleCollation)).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a validated item. A title that already exists in the
// partition, ignoring case, yields ErrDuplicateTitle.
func (s *Store) Create(ctx context.Context, v Variant, item models.CatalogItem) (models.CatalogItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if err := ValidateItem(item); err != nil {
		return models.CatalogItem{}, err
	}

	taken, err := s.titleTaken(ctx, v, item.Title, primitive.NilObjectID)
	if err != nil {
		return models.CatalogItem{}, err
	}
	if taken {
		return models.CatalogItem{}, ErrDuplicateTitle
	}

	now := s.now()
	item.ID = primitive.NilObjectID
	item.Type = ""
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Normalize()

	res, err := s.collection(v).InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return models.CatalogItem{}, ErrDuplicateTitle
	}
	if err != nil {
		return models.CatalogItem{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	item.Type = string(v)
	return item, nil
}

// Update applies a partial update and returns the stored document.
func (s *Store) Update(ctx context.Context, v Variant, id primitive.ObjectID, patch ItemPatch) (models.CatalogItem, error) {
	if err := patch.Validate(); err != nil {
		return models.CatalogItem{}, err
	}
	set := patch.setDoc(s.now())
	if len(set) == 0 {
		return models.CatalogItem{}, ErrNoChanges
	}

	if patch.Title != nil {
		taken, err := s.titleTaken(ctx, v, *patch.Title, id)
		if err != nil {
			return models.CatalogItem{}, err
		}
		if taken {
			return models.CatalogItem{}, ErrDuplicateTitle
		}
	}

	var updated models.CatalogItem
	err := s.collection(v).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CatalogItem{}, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return models.CatalogItem{}, ErrDuplicateTitle
	}
	if err != nil {
		return models.CatalogItem{}, err
	}
	updated.Type = string(v)
	updated.Normalize()
	return updated, nil
}

// Delete removes the item and returns it, so callers can release its images.
func (s *Store) Delete(ctx context.Context, v Variant, id primitive.ObjectID) (models.CatalogItem, error) {
	var deleted models.CatalogItem
	err := s.collection(v).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CatalogItem{}, ErrNotFound
	}
	if err != nil {
		return models.CatalogItem{}, err
	}
	deleted.Type = string(v)
	deleted.Normalize()
	return deleted, nil
}

// Categories returns the category tree across both partitions.
func (s *Store) Categories(ctx context.Context) ([]CategoryNode, error) {
	cursor, err := s.collection(Standard).Aggregate(ctx, CategoryPipeline())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var paths []CategoryPath
	if err := cursor.All(ctx, &paths); err != nil {
		return nil, err
	}
	return BuildCategoryTree(paths), nil
}
