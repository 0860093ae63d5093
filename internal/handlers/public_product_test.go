package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eyewear-store/internal/cache"
	"eyewear-store/internal/catalog"
)

func listingDoc(count int, items ...bson.D) bson.D {
	data := bson.A{}
	for _, item := range items {
		data = append(data, item)
	}
	return bson.D{
		{Key: "data", Value: data},
		{Key: "totalCount", Value: bson.A{bson.D{{Key: "count", Value: int32(count)}}}},
	}
}

func TestGetProductsUnionPage(t *testing.T) {
	mt := newMockDB(t)

	mt.Run("second page of the union", func(mt *mtest.T) {
		t := mt.T
		items := make([]bson.D, 0, 4)
		for i := 0; i < 4; i++ {
			items = append(items, bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "title", Value: "Lens"},
				{Key: "price", Value: 900.0},
				{Key: "_type", Value: "contactLens"},
			})
		}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, listingDoc(10, items...)),
		)

		r := gin.New()
		r.GET("/products", GetProducts(mt.DB))
		w := doJSON(r, http.MethodGet, "/products?page=2&limit=6", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Products   []map[string]interface{}     `json:"products"`
			Pagination catalog.StorefrontPagination `json:"pagination"`
		}
		decodeBody(t, w, &body)
		assert.Len(t, body.Products, 4)
		assert.Equal(t, "contactLens", body.Products[0]["_type"])
		assert.Equal(t, int64(10), body.Pagination.TotalProducts)
		assert.Equal(t, int64(2), body.Pagination.TotalPages)
		assert.False(t, body.Pagination.HasNextPage)
		assert.True(t, body.Pagination.HasPrevPage)

		cmd := startedCommand(mt, "aggregate")
		require.NotNil(t, cmd)
		assert.Equal(t, "products", cmd.Lookup("aggregate").StringValue())
		assert.Contains(t, cmd.Lookup("pipeline").String(), "$unionWith")
	})

	mt.Run("database down", func(mt *mtest.T) {
		t := mt.T
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 0}, {Key: "errmsg", Value: "down"}, {Key: "code", Value: 1}})

		r := gin.New()
		r.GET("/products", GetProducts(mt.DB))
		w := doJSON(r, http.MethodGet, "/products", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetProductsPriceRangeFilter(t *testing.T) {
	mt := newMockDB(t)

	mt.Run("lenses only", func(mt *mtest.T) {
		t := mt.T
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "test.contactlenses", mtest.FirstBatch, listingDoc(0)),
		)

		r := gin.New()
		r.GET("/products", GetProducts(mt.DB))
		w := doJSON(r, http.MethodGet, "/products?category=Contact%20Lenses&priceRange=1000-2000", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		cmd := startedCommand(mt, "aggregate")
		require.NotNil(t, cmd)
		assert.Equal(t, "contactlenses", cmd.Lookup("aggregate").StringValue())
		pipeline := cmd.Lookup("pipeline").String()
		assert.Contains(t, pipeline, `"$gte"`)
		assert.Contains(t, pipeline, `"$lte"`)
		assert.NotContains(t, pipeline, "$unionWith")
	})
}

func TestGetProductByID(t *testing.T) {
	mt := newMockDB(t)

	mt.Run("falls through to lenses", func(mt *mtest.T) {
		t := mt.T
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			emptyCursor("test.products"),
			mtest.CreateCursorResponse(0, "test.contactlenses", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: id},
				{Key: "title", Value: "Aqua"},
				{Key: "price", Value: 700.0},
			}),
		)

		r := gin.New()
		r.GET("/products/:id", GetProductByID(mt.DB))
		w := doJSON(r, http.MethodGet, "/products/"+id.Hex(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var item map[string]interface{}
		decodeBody(t, w, &item)
		assert.Equal(t, "contactLens", item["_type"])
		assert.Equal(t, []interface{}{}, item["images"])
	})

	mt.Run("missing everywhere", func(mt *mtest.T) {
		t := mt.T
		mt.AddMockResponses(emptyCursor("test.products"), emptyCursor("test.contactlenses"))

		r := gin.New()
		r.GET("/products/:id", GetProductByID(mt.DB))
		w := doJSON(r, http.MethodGet, "/products/"+primitive.NewObjectID().Hex(), nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Product not found"}`, w.Body.String())
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		t := mt.T
		r := gin.New()
		r.GET("/products/:id", GetProductByID(mt.DB))
		w := doJSON(r, http.MethodGet, "/products/not-an-id", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetFacets(t *testing.T) {
	mt := newMockDB(t)

	newCache := func(t *testing.T) (*cache.FacetCache, *miniredis.Miniredis) {
		srv := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return cache.NewFacetCache(client, time.Minute), srv
	}

	mt.Run("cache hit skips the database", func(mt *mtest.T) {
		t := mt.T
		fc, _ := newCache(t)
		values := url.Values{"category": {"Eyeglasses"}}
		key := cache.FacetKey(catalog.ParseListingQuery(values).FilterValues())
		fc.Set(context.Background(), key, catalog.Facets{
			PriceBuckets: map[string]int64{"300-1000": 3},
			Genders:      map[string]int64{"MEN": 3},
			Colors:       map[string]int64{},
		})

		r := gin.New()
		r.GET("/facets", GetFacets(mt.DB, fc))
		w := doJSON(r, http.MethodGet, "/facets?category=Eyeglasses&page=4", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

		var f catalog.Facets
		decodeBody(t, w, &f)
		assert.Equal(t, int64(3), f.PriceBuckets["300-1000"])
		assert.Equal(t, int64(3), f.Genders["MEN"])
	})

	mt.Run("miss computes and stores", func(mt *mtest.T) {
		t := mt.T
		fc, srv := newCache(t)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, bson.D{
				{Key: "genders", Value: bson.A{bson.D{{Key: "_id", Value: "WOMEN"}, {Key: "count", Value: int32(1)}}}},
				{Key: "colors", Value: bson.A{}},
				{Key: "prices", Value: bson.A{bson.D{{Key: "_id", Value: nil}, {Key: "values", Value: bson.A{250.0, 300.0, 1000.0, 1001.0, 6000.0}}}}},
			}),
		)

		r := gin.New()
		r.GET("/facets", GetFacets(mt.DB, fc))
		w := doJSON(r, http.MethodGet, "/facets", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Empty(t, w.Header().Get("X-Cache"))

		var f catalog.Facets
		decodeBody(t, w, &f)
		assert.Equal(t, int64(2), f.PriceBuckets["300-1000"])
		assert.Equal(t, int64(1), f.PriceBuckets["1001-2000"])
		assert.Equal(t, int64(1), f.PriceBuckets["5000+"])
		assert.Equal(t, map[string]int64{"WOMEN": 1}, f.Genders)
		assert.Len(t, srv.Keys(), 1)
	})
}

func TestHealthAndCategories(t *testing.T) {
	mt := newMockDB(t)

	mt.Run("health", func(mt *mtest.T) {
		t := mt.T
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		r := gin.New()
		r.GET("/health", Health(mt.DB))
		w := doJSON(r, http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	mt.Run("category tree", func(mt *mtest.T) {
		t := mt.T
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch,
			bson.D{{Key: "category", Value: "Eyeglasses"}, {Key: "subCategory", Value: "Men"}},
			bson.D{{Key: "category", Value: "Contact Lenses"}},
		))

		r := gin.New()
		r.GET("/categories", GetCategories(mt.DB))
		w := doJSON(r, http.MethodGet, "/categories", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"categories":[
			{"name":"Contact Lenses"},
			{"name":"Eyeglasses","children":[{"name":"Men"}]}
		]}`, w.Body.String())
	})
}
