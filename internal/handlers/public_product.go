package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"eyewear-store/internal/cache"
	"eyewear-store/internal/catalog"
)

// GetProducts serves the storefront listing. The category decides which
// partitions are read; without one both are merged and paged together.
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		query := catalog.ParseListingQuery(c.Request.URL.Query())
		page := catalog.ParsePage(query.Page, query.Limit, catalog.StorefrontPageSize)
		variants := catalog.Route(query.Category)

		log.Printf("[%s] hit category=%q variants=%v page=%d limit=%d", route, query.Category, variants, page.Number, page.Limit)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithCause(c, http.StatusServiceUnavailable, route, "database unavailable", err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := store.List(ctx, catalog.BuildFilter(query), variants, page)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching products", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products":   result.Items,
			"pagination": page.Storefront(result.Total),
		})
	}
}

func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := store.FindByID(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching product", err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// GetFacets returns price, gender and color distributions for the same
// filter GetProducts would apply. Responses are cached when Redis is
// configured.
func GetFacets(db *mongo.Database, facetCache *cache.FacetCache) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "GET /facets"
		defer handlePanic(c, route)

		query := catalog.ParseListingQuery(c.Request.URL.Query())
		key := cache.FacetKey(query.FilterValues())

		ctx, cancel := requestContext(c)
		defer cancel()

		var facets catalog.Facets
		if facetCache.Get(ctx, key, &facets) {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, facets)
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithCause(c, http.StatusServiceUnavailable, route, "database unavailable", err)
			return
		}

		facets, err := store.Facets(ctx, catalog.BuildFilter(query), catalog.Route(query.Category))
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching facets", err)
			return
		}

		facetCache.Set(ctx, key, facets)
		c.JSON(http.StatusOK, facets)
	}
}
