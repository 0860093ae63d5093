package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eyewear-store/internal/cache"
	"eyewear-store/internal/catalog"
	"eyewear-store/internal/models"
	"eyewear-store/internal/storage"
)

type catalogItemRequest struct {
	catalog.ImageInput
	Type           string            `json:"type"`
	Title          string            `json:"title" binding:"required"`
	Price          *float64          `json:"price" binding:"required"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	SubCategory    string            `json:"subCategory"`
	SubSubCategory string            `json:"subSubCategory"`
	ProductInfo    models.Attributes `json:"product_info"`
	Ratings        float64           `json:"ratings"`
	Discount       float64           `json:"discount"`
}

func (r catalogItemRequest) item() models.CatalogItem {
	return models.CatalogItem{
		Title:          strings.TrimSpace(r.Title),
		Price:          models.Amount(*r.Price),
		Description:    strings.TrimSpace(r.Description),
		Category:       strings.TrimSpace(r.Category),
		SubCategory:    strings.TrimSpace(r.SubCategory),
		SubSubCategory: strings.TrimSpace(r.SubSubCategory),
		ProductInfo:    r.ProductInfo,
		Images:         catalog.NormalizeImages(r.ImageInput),
		Ratings:        r.Ratings,
		Discount:       r.Discount,
	}
}

type catalogItemUpdateRequest struct {
	catalog.ImageInput
	Title          *string           `json:"title"`
	Price          *float64          `json:"price"`
	Description    *string           `json:"description"`
	Category       *string           `json:"category"`
	SubCategory    *string           `json:"subCategory"`
	SubSubCategory *string           `json:"subSubCategory"`
	ProductInfo    models.Attributes `json:"product_info"`
	Ratings        *float64          `json:"ratings"`
	Discount       *float64          `json:"discount"`
}

func (r catalogItemUpdateRequest) patch() catalog.ItemPatch {
	var images []string
	if r.ImageInput.Provided() {
		images = catalog.NormalizeImages(r.ImageInput)
	}
	return catalog.ItemPatch{
		Title:          r.Title,
		Price:          r.Price,
		Description:    r.Description,
		Category:       r.Category,
		SubCategory:    r.SubCategory,
		SubSubCategory: r.SubSubCategory,
		ProductInfo:    r.ProductInfo,
		Images:         images,
		Ratings:        r.Ratings,
		Discount:       r.Discount,
	}
}

// resolveVariant uses ?type when given, otherwise the partition the id is
// stored in.
func resolveVariant(ctx context.Context, c *gin.Context, store *catalog.Store, id primitive.ObjectID) (catalog.Variant, error) {
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		return catalog.ParseVariant(raw), nil
	}
	item, err := store.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return catalog.Variant(item.Type), nil
}

func respondCatalogError(c *gin.Context, route string, err error, fallback string) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(c, http.StatusBadRequest, route, verr.Msg)
	case errors.Is(err, catalog.ErrNoChanges):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	case errors.Is(err, catalog.ErrDuplicateTitle):
		respondWithError(c, http.StatusConflict, route, "Product title must be unique")
	case errors.Is(err, catalog.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, "Product not found")
	default:
		respondWithCause(c, http.StatusInternalServerError, route, fallback, err)
	}
}

func invalidateFacets(ctx context.Context, route string, facetCache *cache.FacetCache) {
	if err := facetCache.Invalidate(ctx); err != nil {
		log.Printf("[%s] facet cache invalidation failed: %v", route, err)
	}
}

func AdminListProducts(db *mongo.Database) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "GET /admin/products"
		defer handlePanic(c, route)

		variant := catalog.ParseVariant(c.Query("type"))
		page := catalog.ParsePage(c.Query("page"), c.Query("limit"), catalog.AdminPageSize)

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := store.AdminList(ctx, variant, c.Query("search"), page)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error listing products", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items":      result.Items,
			"pagination": page.Admin(result.Total),
		})
	}
}

func CreateCatalogItem(db *mongo.Database, facetCache *cache.FacetCache) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "POST /admin/products"
		defer handlePanic(c, route)

		var req catalogItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		rawType := c.Query("type")
		if rawType == "" {
			rawType = req.Type
		}
		variant := catalog.ParseVariant(rawType)

		ctx, cancel := requestContext(c)
		defer cancel()

		created, err := store.Create(ctx, variant, req.item())
		if err != nil {
			respondCatalogError(c, route, err, "Error creating product")
			return
		}

		invalidateFacets(ctx, route, facetCache)
		log.Printf("[%s] created %s %s", route, variant, created.ID.Hex())
		c.JSON(http.StatusCreated, created)
	}
}

func UpdateCatalogItem(db *mongo.Database, facetCache *cache.FacetCache) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "PUT /admin/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req catalogItemUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		patch := req.patch()

		ctx, cancel := requestContext(c)
		defer cancel()

		variant, err := resolveVariant(ctx, c, store, id)
		if err != nil {
			respondCatalogError(c, route, err, "Error updating product")
			return
		}

		updated, err := store.Update(ctx, variant, id, patch)
		if err != nil {
			respondCatalogError(c, route, err, "Error updating product")
			return
		}

		invalidateFacets(ctx, route, facetCache)
		log.Printf("[%s] updated %s", route, id.Hex())
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteCatalogItem removes the item and then releases its stored images.
// Image cleanup failures are logged, the delete itself has succeeded.
func DeleteCatalogItem(db *mongo.Database, facetCache *cache.FacetCache, images storage.ImageStore) gin.HandlerFunc {
	store := catalog.NewStore(db)
	return func(c *gin.Context) {
		const route = "DELETE /admin/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		variant, err := resolveVariant(ctx, c, store, id)
		if err != nil {
			respondCatalogError(c, route, err, "Error deleting product")
			return
		}

		deleted, err := store.Delete(ctx, variant, id)
		if err != nil {
			respondCatalogError(c, route, err, "Error deleting product")
			return
		}

		if images != nil {
			if err := storage.DeleteAll(ctx, images, deleted.Images); err != nil {
				log.Printf("[%s] image cleanup for %s failed: %v", route, id.Hex(), err)
			}
		}
		invalidateFacets(ctx, route, facetCache)

		log.Printf("[%s] deleted %s", route, id.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
	}
}
