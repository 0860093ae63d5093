package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"eyewear-store/internal/storage"
)

// UploadProductImage stores a multipart "image" file and returns its URL
// for use in a catalog item's images list.
func UploadProductImage(images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/uploads"
		defer handlePanic(c, route)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxImageSize+(1<<20))

		file, err := c.FormFile("image")
		if err != nil {
			respondWithCause(c, http.StatusBadRequest, route, "image file is required", err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		url, err := images.Save(ctx, file)
		switch {
		case errors.Is(err, storage.ErrUnsupportedImage), errors.Is(err, storage.ErrImageTooLarge):
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		case err != nil:
			respondWithCause(c, http.StatusInternalServerError, route, "image upload failed", err)
			return
		}

		log.Printf("[UPLOAD] stored %s as %s", file.Filename, url)
		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}
