package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image file too large (max 5MB)")
	ErrForeignImage     = errors.New("image is not managed by this store")
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ImageStore persists uploaded product images and returns the URL clients
// store in a catalog item's images list.
type ImageStore interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) error
}

// objectName validates the upload and picks a collision free name for it.
func objectName(file *multipart.FileHeader) (name, contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	if file.Size > MaxImageSize {
		return "", "", ErrImageTooLarge
	}
	return "products/" + primitive.NewObjectID().Hex() + ext, contentType, nil
}

// DeleteAll releases every image, returning the first failure. Images the
// store does not manage are skipped.
func DeleteAll(ctx context.Context, store ImageStore, urls []string) error {
	var firstErr error
	for _, u := range urls {
		err := store.Delete(ctx, u)
		if errors.Is(err, ErrForeignImage) {
			continue
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
