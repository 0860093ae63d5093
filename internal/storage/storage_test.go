package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxImageSize*2))
	return req.MultipartForm.File["image"][0]
}

func TestLocalStoreSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "http://cdn.test")
	ctx := context.Background()

	url, err := store.Save(ctx, fileHeader(t, "frame.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn.test/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	path := filepath.Join(root, "products", filepath.Base(url))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, url), "deleting twice is not an error")
}

func TestLocalStoreRejects(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "")
	ctx := context.Background()

	_, err := store.Save(ctx, fileHeader(t, "notes.txt", []byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = store.Save(ctx, fileHeader(t, "big.jpg", bytes.Repeat([]byte("a"), MaxImageSize+1)))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	assert.ErrorIs(t, store.Delete(ctx, "https://elsewhere.test/a.jpg"), ErrForeignImage)
	assert.NoError(t, store.Delete(ctx, "/uploads/../../etc/passwd"), "cleaned path stays inside root")
}

type recordingStore struct {
	deleted []string
}

func (r *recordingStore) Save(context.Context, *multipart.FileHeader) (string, error) {
	return "", nil
}

func (r *recordingStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, "/uploads/") {
		return ErrForeignImage
	}
	r.deleted = append(r.deleted, url)
	return nil
}

func TestDeleteAllSkipsForeignImages(t *testing.T) {
	store := &recordingStore{}
	err := DeleteAll(context.Background(), store, []string{"/uploads/a.jpg", "https://img.test/b.jpg", "/uploads/c.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/c.jpg"}, store.deleted)
}

func TestMinioObjectKey(t *testing.T) {
	prefix := publicPrefix(MinioConfig{Endpoint: "minio:9000", Bucket: "product-images"})
	assert.Equal(t, "http://minio:9000/product-images/", prefix)

	key, ok := objectKey(prefix, prefix+"products/abc.jpg")
	assert.True(t, ok)
	assert.Equal(t, "products/abc.jpg", key)

	_, ok = objectKey(prefix, "http://other/products/abc.jpg")
	assert.False(t, ok)
	_, ok = objectKey(prefix, prefix+"../secret")
	assert.False(t, ok)

	assert.Equal(t, "https://cdn.test/", publicPrefix(MinioConfig{PublicURL: "https://cdn.test/", UseSSL: true}))
}
