package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images under Root and serves them from URLPrefix.
type LocalStore struct {
	Root      string
	URLPrefix string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{
		Root:      filepath.Clean(root),
		URLPrefix: strings.TrimRight(baseURL, "/") + "/uploads/",
	}
}

func (s *LocalStore) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	name, _, err := objectName(file)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		log.Printf("[UPLOAD] save: failed to create directory for %s: %v", fullPath, err)
		return "", err
	}

	in, err := file.Open()
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] save: failed to create file %s: %v", fullPath, err)
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(fullPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	log.Printf("[UPLOAD] save: stored %s", fullPath)
	return s.URLPrefix + name, nil
}

// Delete removes a previously saved file. Missing files are not an error;
// URLs outside the upload prefix or escaping Root are refused.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(strings.TrimSpace(url), s.URLPrefix)
	if !ok || rel == "" {
		return ErrForeignImage
	}

	cleanRel := strings.TrimPrefix(path.Clean("/"+rel), "/")
	target := filepath.Clean(filepath.Join(s.Root, filepath.FromSlash(cleanRel)))
	if !strings.HasPrefix(target, s.Root+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", url)
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
