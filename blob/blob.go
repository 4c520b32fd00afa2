// Package blob stores uploaded media (flyers, profile photos, post media) and
// hands back retrievable URLs.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// Save writes data and returns a URL under which the HTTP layer serves it.
	Save(data []byte, name string) (string, error)
	// Delete removes a previously saved blob by its URL. Unknown URLs are a
	// no-op so callers can fire-and-forget cleanup of old photos.
	Delete(url string) error
}

// LocalStore keeps blobs on disk under dir, served at urlPrefix (e.g.
// "/uploads") by the router's static route.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *LocalStore) Save(data []byte, name string) (string, error) {
	ext := sanitizeExt(name)
	if ext == "" {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
	}
	// prefix with a uuid so colliding upload names never overwrite each other
	fname := fmt.Sprintf("%s_%d%s", uuid.NewString(), time.Now().Unix(), ext)
	if err := os.WriteFile(filepath.Join(s.Dir, fname), data, 0o644); err != nil {
		return "", err
	}
	return s.URLPrefix + "/" + fname, nil
}

func (s *LocalStore) Delete(url string) error {
	if !strings.HasPrefix(url, s.URLPrefix+"/") {
		return nil
	}
	fname := filepath.Base(strings.TrimPrefix(url, s.URLPrefix+"/"))
	err := os.Remove(filepath.Join(s.Dir, fname))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".mp4", ".webm":
		return ext
	default:
		return ""
	}
}
