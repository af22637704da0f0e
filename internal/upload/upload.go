package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/filmoteka/movie_catalog/internal/apperr"
)

// URLPrefix is where stored files are served from.
const URLPrefix = "/uploads/"

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store keeps uploaded cover images on disk under a single directory
// with generated names.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", apperr.New(apperr.Validation, "unsupported cover image type")
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "open upload", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "store upload", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", apperr.Wrap(apperr.Internal, "store upload", err)
	}
	return name, nil
}

// Remove deletes a stored file. Best effort: a missing file is not an
// error, callers use it for orphan cleanup.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.Dir, name))
}

// URL maps a stored file name to its public path.
func URL(name string) string {
	if name == "" {
		return ""
	}
	return URLPrefix + name
}
