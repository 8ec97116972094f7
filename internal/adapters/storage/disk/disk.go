package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
)

// Store keeps assets as flat files in one directory.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes r under the base name of name, replacing any file with that name.
func (s *Store) Save(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", customErrors.WrapInternal(err, "create temp asset")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", customErrors.WrapInternal(err, "write asset")
	}
	if err := tmp.Close(); err != nil {
		return "", customErrors.WrapInternal(err, "close asset")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, base)); err != nil {
		return "", customErrors.WrapInternal(err, "rename asset")
	}
	return base, nil
}

func (s *Store) Open(_ context.Context, name string) (*asset.Object, error) {
	base, err := cleanName(name)
	if err != nil || base != name {
		return nil, customErrors.NewNotFound("asset " + name)
	}

	path := filepath.Join(s.dir, base)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, customErrors.NewNotFound("asset " + name)
	}
	if err != nil {
		return nil, customErrors.WrapInternal(err, "open asset")
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, customErrors.NewNotFound("asset " + name)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, customErrors.WrapInternal(err, "detect asset type")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, customErrors.WrapInternal(err, "rewind asset")
	}

	return &asset.Object{
		Body:        f,
		ContentType: mt.String(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

func cleanName(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." || base == ".." || strings.HasPrefix(base, ".upload-") {
		return "", customErrors.NewBadRequest("invalid file name")
	}
	return base, nil
}
