package middleware

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Save(_ context.Context, name string, r io.Reader, ct string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = b
	m.types[name] = ct
	return name, nil
}

func (m *memStore) Open(_ context.Context, name string) (*asset.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[name]
	if !ok {
		return nil, customErrors.NewNotFound("asset " + name)
	}
	return &asset.Object{
		Body:        readSeekCloser{bytes.NewReader(b)},
		ContentType: m.types[name],
		Size:        int64(len(b)),
		ModTime:     time.Unix(0, 0),
	}, nil
}

type readSeekCloser struct{ *bytes.Reader }

func (readSeekCloser) Close() error { return nil }

// newEngine wires the error stage first, like the real router does.
func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()), Recovery(zap.NewNop()))
	r.Use(mw...)
	return r
}
