package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/password"
	authsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	postsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/post/service"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

/* ──────────────────────────────── in-memory collaborators ──────────────────────────────── */

type memDirectory struct {
	mu     sync.Mutex
	users  map[string]model.User
	reads  int
	writes int
	fail   error
}

func (d *memDirectory) CreateUser(_ context.Context, u model.User) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes++
	if d.fail != nil {
		return model.User{}, d.fail
	}
	if _, ok := d.users[u.Email]; ok {
		return model.User{}, customErrors.ErrDuplicateUser
	}
	u.ID = bson.NewObjectID()
	d.users[u.Email] = u
	return u, nil
}

func (d *memDirectory) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	if d.fail != nil {
		return model.User{}, d.fail
	}
	u, ok := d.users[email]
	if !ok {
		return model.User{}, customErrors.ErrUserNotFound
	}
	return u, nil
}

func (d *memDirectory) GetUserByID(_ context.Context, id string) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	for _, u := range d.users {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return model.User{}, customErrors.ErrUserNotFound
}

func (d *memDirectory) ExistsByEmail(_ context.Context, email string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	if d.fail != nil {
		return false, d.fail
	}
	_, ok := d.users[email]
	return ok, nil
}

func (d *memDirectory) InsertMany(context.Context, []model.User) error { return nil }

func (d *memDirectory) counts() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads, d.writes
}

type memPosts struct {
	mu    sync.Mutex
	posts []model.Post
}

func (p *memPosts) CreatePost(_ context.Context, m model.Post) (model.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m.ID = bson.NewObjectID()
	p.posts = append(p.posts, m)
	return m, nil
}

func (p *memPosts) InsertMany(context.Context, []model.Post) error { return nil }

type memAssets struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memAssets) Save(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = b
	return name, nil
}

func (m *memAssets) Open(_ context.Context, name string) (*asset.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[name]
	if !ok {
		return nil, customErrors.NewNotFound("asset " + name)
	}
	return &asset.Object{Body: io.NopCloser(bytes.NewReader(b)), ContentType: "image/png", Size: int64(len(b))}, nil
}

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

/* ──────────────────────────────── harness ──────────────────────────────── */

type harness struct {
	router *gin.Engine
	dir    *memDirectory
	posts  *memPosts
	assets *memAssets
	tokens *jwt.JwtUtilImpl
}

func newHarness(t *testing.T, mutate ...func(*Deps)) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:      "pipeline-secret",
		TokenTTL:       time.Hour,
		BodyLimit:      30 << 20,
		AllowedOrigins: []string{"*"},
		AssetsPrefix:   "/assets",
	}

	tokens, err := jwt.NewJWTUtil(cfg)
	require.NoError(t, err)
	hasher, err := password.New("bcrypt", bcrypt.MinCost)
	require.NoError(t, err)

	h := &harness{
		dir:    &memDirectory{users: map[string]model.User{}},
		posts:  &memPosts{},
		assets: &memAssets{files: map[string][]byte{}},
		tokens: tokens,
	}
	v := validator.New()
	deps := Deps{
		Cfg:      cfg,
		Log:      zap.NewNop(),
		Auth:     authsvc.New(h.dir, hasher, tokens, v),
		Posts:    postsvc.New(h.dir, h.posts, v),
		Assets:   h.assets,
		Limiter:  middleware.NewMemoryLimiter(1000, 1000, 100, time.Hour),
		Ready:    pingStub{},
		Registry: prometheus.NewRegistry(),
	}
	for _, m := range mutate {
		m(&deps)
	}
	h.router = NewRouter(deps)
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartReq(t *testing.T, path string, fields map[string]string, file []byte, fileName string) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("picture", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Message
}

/* ──────────────────────────────── tests ──────────────────────────────── */

func TestPipeline_RegisterLoginScenario(t *testing.T) {
	h := newHarness(t)

	w := h.do(jsonReq(http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"p1"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created["_id"])
	require.NotContains(t, created, "password")
	require.Equal(t, []any{}, created["friends"])

	stored := h.dir.users["a@x.com"]
	require.NotEqual(t, "p1", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p1")))

	w = h.do(jsonReq(http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"p1"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "User already exists", message(t, w))

	_, writesBefore := h.dir.counts()
	w = h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid credentials", message(t, w))
	_, writesAfter := h.dir.counts()
	require.Equal(t, writesBefore, writesAfter)

	w = h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"p1"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sess struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotContains(t, sess.User, "password")

	id, err := h.tokens.Verify(sess.Token)
	require.NoError(t, err)
	require.Equal(t, stored.ID.Hex(), id)
	require.Equal(t, created["_id"], id)
}

func TestPipeline_LoginUnknownUser(t *testing.T) {
	h := newHarness(t)

	w := h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"ghost@x.com","password":"p1"}`))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "User not found", message(t, w))
}

func TestPipeline_MalformedJSONNeverReachesDirectory(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/auth/register", "/auth/login"} {
		w := h.do(jsonReq(http.MethodPost, path, `{"email":"a@x.com",`))
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		require.Equal(t, "malformed JSON body", message(t, w))
	}

	reads, writes := h.dir.counts()
	require.Zero(t, reads)
	require.Zero(t, writes)
}

func TestPipeline_ValidationIsBadRequest(t *testing.T) {
	h := newHarness(t)

	w := h.do(jsonReq(http.MethodPost, "/auth/register", `{"email":"nope","password":"p1"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	reads, _ := h.dir.counts()
	require.Zero(t, reads)
}

func TestPipeline_MultibytePasswordNeverInternal(t *testing.T) {
	h := newHarness(t)

	w := h.do(jsonReq(http.MethodPost, "/auth/register",
		`{"email":"long@x.com","password":"`+strings.Repeat("ж", 40)+`"}`))
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	_, writes := h.dir.counts()
	require.Zero(t, writes)

	pwd := strings.Repeat("ж", 36)
	w = h.do(jsonReq(http.MethodPost, "/auth/register", `{"email":"ok@x.com","password":"`+pwd+`"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"ok@x.com","password":"`+pwd+`"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPipeline_RegisterMultipartWithPicture(t *testing.T) {
	h := newHarness(t)
	png := []byte("\x89PNG\r\n\x1a\nfake")

	req := multipartReq(t, "/auth/register", map[string]string{
		"firstName": "Ann", "lastName": "Lee", "email": "ann@x.com", "password": "secret",
	}, png, "ann.png")
	w := h.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Equal(t, png, h.assets.files["ann.png"])
	require.Equal(t, "ann.png", h.dir.users["ann@x.com"].PicturePath)
	require.Equal(t, "Ann", h.dir.users["ann@x.com"].FirstName)

	w = h.do(httptest.NewRequest(http.MethodGet, "/assets/ann.png", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, png, w.Body.Bytes())
	require.Equal(t, "cross-origin", w.Header().Get("Cross-Origin-Resource-Policy"))
}

func TestPipeline_CreatePost(t *testing.T) {
	h := newHarness(t)

	w := h.do(jsonReq(http.MethodPost, "/auth/register",
		`{"firstName":"Ann","lastName":"Lee","email":"a@x.com","password":"p1","picturePath":"ann.png"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	w = h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"p1"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))

	noAuth := multipartReq(t, "/posts", map[string]string{"description": "hi"}, nil, "")
	w = h.do(noAuth)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Access Denied", message(t, w))

	forged := multipartReq(t, "/posts", map[string]string{"description": "hi"}, nil, "")
	forged.Header.Set("Authorization", "Bearer not.a.token")
	w = h.do(forged)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := multipartReq(t, "/posts", map[string]string{"description": "sunset"}, []byte("GIF89a"), "sunset.gif")
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w = h.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post model.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	require.Equal(t, "sunset", post.Description)
	require.Equal(t, "sunset.gif", post.PicturePath)
	require.Equal(t, "ann.png", post.UserPicturePath)
	require.Equal(t, "Ann", post.FirstName)
	require.Len(t, h.posts.posts, 1)
	require.Contains(t, h.assets.files, "sunset.gif")
}

func TestPipeline_ExpiredToken(t *testing.T) {
	h := newHarness(t)
	tok, _, err := h.tokens.WithClock(func() time.Time { return time.Now().Add(-3 * time.Hour) }).Issue(bson.NewObjectID().Hex())
	require.NoError(t, err)
	h.tokens.WithClock(time.Now)

	req := multipartReq(t, "/posts", map[string]string{"description": "x"}, nil, "")
	req.Header.Set("Authorization", "Bearer "+tok)
	w := h.do(req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Token expired", message(t, w))
}

func TestPipeline_UnexpectedErrorIsGeneric(t *testing.T) {
	h := newHarness(t)
	h.dir.fail = errors.New("mongo: connection pool cleared")

	w := h.do(jsonReq(http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"p1"}`))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"Something went wrong, please try again later"}`, w.Body.String())
	require.NotContains(t, w.Body.String(), "mongo")
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestPipeline_StaticAssetMissing(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/assets/nope.png", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPipeline_UnknownRoute(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/users/123", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestPipeline_RateLimitOnAuth(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.Limiter = middleware.NewMemoryLimiter(1, 1, 100, time.Hour)
	})

	w := h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"p1"}`))
	require.Equal(t, http.StatusNotFound, w.Code)
	w = h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"p1"}`))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, "non-auth routes are not limited")
}

func TestPipeline_HealthReadyMetrics(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	h.do(jsonReq(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"p1"}`))
	w = h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `social_http_requests_total{method="POST",path="/auth/login",status="404"} 1`)

	down := newHarness(t, func(d *Deps) { d.Ready = pingStub{err: errors.New("no primary")} })
	w = down.do(httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
