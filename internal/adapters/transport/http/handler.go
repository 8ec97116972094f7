package http

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	authsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	postsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/post/service"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the route handlers. Failures go to c.Error; ErrorHandler renders them.
type Handler struct {
	auth  authsvc.Service
	posts postsvc.Service
	ready Pinger
	log   *zap.Logger
}

func NewHandler(auth authsvc.Service, posts postsvc.Service, ready Pinger, log *zap.Logger) *Handler {
	return &Handler{auth: auth, posts: posts, ready: ready, log: log}
}

func hashEmail(email string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(email)))
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBind(&body); err != nil {
		_ = c.Error(customErrors.NewBadRequest(err.Error()))
		return
	}
	// клиент может не прислать picturePath, тогда берём имя загруженного файла
	if name, ok := middleware.UploadedFile(c); ok && body.PicturePath == "" {
		body.PicturePath = name
	}
	h.log.Info("/auth/register", zap.String("user", hashEmail(body.Email)))

	user, err := h.auth.Register(c.Request.Context(), body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBind(&body); err != nil {
		_ = c.Error(customErrors.NewBadRequest(err.Error()))
		return
	}
	h.log.Info("/auth/login", zap.String("user", hashEmail(body.Email)))

	sess, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var body dto.CreatePostDTO
	if err := c.ShouldBind(&body); err != nil {
		_ = c.Error(customErrors.NewBadRequest(err.Error()))
		return
	}
	if name, ok := middleware.UploadedFile(c); ok && body.PicturePath == "" {
		body.PicturePath = name
	}

	post, err := h.posts.CreatePost(c.Request.Context(), middleware.UserID(c), body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
}

func (h *Handler) Ready(c *gin.Context) {
	if h.ready == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ready.Ping(ctx); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
