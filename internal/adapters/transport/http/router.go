package http

import (
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	authsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	postsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/post/service"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const pictureField = "picture"

type Deps struct {
	Cfg     *config.Config
	Log     *zap.Logger
	Auth    authsvc.Service
	Posts   postsvc.Service
	Assets  asset.Store
	Limiter middleware.Limiter
	Ready   Pinger

	// Registry is optional; without it no metrics are collected or exposed.
	Registry *prometheus.Registry
}

// NewRouter assembles the request pipeline. Stage order is fixed: error translation
// wraps everything and the per-route stages run last, right in front of each handler.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(
		middleware.ErrorHandler(d.Log),
		middleware.Recovery(d.Log),
		middleware.BodyParser(d.Cfg.BodyLimit),
		middleware.SecurityHeaders(),
		middleware.RequestLogger(d.Log),
	)
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Handler())
	}
	r.Use(
		middleware.CORS(d.Cfg.AllowedOrigins),
		middleware.Assets(d.Cfg.AssetsPrefix, d.Assets),
	)

	h := NewHandler(d.Auth, d.Posts, d.Ready, d.Log)

	authGroup := r.Group("/auth")
	if d.Limiter != nil {
		authGroup.Use(middleware.RateLimitPerIP(d.Limiter, d.Log))
	}
	authGroup.POST("/register", middleware.UploadSingle(pictureField, d.Assets), h.Register)
	authGroup.POST("/login", h.Login)

	r.POST("/posts",
		middleware.RequireAuth(d.Auth),
		middleware.UploadSingle(pictureField, d.Assets),
		h.CreatePost,
	)

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(customErrors.NewNotFound("no route for " + c.Request.Method + " " + c.Request.URL.Path))
	})
	return r
}
