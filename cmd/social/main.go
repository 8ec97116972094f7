package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	mongoRepo "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/mongodb"
	redisRepo "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/redis"
	diskStore "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/storage/disk"
	s3Store "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/storage/s3"
	httpTransport "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http"
	httpmw "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/password"
	authsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	postsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/post/service"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/social-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/seed"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:]...)
	if err != nil {
		lg.Must("info").Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.LogLevel)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(rootCtx, cfg, zapLog)
	stop()

	if err != nil {
		zapLog.Error("service stopped with error", zap.Error(err))
		_ = zapLog.Sync()
		os.Exit(1)
	}
	zapLog.Info("shutdown complete")
	_ = zapLog.Sync()
}

// run owns every resource it opens and releases them before returning, so main can
// exit with a non-zero code without skipping cleanup.
func run(rootCtx context.Context, cfg *config.Config, zapLog *zap.Logger) error {
	// подпись токенов без секрета невозможна: падаем до старта
	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		return fmt.Errorf("init JWT util: %w", err)
	}

	hasher, err := password.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("init password hasher: %w", err)
	}

	mongoCli, err := mongoRepo.Connect(rootCtx, cfg.MongoURL, zapLog)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoCli.Disconnect(ctx); err != nil {
			zapLog.Warn("database disconnect", zap.Error(err))
		}
	}()
	zapLog.Info("database connected", zap.String("db", cfg.MongoDatabase))

	db := mongoCli.Database(cfg.MongoDatabase)
	userDir, err := mongoRepo.NewUserDirectory(rootCtx, db)
	if err != nil {
		return fmt.Errorf("init user directory: %w", err)
	}
	postStore, err := mongoRepo.NewPostStore(rootCtx, db)
	if err != nil {
		return fmt.Errorf("init post store: %w", err)
	}

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(rootCtx, f, userDir, postStore, hasher, zapLog); err != nil {
			return err
		}
	}

	assets, err := newAssetStore(rootCtx, cfg)
	if err != nil {
		return fmt.Errorf("init asset store: %w", err)
	}

	g, ctx := errgroup.WithContext(rootCtx)

	var limiter httpmw.Limiter
	switch cfg.RateLimitBackend {
	case "redis":
		redisCli := redisRepo.NewClient(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		defer redisCli.Close()
		perMinute := cfg.RateLimitRPS*60 + cfg.RateLimitBurst
		limiter = redisRepo.NewRateLimitStore(redisCli, perMinute, time.Minute, zapLog)
	default:
		mem := httpmw.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10_000, time.Hour)
		g.Go(func() error {
			mem.Run(ctx)
			return nil
		})
		limiter = mem
	}

	validate := validator.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := httpTransport.NewRouter(httpTransport.Deps{
		Cfg:      cfg,
		Log:      zapLog,
		Auth:     authsvc.New(userDir, hasher, jwtUtil, validate),
		Posts:    postsvc.New(userDir, postStore, validate),
		Assets:   assets,
		Limiter:  limiter,
		Ready:    mongoRepo.NewPinger(mongoCli),
		Registry: registry,
	})

	g.Go(func() error {
		return server.Run(ctx, ":"+strconv.Itoa(cfg.Port), router, zapLog)
	})

	return g.Wait()
}

func newAssetStore(ctx context.Context, cfg *config.Config) (asset.Store, error) {
	if cfg.AssetStore == "s3" {
		return s3Store.New(ctx, s3Store.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return diskStore.New(cfg.AssetsDir)
}
