package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port     int
	LogLevel string

	MongoURL      string
	MongoDatabase string

	JWTSecret string
	TokenTTL  time.Duration

	PasswordHasher string
	BcryptCost     int

	BodyLimit      int64
	AllowedOrigins []string

	AssetsPrefix string
	AssetStore   string
	AssetsDir    string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string

	RateLimitBackend string
	RateLimitRPS     int
	RateLimitBurst   int
	RedisAddress     string
	RedisPassword    string
	RedisDB          int

	SeedFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 6001)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_DB", "social")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("PASSWORD_HASHER", "bcrypt")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("BODY_LIMIT", 30<<20)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("ASSETS_PREFIX", "/assets")
	v.SetDefault("ASSET_STORE", "disk")
	v.SetDefault("ASSETS_DIR", "public/assets")
	v.SetDefault("RATE_LIMIT_BACKEND", "memory")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("REDIS_DB", 0)
}

// Load reads configuration from flags, the environment, an optional .env file and an
// optional config.json in the working directory, in that order of precedence.
func Load(args ...string) (*Config, error) {
	// .env может отсутствовать, это не ошибка
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	fs := pflag.NewFlagSet("social", pflag.ContinueOnError)
	fs.String("seed", "", "insert users and posts from a JSON file before serving")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := v.BindPFlag("SEED_FILE", fs.Lookup("seed")); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:             v.GetInt("PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		MongoURL:         v.GetString("MONGO_URL"),
		MongoDatabase:    v.GetString("MONGO_DB"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		PasswordHasher:   strings.ToLower(v.GetString("PASSWORD_HASHER")),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		BodyLimit:        v.GetInt64("BODY_LIMIT"),
		AllowedOrigins:   splitList(v.GetString("ALLOWED_ORIGINS")),
		AssetsPrefix:     v.GetString("ASSETS_PREFIX"),
		AssetStore:       strings.ToLower(v.GetString("ASSET_STORE")),
		AssetsDir:        v.GetString("ASSETS_DIR"),
		S3Bucket:         v.GetString("S3_BUCKET"),
		S3Region:         v.GetString("S3_REGION"),
		S3Endpoint:       v.GetString("S3_ENDPOINT"),
		S3AccessKey:      v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:      v.GetString("S3_SECRET_KEY"),
		RateLimitBackend: strings.ToLower(v.GetString("RATE_LIMIT_BACKEND")),
		RateLimitRPS:     v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		SeedFile:         v.GetString("SEED_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MongoURL == "" {
		return errors.New("MONGO_URL is not set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("BODY_LIMIT must be positive, got %d", c.BodyLimit)
	}
	switch c.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.PasswordHasher)
	}
	switch c.AssetStore {
	case "disk":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when ASSET_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown ASSET_STORE %q", c.AssetStore)
	}
	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisAddress == "" {
			return errors.New("REDIS_ADDRESS is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	if !strings.HasPrefix(c.AssetsPrefix, "/") {
		return fmt.Errorf("ASSETS_PREFIX must start with '/', got %q", c.AssetsPrefix)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
