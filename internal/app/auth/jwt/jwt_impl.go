package jwt

import (
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JwtUtilImpl struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, customErrors.WrapInternal(errors.New("JWT_SECRET is empty"), "NewJWTUtil")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JwtUtilImpl{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source used for both signing and validation.
func (j *JwtUtilImpl) WithClock(now func() time.Time) *JwtUtilImpl {
	j.now = now
	return j
}

func (j *JwtUtilImpl) Issue(userID string) (string, time.Time, error) {
	now := j.now()
	claims := jwt2.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			ID:        uuid.NewString(),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign token")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) Verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt2.Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", customErrors.ErrTokenExpired
	case err != nil || !token.Valid:
		return "", customErrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwt2.Claims)
	if !ok {
		return "", customErrors.WrapInternal(errors.New("claims not Claims"), "Verify")
	}
	if claims.UserID == "" {
		return "", customErrors.ErrTokenInvalid
	}
	return claims.UserID, nil
}
