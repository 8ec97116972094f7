package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user identifier under "id", the key clients already decode.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

type TokenIssuer interface {
	Issue(userID string) (token string, exp time.Time, err error)
	Verify(token string) (userID string, err error)
}
