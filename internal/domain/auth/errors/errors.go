package errors

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccessDenied       = errors.New("access denied")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrHashing            = errors.New("password hashing failed")
	ErrTooLarge           = errors.New("request entity too large")
)

func NewBadRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

func NewNotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, context, err)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsDuplicateUser(err error) bool {
	return errors.Is(err, ErrDuplicateUser)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenInvalid)
}

func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}
