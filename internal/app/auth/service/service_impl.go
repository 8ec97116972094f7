package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/password"
	repo "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
)

type authService struct {
	users  repo.UserDirectory
	hasher password.Hasher
	tokens jwt.TokenIssuer
	v      *validator.Validate
	now    func() time.Time
}

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.Session, error)
	Authenticate(token string) (userID string, err error)
}

func New(
	users repo.UserDirectory,
	hasher password.Hasher,
	tokens jwt.TokenIssuer,
	v *validator.Validate,
) Service {
	// bcrypt режет по байтам, а встроенный max считает руны
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &authService{
		users: users, hasher: hasher, tokens: tokens, v: v, now: time.Now,
	}
}

// maxBytes limits the UTF-8 length of a string field, e.g. `maxbytes=72`.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewBadRequest(err.Error())
	}

	exists, err := a.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}
	if exists {
		return model.User{}, customErrors.ErrDuplicateUser
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	now := a.now().UTC()
	user := model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		PicturePath:  in.PicturePath,
		Friends:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := a.users.CreateUser(ctx, user)
	if err != nil {
		// проверка существования и вставка не атомарны, уникальный индекс ловит гонку
		if errors.Is(err, customErrors.ErrDuplicateUser) {
			return model.User{}, customErrors.ErrDuplicateUser
		}
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}
	return saved, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.Session, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Session{}, customErrors.NewBadRequest(err.Error())
	}

	user, err := a.users.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, customErrors.ErrUserNotFound):
		return model.Session{}, customErrors.ErrUserNotFound
	case err != nil:
		return model.Session{}, customErrors.WrapInternal(err, "Login")
	}

	if !a.hasher.Verify(in.Password, user.PasswordHash) {
		return model.Session{}, customErrors.ErrInvalidCredentials
	}

	token, exp, err := a.tokens.Issue(user.ID.Hex())
	if err != nil {
		return model.Session{}, customErrors.WrapInternal(err, "Issue")
	}

	return model.Session{Token: token, ExpiresAt: exp, User: user}, nil
}

func (a *authService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", customErrors.ErrAccessDenied
	}
	id, err := a.tokens.Verify(token)
	if err != nil {
		if customErrors.IsTokenExpired(err) || customErrors.IsTokenInvalid(err) {
			return "", err
		}
		return "", customErrors.WrapInternal(err, "Authenticate")
	}
	return id, nil
}
