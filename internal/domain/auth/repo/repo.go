package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
)

// UserDirectory stores users keyed by email. Lookups that find nothing return
// errors.ErrUserNotFound; inserts that collide on email return errors.ErrDuplicateUser.
type UserDirectory interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id string) (model.User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	InsertMany(ctx context.Context, users []model.User) error
}

type PostStore interface {
	CreatePost(ctx context.Context, p model.Post) (model.Post, error)

	InsertMany(ctx context.Context, posts []model.Post) error
}
