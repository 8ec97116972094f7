package service

import (
	"context"
	"errors"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
)

type postService struct {
	users repo.UserDirectory
	posts repo.PostStore
	v     *validator.Validate
	now   func() time.Time
}

type Service interface {
	CreatePost(ctx context.Context, userID string, in dto.CreatePostDTO) (model.Post, error)
}

func New(users repo.UserDirectory, posts repo.PostStore, v *validator.Validate) Service {
	return &postService{users: users, posts: posts, v: v, now: time.Now}
}

// CreatePost copies the author's name and picture onto the post so feeds render
// without a second lookup.
func (s *postService) CreatePost(ctx context.Context, userID string, in dto.CreatePostDTO) (model.Post, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Post{}, customErrors.NewBadRequest(err.Error())
	}

	author, err := s.users.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrUserNotFound):
		return model.Post{}, customErrors.ErrUserNotFound
	case err != nil:
		return model.Post{}, customErrors.WrapInternal(err, "CreatePost")
	}

	now := s.now().UTC()
	post := model.Post{
		UserID:          author.ID.Hex(),
		FirstName:       author.FirstName,
		LastName:        author.LastName,
		Description:     in.Description,
		PicturePath:     in.PicturePath,
		UserPicturePath: author.PicturePath,
		Likes:           map[string]bool{},
		Comments:        []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	saved, err := s.posts.CreatePost(ctx, post)
	if err != nil {
		return model.Post{}, customErrors.WrapInternal(err, "CreatePost")
	}
	return saved, nil
}
