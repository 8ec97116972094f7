// Package seed loads demo users and posts into an empty database.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/password"
	repo "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/repo"
	"go.uber.org/zap"
)

// File is the seed format. Users carry plaintext passwords; they are hashed before
// insertion, so the database never sees them.
type File struct {
	Users []SeedUser   `json:"users"`
	Posts []model.Post `json:"posts"`
}

type SeedUser struct {
	model.User
	Password string `json:"password"`
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

func Apply(ctx context.Context, f *File, users repo.UserDirectory, posts repo.PostStore, hasher password.Hasher, log *zap.Logger) error {
	now := time.Now().UTC()

	batch := make([]model.User, 0, len(f.Users))
	for _, su := range f.Users {
		u := su.User
		stamp(&u.CreatedAt, &u.UpdatedAt, now)
		if su.Password != "" {
			hash, err := hasher.Hash(su.Password)
			if err != nil {
				return fmt.Errorf("hash seed user %d: %w", len(batch), err)
			}
			u.PasswordHash = hash
		}
		if u.Friends == nil {
			u.Friends = []string{}
		}
		batch = append(batch, u)
	}

	if err := users.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert seed users: %w", err)
	}
	for i := range f.Posts {
		stamp(&f.Posts[i].CreatedAt, &f.Posts[i].UpdatedAt, now)
	}
	if err := posts.InsertMany(ctx, f.Posts); err != nil {
		return fmt.Errorf("insert seed posts: %w", err)
	}
	log.Info("seed applied", zap.Int("users", len(batch)), zap.Int("posts", len(f.Posts)))
	return nil
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
