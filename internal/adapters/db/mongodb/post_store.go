package mongodb

import (
	"context"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const postCollection = "posts"

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(ctx context.Context, db *mongo.Database) (*PostStore, error) {
	coll := db.Collection(postCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, customErrors.WrapInternal(err, "create post indexes")
	}
	return &PostStore{coll: coll}, nil
}

func (s *PostStore) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	normalizePost(&p)
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return model.Post{}, customErrors.WrapInternal(err, "CreatePost")
	}
	return p, nil
}

func (s *PostStore) InsertMany(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	docs := make([]any, 0, len(posts))
	for _, p := range posts {
		normalizePost(&p)
		docs = append(docs, p)
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return customErrors.WrapInternal(err, "InsertMany posts")
	}
	return nil
}

// likes и comments хранятся пустыми, а не null
func normalizePost(p *model.Post) {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.Likes == nil {
		p.Likes = map[string]bool{}
	}
	if p.Comments == nil {
		p.Comments = []string{}
	}
}
