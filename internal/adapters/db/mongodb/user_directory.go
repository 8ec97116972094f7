package mongodb

import (
	"context"
	"errors"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const userCollection = "users"

type UserDirectory struct {
	coll *mongo.Collection
}

// NewUserDirectory ensures the unique email index before returning.
func NewUserDirectory(ctx context.Context, db *mongo.Database) (*UserDirectory, error) {
	coll := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, customErrors.WrapInternal(err, "create user indexes")
	}
	return &UserDirectory{coll: coll}, nil
}

func (d *UserDirectory) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}

	if _, err := d.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, customErrors.ErrDuplicateUser
		}
		return model.User{}, customErrors.WrapInternal(err, "CreateUser")
	}
	return u, nil
}

func (d *UserDirectory) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return d.findOne(ctx, bson.M{"email": email}, "GetUserByEmail")
}

func (d *UserDirectory) GetUserByID(ctx context.Context, id string) (model.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, customErrors.ErrUserNotFound
	}
	return d.findOne(ctx, bson.M{"_id": oid}, "GetUserByID")
}

func (d *UserDirectory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := d.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, customErrors.WrapInternal(err, "ExistsByEmail")
	}
	return n > 0, nil
}

func (d *UserDirectory) InsertMany(ctx context.Context, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	docs := make([]any, 0, len(users))
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = bson.NewObjectID()
		}
		if u.Friends == nil {
			u.Friends = []string{}
		}
		docs = append(docs, u)
	}
	if _, err := d.coll.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return customErrors.ErrDuplicateUser
		}
		return customErrors.WrapInternal(err, "InsertMany users")
	}
	return nil
}

func (d *UserDirectory) findOne(ctx context.Context, filter bson.M, op string) (model.User, error) {
	var u model.User
	err := d.coll.FindOne(ctx, filter).Decode(&u)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return model.User{}, customErrors.ErrUserNotFound
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, op)
	}
	return u, nil
}
