package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is the persisted account record. PasswordHash never leaves the service in JSON.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName    string        `bson:"firstName" json:"firstName"`
	LastName     string        `bson:"lastName" json:"lastName"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password" json:"-"`
	PicturePath  string        `bson:"picturePath" json:"picturePath"`
	Friends      []string      `bson:"friends" json:"friends"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type Post struct {
	ID              bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID          string          `bson:"userId" json:"userId"`
	FirstName       string          `bson:"firstName" json:"firstName"`
	LastName        string          `bson:"lastName" json:"lastName"`
	Description     string          `bson:"description" json:"description"`
	PicturePath     string          `bson:"picturePath" json:"picturePath"`
	UserPicturePath string          `bson:"userPicturePath" json:"userPicturePath"`
	Likes           map[string]bool `bson:"likes" json:"likes"`
	Comments        []string        `bson:"comments" json:"comments"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
	User      User      `json:"user"`
}
