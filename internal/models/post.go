package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is an entry on the clinic's social feed.
type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AuthorID  primitive.ObjectID   `bson:"authorId" json:"authorId"`
	Content   string               `bson:"content" json:"content"`
	ImageURL  string               `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}
