package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Animal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Breed     string             `bson:"breed,omitempty" json:"breed,omitempty"`
	Gender    string             `bson:"gender,omitempty" json:"gender,omitempty"`
	BirthDate *time.Time         `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
