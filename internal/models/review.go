package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review rates a veterinarian. A client may leave at most one review per
// veterinarian, enforced by a unique (clientId, veterinarianId) index.
type Review struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID       primitive.ObjectID `bson:"clientId" json:"clientId"`
	VeterinarianID primitive.ObjectID `bson:"veterinarianId" json:"veterinarianId"`
	Rating         float64            `bson:"rating" json:"rating"` // 0..5
	Review         string             `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
