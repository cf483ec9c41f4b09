package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account types the clinic knows about.
type Role string

const (
	RoleClient       Role = "client"
	RoleVeterinarian Role = "veterinarian"
	RoleSecretary    Role = "secretary"
	RoleAdmin        Role = "admin"
)

var validRoles = map[Role]bool{
	RoleClient:       true,
	RoleVeterinarian: true,
	RoleSecretary:    true,
	RoleAdmin:        true,
}

func (r Role) Valid() bool {
	return validRoles[r]
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // Hide from JSON responses
	Role     Role               `bson:"role" json:"role"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address  string             `bson:"address,omitempty" json:"address,omitempty"`

	// Denormalized review aggregates, maintained by the review service.
	// Only meaningful for veterinarians.
	Rating      float64 `bson:"rating" json:"rating"`
	RatingCount int     `bson:"ratingCount" json:"ratingCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
