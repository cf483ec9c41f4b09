package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection(colUsers)}
}

func (r *UserRepo) Insert(ctx context.Context, u *models.User) error {
	_, err := r.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("an account with this email already exists")
	}
	if err != nil {
		return errs.Internal("failed to create user", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load user", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load user", err)
	}
	return &u, nil
}

// FirstVeterinarian returns the veterinarian with the lowest id, the
// deterministic default when a booking names no practitioner.
func (r *UserRepo) FirstVeterinarian(ctx context.Context) (*models.User, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"role": models.RoleVeterinarian}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("no veterinarian is available")
	}
	if err != nil {
		return nil, errs.Internal("failed to pick a veterinarian", err)
	}
	return &u, nil
}

func (r *UserRepo) FindVeterinarians(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"role": models.RoleVeterinarian}, opts)
	if err != nil {
		return nil, errs.Internal("failed to list veterinarians", err)
	}
	defer cursor.Close(ctx)

	var vets []models.User
	if err := cursor.All(ctx, &vets); err != nil {
		return nil, errs.Internal("failed to decode veterinarians", err)
	}
	return vets, nil
}

// UpdateProfile sets the caller-editable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return errs.Internal("failed to update profile", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}

// SetRating writes the denormalized review aggregate onto the veterinarian
// document.
func (r *UserRepo) SetRating(ctx context.Context, vetID primitive.ObjectID, avg float64, count int) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": vetID},
		bson.M{"$set": bson.M{"rating": avg, "ratingCount": count}})
	if err != nil {
		return errs.Internal("failed to update rating", err)
	}
	return nil
}
