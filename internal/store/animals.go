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

type AnimalRepo struct {
	col *mongo.Collection
}

func NewAnimalRepo(db *mongo.Database) *AnimalRepo {
	return &AnimalRepo{col: db.Collection(colAnimals)}
}

func (r *AnimalRepo) Insert(ctx context.Context, a *models.Animal) error {
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("you already have an animal named %q", a.Name)
	}
	if err != nil {
		return errs.Internal("failed to create animal", err)
	}
	return nil
}

func (r *AnimalRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Animal, error) {
	var a models.Animal
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("animal not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load animal", err)
	}
	return &a, nil
}

func (r *AnimalRepo) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Animal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, errs.Internal("failed to list animals", err)
	}
	defer cursor.Close(ctx)

	var animals []models.Animal
	if err := cursor.All(ctx, &animals); err != nil {
		return nil, errs.Internal("failed to decode animals", err)
	}
	return animals, nil
}

func (r *AnimalRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("you already have an animal with this name")
	}
	if err != nil {
		return errs.Internal("failed to update animal", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("animal not found")
	}
	return nil
}

func (r *AnimalRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Internal("failed to delete animal", err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("animal not found")
	}
	return nil
}
