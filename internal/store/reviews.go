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

type ReviewRepo struct {
	col *mongo.Collection
}

func NewReviewRepo(db *mongo.Database) *ReviewRepo {
	return &ReviewRepo{col: db.Collection(colReviews)}
}

func (r *ReviewRepo) Insert(ctx context.Context, review *models.Review) error {
	_, err := r.col.InsertOne(ctx, review)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("you have already reviewed this veterinarian")
	}
	if err != nil {
		return errs.Internal("failed to create review", err)
	}
	return nil
}

func (r *ReviewRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("review not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load review", err)
	}
	return &review, nil
}

func (r *ReviewRepo) FindByVet(ctx context.Context, vetID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"veterinarianId": vetID}, opts)
	if err != nil {
		return nil, errs.Internal("failed to list reviews", err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, errs.Internal("failed to decode reviews", err)
	}
	return reviews, nil
}

func (r *ReviewRepo) Update(ctx context.Context, review *models.Review) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": review.ID}, review)
	if err != nil {
		return errs.Internal("failed to update review", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("review not found")
	}
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Internal("failed to delete review", err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("review not found")
	}
	return nil
}

// AggregateForVet computes avg(rating) and count over the veterinarian's
// reviews with a $match/$group pipeline. No reviews yields (0, 0).
func (r *ReviewRepo) AggregateForVet(ctx context.Context, vetID primitive.ObjectID) (float64, int, error) {
	matchStage := bson.D{{Key: "$match", Value: bson.D{{Key: "veterinarianId", Value: vetID}}}}
	groupStage := bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}

	cursor, err := r.col.Aggregate(ctx, mongo.Pipeline{matchStage, groupStage})
	if err != nil {
		return 0, 0, errs.Internal("failed to aggregate reviews", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, errs.Internal("failed to decode review aggregate", err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Avg, results[0].Count, nil
}
