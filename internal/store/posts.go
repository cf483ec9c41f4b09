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

type PostRepo struct {
	col *mongo.Collection
}

func NewPostRepo(db *mongo.Database) *PostRepo {
	return &PostRepo{col: db.Collection(colPosts)}
}

func (r *PostRepo) Insert(ctx context.Context, p *models.Post) error {
	_, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return errs.Internal("failed to create post", err)
	}
	return nil
}

func (r *PostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("post not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load post", err)
	}
	return &p, nil
}

// Feed returns posts newest first.
func (r *PostRepo) Feed(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errs.Internal("failed to list posts", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, errs.Internal("failed to decode posts", err)
	}
	return posts, nil
}

func (r *PostRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return errs.Internal("failed to update post", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("post not found")
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Internal("failed to delete post", err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("post not found")
	}
	return nil
}

// ToggleLike adds the user to the likes set, or removes them if already
// present. Reports whether the post ends up liked by the user.
func (r *PostRepo) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return false, errs.Internal("failed to like post", err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	res, err = r.col.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return false, errs.Internal("failed to unlike post", err)
	}
	if res.MatchedCount == 0 {
		return false, errs.NotFound("post not found")
	}
	return false, nil
}
