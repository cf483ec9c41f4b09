package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

type MessageRepo struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{col: db.Collection(colMessages)}
}

func (r *MessageRepo) Insert(ctx context.Context, m *models.Message) error {
	_, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return errs.Internal("failed to store message", err)
	}
	return nil
}

func (r *MessageRepo) FindByChat(ctx context.Context, chatID primitive.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"chatId": chatID}, opts)
	if err != nil {
		return nil, errs.Internal("failed to list messages", err)
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, errs.Internal("failed to decode messages", err)
	}
	return msgs, nil
}

func (r *MessageRepo) FindByIDs(ctx context.Context, chatID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Message, error) {
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "chatId": chatID})
	if err != nil {
		return nil, errs.Internal("failed to load messages", err)
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, errs.Internal("failed to decode messages", err)
	}
	return msgs, nil
}

// AddReader adds the user to readBy of every listed message. $addToSet
// makes re-reading idempotent; the modified count tells the caller how many
// messages were newly read.
func (r *MessageRepo) AddReader(ctx context.Context, ids []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$addToSet": bson.M{"readBy": userID}})
	if err != nil {
		return 0, errs.Internal("failed to mark messages read", err)
	}
	return res.ModifiedCount, nil
}

// CountUnread counts messages in the chat the user did not send and has not
// read.
func (r *MessageRepo) CountUnread(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"chatId":   chatID,
		"senderId": bson.M{"$ne": userID},
		"readBy":   bson.M{"$ne": userID},
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errs.Internal("failed to count unread messages", err)
	}
	return n, nil
}
