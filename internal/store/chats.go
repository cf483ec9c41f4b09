package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

type ChatRepo struct {
	col *mongo.Collection
}

func NewChatRepo(db *mongo.Database) *ChatRepo {
	return &ChatRepo{col: db.Collection(colChats)}
}

// GetOrCreate finds the chat for a participant key or inserts one, as a
// single upsert against the unique participantsKey index. Concurrent first
// contact between the same users resolves to one chat: the losing writer's
// $setOnInsert simply does not fire.
func (r *ChatRepo) GetOrCreate(ctx context.Context, key string, participants []primitive.ObjectID, now time.Time) (*models.Chat, bool, error) {
	unread := make(map[string]int, len(participants))
	for _, p := range participants {
		unread[p.Hex()] = 0
	}

	filter := bson.M{"participantsKey": key}
	update := bson.M{"$setOnInsert": bson.M{
		"participants":    participants,
		"participantsKey": key,
		"unreadCount":     unread,
		"createdAt":       now,
		"updatedAt":       now,
	}}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, errs.Internal("failed to resolve conversation", err)
	}
	created := res.UpsertedCount == 1

	var chat models.Chat
	if err := r.col.FindOne(ctx, filter).Decode(&chat); err != nil {
		return nil, false, errs.Internal("failed to load conversation", err)
	}
	return &chat, created, nil
}

func (r *ChatRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("conversation not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load conversation", err)
	}
	return &chat, nil
}

func (r *ChatRepo) FindByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, errs.Internal("failed to list conversations", err)
	}
	defer cursor.Close(ctx)

	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, errs.Internal("failed to decode conversations", err)
	}
	return chats, nil
}

// RecordMessage bumps lastMessage/updatedAt and the unread counter of each
// recipient in one update.
func (r *ChatRepo) RecordMessage(ctx context.Context, chatID primitive.ObjectID, preview string, recipients []string, at time.Time) error {
	inc := bson.M{}
	for _, hex := range recipients {
		inc["unreadCount."+hex] = 1
	}
	update := bson.M{
		"$set": bson.M{
			"lastMessage":   preview,
			"lastMessageAt": at,
			"updatedAt":     at,
		},
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": chatID}, update)
	if err != nil {
		return errs.Internal("failed to record message on conversation", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("conversation not found")
	}
	return nil
}

// DecrementUnread lowers the participant's unread counter by n, never below
// zero.
func (r *ChatRepo) DecrementUnread(ctx context.Context, chatID primitive.ObjectID, userID string, n int) error {
	field := "unreadCount." + userID
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": chatID},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				field: bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$" + field, n}}}},
			}}},
		})
	if err != nil {
		return errs.Internal("failed to update unread counter", err)
	}
	return nil
}
