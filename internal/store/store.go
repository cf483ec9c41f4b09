// Package store holds the MongoDB repositories behind the service
// interfaces.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	colUsers         = "users"
	colAnimals       = "animals"
	colAppointments  = "appointments"
	colChats         = "chats"
	colMessages      = "messages"
	colReviews       = "reviews"
	colNotifications = "notifications"
	colPosts         = "posts"
)

// EnsureIndexes creates the unique and query indexes the repositories rely
// on. Called once at startup; Mongo treats re-creation as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{colAnimals, mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "name", Value: 1}}, Options: unique}},
		{colChats, mongo.IndexModel{Keys: bson.D{{Key: "participantsKey", Value: 1}}, Options: unique}},
		{colReviews, mongo.IndexModel{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "veterinarianId", Value: 1}}, Options: unique}},
		{colAppointments, mongo.IndexModel{Keys: bson.D{{Key: "veterinaireId", Value: 1}, {Key: "date", Value: 1}}}},
		{colMessages, mongo.IndexModel{Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		{colNotifications, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
	}

	for _, idx := range indexes {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return err
		}
	}
	return nil
}
