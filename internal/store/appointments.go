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

type AppointmentRepo struct {
	col *mongo.Collection
}

func NewAppointmentRepo(db *mongo.Database) *AppointmentRepo {
	return &AppointmentRepo{col: db.Collection(colAppointments)}
}

func (r *AppointmentRepo) Insert(ctx context.Context, a *models.Appointment) error {
	_, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return errs.Internal("failed to create appointment", err)
	}
	return nil
}

func (r *AppointmentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var a models.Appointment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("appointment not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load appointment", err)
	}
	return &a, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, a *models.Appointment) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return errs.Internal("failed to update appointment", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("appointment not found")
	}
	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Internal("failed to delete appointment", err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("appointment not found")
	}
	return nil
}

// CountInWindow counts the practitioner's non-rejected appointments with
// date in [from, to], both bounds included.
func (r *AppointmentRepo) CountInWindow(ctx context.Context, vetID primitive.ObjectID, from, to time.Time, exclude *primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"veterinaireId": vetID,
		"status":        bson.M{"$ne": models.AppointmentRejected},
		"date":          bson.M{"$gte": from, "$lte": to},
	}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errs.Internal("failed to query appointment window", err)
	}
	return n, nil
}

func (r *AppointmentRepo) FindActiveByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.Appointment, error) {
	return r.findActive(ctx, bson.M{"clientId": clientID})
}

func (r *AppointmentRepo) FindActiveByVet(ctx context.Context, vetID primitive.ObjectID) ([]models.Appointment, error) {
	return r.findActive(ctx, bson.M{"veterinaireId": vetID})
}

func (r *AppointmentRepo) findActive(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	filter["status"] = bson.M{"$in": []models.AppointmentStatus{models.AppointmentPending, models.AppointmentAccepted}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Internal("failed to list appointments", err)
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, errs.Internal("failed to decode appointments", err)
	}
	return appointments, nil
}

// UpdateStatusIfPending flips a pending appointment to the given status and
// reports whether it was still pending. Pending is the only non-terminal
// state, so a single conditional update is the whole state machine guard.
func (r *AppointmentRepo) UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.AppointmentPending},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return false, errs.Internal("failed to update appointment status", err)
	}
	return res.ModifiedCount == 1, nil
}

// FindDueReminders lists accepted, not-yet-reminded appointments with date
// in [from, to).
func (r *AppointmentRepo) FindDueReminders(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	filter := bson.M{
		"status":       models.AppointmentAccepted,
		"reminderSent": false,
		"date":         bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, errs.Internal("failed to query due reminders", err)
	}
	defer cursor.Close(ctx)

	var due []models.Appointment
	if err := cursor.All(ctx, &due); err != nil {
		return nil, errs.Internal("failed to decode due reminders", err)
	}
	return due, nil
}

// ClaimReminder atomically flips reminderSent from false to true. Exactly
// one concurrent caller wins; everyone else sees false.
func (r *AppointmentRepo) ClaimReminder(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "reminderSent": false},
		bson.M{"$set": bson.M{"reminderSent": true}}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, errs.Internal("failed to claim reminder", err)
	}
	return true, nil
}
