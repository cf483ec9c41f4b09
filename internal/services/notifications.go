package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
	"github.com/hasinarivo/vetcare-api/internal/realtime"
)

// Reminders start this far before the appointment; the sweep window is one
// interval wide, matching the hourly cadence so each appointment is seen by
// exactly one sweep.
const (
	reminderLead  = 24 * time.Hour
	reminderSpan  = time.Hour
	reminderOnFmt = "Reminder: you have an appointment on %s"
)

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	// MarkRead flips read=true if the notification belongs to the user and
	// reports whether a document matched.
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
}

// ReminderStore is the slice of the appointments collection the sweep
// needs. ClaimReminder must be atomic (find-and-modify on
// reminderSent=false), so an overlapping or retried sweep cannot send the
// same reminder twice.
type ReminderStore interface {
	FindDueReminders(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	ClaimReminder(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// NotificationService persists notifications and pushes them over the
// realtime channel, and runs the periodic reminder sweep.
type NotificationService struct {
	notifications NotificationStore
	appointments  ReminderStore
	notifier      Notifier
	interval      time.Duration
	now           func() time.Time
}

func NewNotificationService(notifications NotificationStore, appointments ReminderStore, notifier Notifier, interval time.Duration) *NotificationService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if interval <= 0 {
		interval = reminderSpan
	}
	return &NotificationService{
		notifications: notifications,
		appointments:  appointments,
		notifier:      notifier,
		interval:      interval,
		now:           time.Now,
	}
}

// Notify persists a notification for the user and pushes it. The push is a
// hint; the stored record is what the user's notification list reads.
func (s *NotificationService) Notify(ctx context.Context, userID, appointmentID primitive.ObjectID, message string) error {
	n := &models.Notification{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		AppointmentID: appointmentID,
		Message:       message,
		CreatedAt:     s.now(),
	}
	if err := s.notifications.Insert(ctx, n); err != nil {
		return err
	}
	s.notifier.Publish(userID.Hex(), realtime.EventNewNotification, n)
	return nil
}

// Sweep finds accepted appointments 24-25 hours out that have not been
// reminded yet and emits one notification each. Claiming the reminder flag
// happens before the notification is written, so a crashed sweep can at
// worst drop a reminder, never duplicate one. Returns how many reminders
// were emitted.
func (s *NotificationService) Sweep(ctx context.Context, now time.Time) (int, error) {
	from := now.Add(reminderLead)
	to := now.Add(reminderLead + reminderSpan)

	due, err := s.appointments.FindDueReminders(ctx, from, to)
	if err != nil {
		return 0, err
	}

	emitted := 0
	for _, apt := range due {
		claimed, err := s.appointments.ClaimReminder(ctx, apt.ID)
		if err != nil {
			log.Printf("reminder sweep: claiming appointment %s: %v", apt.ID.Hex(), err)
			continue
		}
		if !claimed {
			continue // another sweep got there first
		}
		msg := fmt.Sprintf(reminderOnFmt, apt.Date.Format("Jan 2 at 3:04 PM"))
		if err := s.Notify(ctx, apt.ClientID, apt.ID, msg); err != nil {
			log.Printf("reminder sweep: notifying client %s: %v", apt.ClientID.Hex(), err)
			continue
		}
		emitted++
	}
	return emitted, nil
}

// Run drives Sweep on the configured cadence until the context is
// cancelled. Started from main as a background goroutine.
func (s *NotificationService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx, s.now()); err != nil {
				log.Printf("reminder sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("reminder sweep: sent %d reminder(s)", n)
			}
		}
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.notifications.FindByUser(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	ok, err := s.notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("notification not found")
	}
	return nil
}
