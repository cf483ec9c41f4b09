package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
	"github.com/hasinarivo/vetcare-api/internal/realtime"
)

type notificationFixture struct {
	svc          *NotificationService
	stored       *fakeNotificationStore
	appointments *fakeAppointmentStore
	pushed       *recordingNotifier
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	stored := newFakeNotificationStore()
	appointments := newFakeAppointmentStore()
	pushed := &recordingNotifier{}
	return &notificationFixture{
		svc:          NewNotificationService(stored, appointments, pushed, time.Hour),
		stored:       stored,
		appointments: appointments,
		pushed:       pushed,
	}
}

func (fx *notificationFixture) seedAppointment(t *testing.T, date time.Time, status models.AppointmentStatus, reminded bool) *models.Appointment {
	t.Helper()
	apt := &models.Appointment{
		ID:            primitive.NewObjectID(),
		ClientID:      primitive.NewObjectID(),
		VeterinaireID: primitive.NewObjectID(),
		Date:          date,
		Status:        status,
		ReminderSent:  reminded,
	}
	require.NoError(t, fx.appointments.Insert(context.Background(), apt))
	return apt
}

func TestNotifyStoresAndPushes(t *testing.T) {
	fx := newNotificationFixture(t)
	userID := primitive.NewObjectID()
	aptID := primitive.NewObjectID()

	require.NoError(t, fx.svc.Notify(context.Background(), userID, aptID, "your appointment was accepted"))

	list, err := fx.svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, aptID, list[0].AppointmentID)
	assert.False(t, list[0].Read)

	pushes := fx.pushed.byEvent(realtime.EventNewNotification)
	require.Len(t, pushes, 1)
	assert.Equal(t, userID.Hex(), pushes[0].UserID)
}

func TestSweepWindowBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		date     time.Time
		status   models.AppointmentStatus
		reminded bool
		want     bool
	}{
		{"at the 24h lower bound", now.Add(24 * time.Hour), models.AppointmentAccepted, false, true},
		{"inside the window", now.Add(24*time.Hour + 30*time.Minute), models.AppointmentAccepted, false, true},
		{"at the 25h upper bound", now.Add(25 * time.Hour), models.AppointmentAccepted, false, false},
		{"just under 24h out", now.Add(24*time.Hour - time.Second), models.AppointmentAccepted, false, false},
		{"pending is skipped", now.Add(24*time.Hour + 10*time.Minute), models.AppointmentPending, false, false},
		{"rejected is skipped", now.Add(24*time.Hour + 10*time.Minute), models.AppointmentRejected, false, false},
		{"already reminded", now.Add(24*time.Hour + 10*time.Minute), models.AppointmentAccepted, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newNotificationFixture(t)
			apt := fx.seedAppointment(t, tc.date, tc.status, tc.reminded)

			emitted, err := fx.svc.Sweep(context.Background(), now)
			require.NoError(t, err)

			if !tc.want {
				assert.Zero(t, emitted)
				return
			}
			assert.Equal(t, 1, emitted)
			list, err := fx.svc.ListForUser(context.Background(), apt.ClientID)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, apt.ID, list[0].AppointmentID)
		})
	}
}

func TestSweepIsExactlyOnce(t *testing.T) {
	fx := newNotificationFixture(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	apt := fx.seedAppointment(t, now.Add(24*time.Hour+15*time.Minute), models.AppointmentAccepted, false)

	emitted, err := fx.svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)

	// A retried sweep over the same window finds the reminder claimed.
	emitted, err = fx.svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, emitted)

	list, err := fx.svc.ListForUser(context.Background(), apt.ClientID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOverlappingSweepsEmitOneReminder(t *testing.T) {
	fx := newNotificationFixture(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	fx.seedAppointment(t, now.Add(24*time.Hour+15*time.Minute), models.AppointmentAccepted, false)

	const sweeps = 8
	results := make(chan int, sweeps)
	errc := make(chan error, sweeps)
	var wg sync.WaitGroup
	for i := 0; i < sweeps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := fx.svc.Sweep(context.Background(), now)
			if err != nil {
				errc <- err
				return
			}
			results <- n
		}()
	}
	wg.Wait()
	close(results)
	close(errc)
	for err := range errc {
		require.NoError(t, err)
	}

	total := 0
	for n := range results {
		total += n
	}
	assert.Equal(t, 1, total)
}

func TestMarkReadIsOwnerOnly(t *testing.T) {
	fx := newNotificationFixture(t)
	userID := primitive.NewObjectID()
	require.NoError(t, fx.svc.Notify(context.Background(), userID, primitive.NewObjectID(), "hello"))

	list, err := fx.svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = fx.svc.MarkRead(context.Background(), primitive.NewObjectID(), list[0].ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	require.NoError(t, fx.svc.MarkRead(context.Background(), userID, list[0].ID))
	list, err = fx.svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}
