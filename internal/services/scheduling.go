package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

// ConflictWindow is the minimum separation between two appointments of the
// same practitioner. The exclusion window around a candidate time is
// boundary-inclusive on both ends, for creation and update alike: two
// appointments exactly 20 minutes apart conflict.
const ConflictWindow = 20 * time.Minute

// AppointmentStore is what the scheduling service needs from the
// appointments collection.
type AppointmentStore interface {
	Insert(ctx context.Context, a *models.Appointment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// CountInWindow counts non-rejected appointments of the practitioner
	// with date in [from, to], optionally excluding one appointment id.
	CountInWindow(ctx context.Context, vetID primitive.ObjectID, from, to time.Time, exclude *primitive.ObjectID) (int64, error)
	FindActiveByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.Appointment, error)
	FindActiveByVet(ctx context.Context, vetID primitive.ObjectID) ([]models.Appointment, error)
	// UpdateStatusIfPending flips the status atomically and reports whether
	// the appointment was still pending.
	UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus) (bool, error)
}

type UserGetter interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FirstVeterinarian returns the veterinarian with the lowest id, so the
	// default assignment is at least deterministic.
	FirstVeterinarian(ctx context.Context) (*models.User, error)
}

type AnimalGetter interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Animal, error)
}

// AppointmentNotifier persists a notification for a user and pushes it over
// the realtime channel. Implemented by *NotificationService.
type AppointmentNotifier interface {
	Notify(ctx context.Context, userID, appointmentID primitive.ObjectID, message string) error
}

// ConflictChecker decides whether a candidate slot violates the
// minimum-separation rule for a practitioner.
type ConflictChecker struct {
	appointments AppointmentStore
}

func NewConflictChecker(appointments AppointmentStore) *ConflictChecker {
	return &ConflictChecker{appointments: appointments}
}

// HasConflict reports whether any non-rejected appointment of the
// practitioner falls within ±ConflictWindow of candidate, both bounds
// included. exclude skips one appointment id, so moving an appointment does
// not collide with itself.
func (cc *ConflictChecker) HasConflict(ctx context.Context, vetID primitive.ObjectID, candidate time.Time, exclude *primitive.ObjectID) (bool, error) {
	from := candidate.Add(-ConflictWindow)
	to := candidate.Add(ConflictWindow)
	n, err := cc.appointments.CountInWindow(ctx, vetID, from, to, exclude)
	if err != nil {
		return false, errs.Internal("could not check availability", err)
	}
	return n > 0, nil
}

// canBook is the role table for appointment creation.
var canBook = map[models.Role]bool{
	models.RoleClient: true,
}

// canDecide is the role table for accept/reject; practitioner-side staff
// act for the clinic.
var canDecide = map[models.Role]bool{
	models.RoleVeterinarian: true,
	models.RoleSecretary:    true,
	models.RoleAdmin:        true,
}

type AppointmentService struct {
	appointments AppointmentStore
	animals      AnimalGetter
	users        UserGetter
	checker      *ConflictChecker
	notify       AppointmentNotifier
	bookingLocks *keyedMutex
	now          func() time.Time
}

func NewAppointmentService(appointments AppointmentStore, animals AnimalGetter, users UserGetter, notify AppointmentNotifier) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		animals:      animals,
		users:        users,
		checker:      NewConflictChecker(appointments),
		notify:       notify,
		bookingLocks: newKeyedMutex(),
		now:          time.Now,
	}
}

type CreateAppointmentInput struct {
	AnimalID        primitive.ObjectID
	VeterinaireID   *primitive.ObjectID // nil = assign the default practitioner
	Date            time.Time
	Type            models.AppointmentType
	Services        []string
	CaseDescription string
}

// Create books a new appointment for a client. The slot is checked against
// the practitioner's existing appointments under a per-practitioner lock,
// so two simultaneous bookings cannot both pass the check.
func (s *AppointmentService) Create(ctx context.Context, clientID primitive.ObjectID, role models.Role, in CreateAppointmentInput) (*models.Appointment, error) {
	if !canBook[role] {
		return nil, errs.Authorization("only clients can book appointments")
	}
	if in.Date.IsZero() {
		return nil, errs.Validation("appointment date is required")
	}
	if in.Date.Before(s.now()) {
		return nil, errs.Validation("appointment date must be in the future")
	}
	if !in.Type.Valid() {
		return nil, errs.Validation("appointment type must be domicile or cabinet")
	}

	animal, err := s.animals.FindByID(ctx, in.AnimalID)
	if err != nil {
		return nil, err
	}
	if animal.OwnerID != clientID {
		return nil, errs.Authorization("animal does not belong to you")
	}

	var vet *models.User
	if in.VeterinaireID != nil {
		vet, err = s.users.FindByID(ctx, *in.VeterinaireID)
		if err != nil {
			return nil, err
		}
		if vet.Role != models.RoleVeterinarian {
			return nil, errs.Validation("selected practitioner is not a veterinarian")
		}
	} else {
		vet, err = s.users.FirstVeterinarian(ctx)
		if err != nil {
			return nil, err
		}
	}

	lock := s.bookingLocks.get(vet.ID.Hex())
	lock.Lock()
	defer lock.Unlock()

	conflict, err := s.checker.HasConflict(ctx, vet.ID, in.Date, nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, errs.Conflict("slot unavailable: the practitioner already has an appointment within %d minutes", int(ConflictWindow.Minutes()))
	}

	apt := &models.Appointment{
		ID:              primitive.NewObjectID(),
		Date:            in.Date,
		ClientID:        clientID,
		VeterinaireID:   vet.ID,
		AnimalID:        in.AnimalID,
		Type:            in.Type,
		Status:          models.AppointmentPending,
		Services:        in.Services,
		CaseDescription: in.CaseDescription,
		CreatedAt:       s.now(),
	}
	if err := s.appointments.Insert(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// AppointmentPatch carries the client-editable fields. Ids, timestamps and
// status are not part of it, which is how protected fields get stripped.
type AppointmentPatch struct {
	Date            *time.Time
	Type            *models.AppointmentType
	Services        *[]string
	CaseDescription *string
}

// Update lets the owning client amend a booking while it is still pending.
// A date change re-runs the conflict check, excluding the appointment
// itself so keeping the same slot never self-conflicts.
func (s *AppointmentService) Update(ctx context.Context, callerID, apptID primitive.ObjectID, patch AppointmentPatch) (*models.Appointment, error) {
	apt, err := s.appointments.FindByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if apt.ClientID != callerID {
		return nil, errs.Authorization("only the requesting client may modify this appointment")
	}
	if apt.Status != models.AppointmentPending {
		return nil, errs.Conflict("appointment is no longer pending")
	}

	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, errs.Validation("appointment type must be domicile or cabinet")
		}
		apt.Type = *patch.Type
	}
	if patch.Services != nil {
		apt.Services = *patch.Services
	}
	if patch.CaseDescription != nil {
		apt.CaseDescription = *patch.CaseDescription
	}
	if patch.Date != nil && !patch.Date.Equal(apt.Date) {
		if patch.Date.Before(s.now()) {
			return nil, errs.Validation("appointment date must be in the future")
		}
		lock := s.bookingLocks.get(apt.VeterinaireID.Hex())
		lock.Lock()
		defer lock.Unlock()

		conflict, err := s.checker.HasConflict(ctx, apt.VeterinaireID, *patch.Date, &apt.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, errs.Conflict("slot unavailable: the practitioner already has an appointment within %d minutes", int(ConflictWindow.Minutes()))
		}
		apt.Date = *patch.Date
	}

	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// Accept moves a pending appointment to accepted. Accepted and rejected are
// terminal. Who may call this is decided by the role table at the HTTP
// layer; the requesting client is notified either way.
func (s *AppointmentService) Accept(ctx context.Context, apptID primitive.ObjectID) error {
	return s.decide(ctx, apptID, models.AppointmentAccepted, "Your appointment on %s was accepted")
}

// Reject moves a pending appointment to rejected.
func (s *AppointmentService) Reject(ctx context.Context, apptID primitive.ObjectID) error {
	return s.decide(ctx, apptID, models.AppointmentRejected, "Your appointment request for %s was declined")
}

func (s *AppointmentService) decide(ctx context.Context, apptID primitive.ObjectID, status models.AppointmentStatus, msgFormat string) error {
	ok, err := s.appointments.UpdateStatusIfPending(ctx, apptID, status)
	if err != nil {
		return err
	}
	if !ok {
		apt, err := s.appointments.FindByID(ctx, apptID)
		if err != nil {
			return err
		}
		return errs.Conflict("appointment is already %s", apt.Status)
	}
	apt, err := s.appointments.FindByID(ctx, apptID)
	if err != nil {
		return err
	}
	if s.notify != nil {
		// Best-effort: the transition already happened.
		_ = s.notify.Notify(ctx, apt.ClientID, apt.ID, formatDecision(msgFormat, apt.Date))
	}
	return nil
}

func formatDecision(format string, date time.Time) string {
	return fmt.Sprintf(format, date.Format("Jan 2 at 3:04 PM"))
}

// Delete removes a booking entirely. Allowed for the requesting client, the
// practitioner on the appointment, or an admin, from any status.
func (s *AppointmentService) Delete(ctx context.Context, callerID primitive.ObjectID, role models.Role, apptID primitive.ObjectID) error {
	apt, err := s.appointments.FindByID(ctx, apptID)
	if err != nil {
		return err
	}
	if callerID != apt.ClientID && callerID != apt.VeterinaireID && role != models.RoleAdmin {
		return errs.Authorization("you are not a party to this appointment")
	}
	return s.appointments.Delete(ctx, apptID)
}

// ListActive returns the pending and accepted appointments of a client or
// practitioner, soonest first. Zero results is reported as not found so
// callers can tell "no appointments" apart from a typoed owner id.
func (s *AppointmentService) ListActive(ctx context.Context, ownerID primitive.ObjectID, role models.Role) ([]models.Appointment, error) {
	var (
		appointments []models.Appointment
		err          error
	)
	switch role {
	case models.RoleClient:
		appointments, err = s.appointments.FindActiveByClient(ctx, ownerID)
	case models.RoleVeterinarian:
		appointments, err = s.appointments.FindActiveByVet(ctx, ownerID)
	default:
		return nil, errs.Validation("active appointments exist for clients and veterinarians only")
	}
	if err != nil {
		return nil, err
	}
	if len(appointments) == 0 {
		return nil, errs.NotFound("no active appointments")
	}
	return appointments, nil
}

// Get returns one appointment, visible to its parties and clinic staff.
func (s *AppointmentService) Get(ctx context.Context, callerID primitive.ObjectID, role models.Role, apptID primitive.ObjectID) (*models.Appointment, error) {
	apt, err := s.appointments.FindByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if callerID != apt.ClientID && callerID != apt.VeterinaireID && !canDecide[role] {
		return nil, errs.Authorization("you are not a party to this appointment")
	}
	return apt, nil
}
