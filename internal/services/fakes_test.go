package services

// In-memory stand-ins for the store interfaces, so the service tests run
// without a MongoDB instance. They mirror the repository semantics,
// including the atomicity of GetOrCreate, ClaimReminder and
// UpdateStatusIfPending.

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
	"github.com/hasinarivo/vetcare-api/internal/realtime"
)

// --- appointments ---

type fakeAppointmentStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Appointment
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{items: make(map[primitive.ObjectID]*models.Appointment)}
}

func (f *fakeAppointmentStore) Insert(_ context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAppointmentStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, errs.NotFound("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentStore) Update(_ context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[a.ID]; !ok {
		return errs.NotFound("appointment not found")
	}
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAppointmentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return errs.NotFound("appointment not found")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAppointmentStore) CountInWindow(_ context.Context, vetID primitive.ObjectID, from, to time.Time, exclude *primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.items {
		if a.VeterinaireID != vetID || a.Status == models.AppointmentRejected {
			continue
		}
		if exclude != nil && a.ID == *exclude {
			continue
		}
		if !a.Date.Before(from) && !a.Date.After(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAppointmentStore) FindActiveByClient(_ context.Context, clientID primitive.ObjectID) ([]models.Appointment, error) {
	return f.findActive(func(a *models.Appointment) bool { return a.ClientID == clientID }), nil
}

func (f *fakeAppointmentStore) FindActiveByVet(_ context.Context, vetID primitive.ObjectID) ([]models.Appointment, error) {
	return f.findActive(func(a *models.Appointment) bool { return a.VeterinaireID == vetID }), nil
}

func (f *fakeAppointmentStore) findActive(match func(*models.Appointment) bool) []models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.items {
		if match(a) && (a.Status == models.AppointmentPending || a.Status == models.AppointmentAccepted) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (f *fakeAppointmentStore) UpdateStatusIfPending(_ context.Context, id primitive.ObjectID, status models.AppointmentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok || a.Status != models.AppointmentPending {
		return false, nil
	}
	a.Status = status
	return true, nil
}

func (f *fakeAppointmentStore) FindDueReminders(_ context.Context, from, to time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []models.Appointment
	for _, a := range f.items {
		if a.Status != models.AppointmentAccepted || a.ReminderSent {
			continue
		}
		if !a.Date.Before(from) && a.Date.Before(to) {
			due = append(due, *a)
		}
	}
	return due, nil
}

func (f *fakeAppointmentStore) ClaimReminder(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok || a.ReminderSent {
		return false, nil
	}
	a.ReminderSent = true
	return true, nil
}

// --- users / animals ---

type fakeUserStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{items: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		cp := *u
		f.items[u.ID] = &cp
	}
	return f
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FirstVeterinarian(_ context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first *models.User
	for _, u := range f.items {
		if u.Role != models.RoleVeterinarian {
			continue
		}
		if first == nil || u.ID.Hex() < first.ID.Hex() {
			first = u
		}
	}
	if first == nil {
		return nil, errs.NotFound("no veterinarian is available")
	}
	cp := *first
	return &cp, nil
}

func (f *fakeUserStore) SetRating(_ context.Context, vetID primitive.ObjectID, avg float64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[vetID]
	if !ok {
		return errs.NotFound("user not found")
	}
	u.Rating = avg
	u.RatingCount = count
	return nil
}

type fakeAnimalStore struct {
	items map[primitive.ObjectID]*models.Animal
}

func newFakeAnimalStore(animals ...*models.Animal) *fakeAnimalStore {
	f := &fakeAnimalStore{items: make(map[primitive.ObjectID]*models.Animal)}
	for _, a := range animals {
		cp := *a
		f.items[a.ID] = &cp
	}
	return f
}

func (f *fakeAnimalStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Animal, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, errs.NotFound("animal not found")
	}
	cp := *a
	return &cp, nil
}

// --- chats / messages ---

type fakeChatStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Chat
	byKey map[string]primitive.ObjectID
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		items: make(map[primitive.ObjectID]*models.Chat),
		byKey: make(map[string]primitive.ObjectID),
	}
}

func (f *fakeChatStore) GetOrCreate(_ context.Context, key string, participants []primitive.ObjectID, now time.Time) (*models.Chat, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byKey[key]; ok {
		cp := *f.items[id]
		return &cp, false, nil
	}
	unread := make(map[string]int, len(participants))
	for _, p := range participants {
		unread[p.Hex()] = 0
	}
	chat := &models.Chat{
		ID:              primitive.NewObjectID(),
		Participants:    participants,
		ParticipantsKey: key,
		UnreadCount:     unread,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.items[chat.ID] = chat
	f.byKey[key] = chat.ID
	cp := *chat
	return &cp, true, nil
}

func (f *fakeChatStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.items[id]
	if !ok {
		return nil, errs.NotFound("conversation not found")
	}
	cp := *chat
	return &cp, nil
}

func (f *fakeChatStore) FindByParticipant(_ context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Chat
	for _, chat := range f.items {
		for _, p := range chat.Participants {
			if p == userID {
				out = append(out, *chat)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeChatStore) RecordMessage(_ context.Context, chatID primitive.ObjectID, preview string, recipients []string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.items[chatID]
	if !ok {
		return errs.NotFound("conversation not found")
	}
	chat.LastMessage = preview
	chat.LastMessageAt = at
	chat.UpdatedAt = at
	for _, hex := range recipients {
		chat.UnreadCount[hex]++
	}
	return nil
}

func (f *fakeChatStore) DecrementUnread(_ context.Context, chatID primitive.ObjectID, userID string, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.items[chatID]
	if !ok {
		return errs.NotFound("conversation not found")
	}
	chat.UnreadCount[userID] -= n
	if chat.UnreadCount[userID] < 0 {
		chat.UnreadCount[userID] = 0
	}
	return nil
}

type fakeMessageStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Message
	order []primitive.ObjectID
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{items: make(map[primitive.ObjectID]*models.Message)}
}

func (f *fakeMessageStore) Insert(_ context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	cp.ReadBy = append([]primitive.ObjectID(nil), m.ReadBy...)
	f.items[m.ID] = &cp
	f.order = append(f.order, m.ID)
	return nil
}

func (f *fakeMessageStore) FindByChat(_ context.Context, chatID primitive.ObjectID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, id := range f.order {
		if m := f.items[id]; m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) FindByIDs(_ context.Context, chatID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, id := range ids {
		if m, ok := f.items[id]; ok && m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) AddReader(_ context.Context, ids []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed int64
	for _, id := range ids {
		m, ok := f.items[id]
		if !ok {
			continue
		}
		already := false
		for _, r := range m.ReadBy {
			if r == userID {
				already = true
				break
			}
		}
		if !already {
			m.ReadBy = append(m.ReadBy, userID)
			changed++
		}
	}
	return changed, nil
}

func (f *fakeMessageStore) CountUnread(_ context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.items {
		if m.ChatID != chatID || m.SenderID == userID {
			continue
		}
		read := false
		for _, r := range m.ReadBy {
			if r == userID {
				read = true
				break
			}
		}
		if !read {
			n++
		}
	}
	return n, nil
}

// --- reviews ---

type fakeReviewStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{items: make(map[primitive.ObjectID]*models.Review)}
}

func (f *fakeReviewStore) Insert(_ context.Context, r *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.ClientID == r.ClientID && existing.VeterinarianID == r.VeterinarianID {
			return errs.Conflict("you have already reviewed this veterinarian")
		}
	}
	cp := *r
	f.items[r.ID] = &cp
	return nil
}

func (f *fakeReviewStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, errs.NotFound("review not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewStore) FindByVet(_ context.Context, vetID primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.items {
		if r.VeterinarianID == vetID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) Update(_ context.Context, r *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[r.ID]; !ok {
		return errs.NotFound("review not found")
	}
	cp := *r
	f.items[r.ID] = &cp
	return nil
}

func (f *fakeReviewStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return errs.NotFound("review not found")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeReviewStore) AggregateForVet(_ context.Context, vetID primitive.ObjectID) (float64, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	count := 0
	for _, r := range f.items {
		if r.VeterinarianID == vetID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

// --- notifications ---

type fakeNotificationStore struct {
	mu    sync.Mutex
	items []*models.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{}
}

func (f *fakeNotificationStore) Insert(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeNotificationStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

// --- push channel ---

type pushedEvent struct {
	UserID string
	Event  realtime.Event
	Data   any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []pushedEvent
}

func (r *recordingNotifier) Publish(userID string, event realtime.Event, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, pushedEvent{UserID: userID, Event: event, Data: data})
}

func (r *recordingNotifier) byEvent(event realtime.Event) []pushedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []pushedEvent
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// recordingAppointmentNotifier captures appointment decision notices.
type recordingAppointmentNotifier struct {
	mu      sync.Mutex
	notices []string
}

func (r *recordingAppointmentNotifier) Notify(_ context.Context, _, _ primitive.ObjectID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, message)
	return nil
}
