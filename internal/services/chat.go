package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
	"github.com/hasinarivo/vetcare-api/internal/realtime"
)

// ChatStore is what the chat service needs from the chats collection. The
// GetOrCreate must be atomic (upsert on the unique participantsKey index),
// so concurrent first contact between the same users yields one chat.
type ChatStore interface {
	GetOrCreate(ctx context.Context, key string, participants []primitive.ObjectID, now time.Time) (chat *models.Chat, created bool, err error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
	// RecordMessage updates lastMessage/updatedAt and bumps the unread
	// counter of every listed recipient in one atomic update.
	RecordMessage(ctx context.Context, chatID primitive.ObjectID, preview string, recipients []string, at time.Time) error
	// DecrementUnread lowers a participant's unread counter, flooring at 0.
	DecrementUnread(ctx context.Context, chatID primitive.ObjectID, userID string, n int) error
}

type MessageStore interface {
	Insert(ctx context.Context, m *models.Message) error
	FindByChat(ctx context.Context, chatID primitive.ObjectID) ([]models.Message, error)
	FindByIDs(ctx context.Context, chatID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Message, error)
	// AddReader adds the user to readBy of each message ($addToSet, so
	// repeats are no-ops) and returns how many documents actually changed.
	AddReader(ctx context.Context, ids []primitive.ObjectID, userID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error)
}

type ChatService struct {
	chats    ChatStore
	messages MessageStore
	notifier Notifier
	now      func() time.Time
}

func NewChatService(chats ChatStore, messages MessageStore, notifier Notifier) *ChatService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ChatService{chats: chats, messages: messages, notifier: notifier, now: time.Now}
}

// ParticipantsKey normalizes a participant set to its canonical storage
// key: distinct hex ids, sorted, joined by ":". Lookups and inserts both go
// through it, so the same set always maps to the same chat.
func ParticipantsKey(ids []primitive.ObjectID) string {
	hexes := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		h := id.Hex()
		if !seen[h] {
			seen[h] = true
			hexes = append(hexes, h)
		}
	}
	sort.Strings(hexes)
	return strings.Join(hexes, ":")
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out
}

// GetOrCreateConversation resolves the participant set to its chat,
// creating one lazily. The creator must be part of the set. When a chat is
// created, the other participants get a newChat push.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, creatorID primitive.ObjectID, participantIDs []primitive.ObjectID) (*models.Chat, error) {
	participants := dedupe(append(participantIDs, creatorID))
	if len(participants) < 2 {
		return nil, errs.Validation("a conversation needs at least two distinct participants")
	}

	key := ParticipantsKey(participants)
	chat, created, err := s.chats.GetOrCreate(ctx, key, participants, s.now())
	if err != nil {
		return nil, err
	}
	if created {
		for _, p := range chat.Participants {
			if p != creatorID {
				s.notifier.Publish(p.Hex(), realtime.EventNewChat, chat)
			}
		}
	}
	return chat, nil
}

// PostMessage appends a message to a conversation. The sender is seeded
// into readBy (it has implicitly read its own message), every other
// participant's unread counter goes up, and everyone — sender included, for
// multi-device sync — gets a newMessage push.
func (s *ChatService) PostMessage(ctx context.Context, chatID, senderID primitive.ObjectID, msgType models.MessageType, content string) (*models.Message, error) {
	if !msgType.Valid() {
		return nil, errs.Validation("unknown message type %q", msgType)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errs.Validation("message content cannot be empty")
	}

	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(chat, senderID) {
		return nil, errs.Authorization("you are not a participant of this conversation")
	}

	msg := &models.Message{
		ID:        primitive.NewObjectID(),
		ChatID:    chatID,
		SenderID:  senderID,
		Type:      msgType,
		Content:   content,
		ReadBy:    []primitive.ObjectID{senderID},
		CreatedAt: s.now(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(chat.Participants)-1)
	for _, p := range chat.Participants {
		if p != senderID {
			recipients = append(recipients, p.Hex())
		}
	}
	if err := s.chats.RecordMessage(ctx, chatID, truncate(content, 120), recipients, msg.CreatedAt); err != nil {
		return nil, err
	}

	for _, p := range chat.Participants {
		s.notifier.Publish(p.Hex(), realtime.EventNewMessage, msg)
	}
	return msg, nil
}

// MarkRead adds the reader to the readBy set of the targeted messages. The
// reader must be a participant and must not be the sender of any targeted
// message. Re-reading is a no-op; the original senders are told via a
// messagesRead push.
func (s *ChatService) MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID, messageIDs []primitive.ObjectID) error {
	if len(messageIDs) == 0 {
		return errs.Validation("no message ids given")
	}

	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !isParticipant(chat, readerID) {
		return errs.Authorization("you are not a participant of this conversation")
	}

	msgs, err := s.messages.FindByIDs(ctx, chatID, messageIDs)
	if err != nil {
		return err
	}
	if len(msgs) != len(messageIDs) {
		return errs.NotFound("some messages were not found in this conversation")
	}
	senders := make(map[primitive.ObjectID]bool)
	for _, m := range msgs {
		if m.SenderID == readerID {
			return errs.Validation("cannot mark your own messages as read")
		}
		senders[m.SenderID] = true
	}

	changed, err := s.messages.AddReader(ctx, messageIDs, readerID)
	if err != nil {
		return err
	}
	if changed > 0 {
		if err := s.chats.DecrementUnread(ctx, chatID, readerID.Hex(), int(changed)); err != nil {
			return err
		}
	}

	payload := map[string]any{
		"chatId":     chatID.Hex(),
		"readerId":   readerID.Hex(),
		"messageIds": hexes(messageIDs),
	}
	for sender := range senders {
		s.notifier.Publish(sender.Hex(), realtime.EventMessagesRead, payload)
	}
	return nil
}

// UnreadCountFor counts the messages the user has not read and did not
// send.
func (s *ChatService) UnreadCountFor(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return 0, err
	}
	if !isParticipant(chat, userID) {
		return 0, errs.Authorization("you are not a participant of this conversation")
	}
	return s.messages.CountUnread(ctx, chatID, userID)
}

// ListConversations returns every chat the user takes part in.
func (s *ChatService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	return s.chats.FindByParticipant(ctx, userID)
}

// ListMessages returns the messages of a conversation, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, chatID, callerID primitive.ObjectID) ([]models.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(chat, callerID) {
		return nil, errs.Authorization("you are not a participant of this conversation")
	}
	return s.messages.FindByChat(ctx, chatID)
}

func isParticipant(chat *models.Chat, userID primitive.ObjectID) bool {
	for _, p := range chat.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
