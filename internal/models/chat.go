package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat groups the messages exchanged between a fixed set of participants.
// ParticipantsKey is the sorted hex ids joined by ":" and carries a unique
// index, so at most one chat exists per participant set.
type Chat struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants    []primitive.ObjectID `bson:"participants" json:"participants"`
	ParticipantsKey string               `bson:"participantsKey" json:"-"`
	LastMessage     string               `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt   time.Time            `bson:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	UnreadCount     map[string]int       `bson:"unreadCount" json:"unreadCount"` // userID hex -> count
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
	MessageAudio MessageType = "audio"
	MessageFile  MessageType = "file"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageAudio, MessageFile:
		return true
	}
	return false
}

type Message struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ChatID    primitive.ObjectID   `bson:"chatId" json:"chatId"`
	SenderID  primitive.ObjectID   `bson:"senderId" json:"senderId"`
	Type      MessageType          `bson:"type" json:"type"`
	Content   string               `bson:"content" json:"content"`
	ReadBy    []primitive.ObjectID `bson:"readBy" json:"readBy"` // always contains SenderID
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}
