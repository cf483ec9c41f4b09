package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/models"
)

type startConversationRequest struct {
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1"`
}

// StartConversation resolves the caller plus the given participants to
// their conversation, creating it if this is first contact.
func (h *Handler) StartConversation(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	participants := make([]primitive.ObjectID, 0, len(req.ParticipantIDs))
	for _, hex := range req.ParticipantIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			failValidation(c, "Invalid participant id")
			return
		}
		participants = append(participants, id)
	}

	chat, err := h.Chat.GetOrCreateConversation(c.Request.Context(), userID, participants)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", chat)
}

func (h *Handler) ListConversations(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	chats, err := h.Chat.ListConversations(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", chats)
}

func (h *Handler) ListMessages(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}
	msgs, err := h.Chat.ListMessages(c.Request.Context(), chatID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", msgs)
}

type postMessageRequest struct {
	Type    string `json:"type" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (h *Handler) PostMessage(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	msg, err := h.Chat.PostMessage(c.Request.Context(), chatID, userID, models.MessageType(req.Type), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Message sent", msg)
}

type markReadRequest struct {
	MessageIDs []string `json:"messageIds" validate:"required,min=1"`
}

func (h *Handler) MarkMessagesRead(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.MessageIDs))
	for _, hex := range req.MessageIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			failValidation(c, "Invalid message id")
			return
		}
		ids = append(ids, id)
	}

	if err := h.Chat.MarkRead(c.Request.Context(), chatID, userID, ids); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Messages marked read", nil)
}

// UnreadCount reports how many messages in the conversation the caller has
// not read yet.
func (h *Handler) UnreadCount(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.Chat.UnreadCountFor(c.Request.Context(), chatID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"unread": n})
}
