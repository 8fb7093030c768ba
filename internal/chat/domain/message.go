package domain

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxMessageLength used when no limit is configured
const DefaultMaxMessageLength = 2000

// Message one append-only entry of a conversation
type Message struct {
	ID             string `bson:"_id" json:"id"`
	ConversationID string `bson:"conversation_id" json:"conversation_id"`
	SenderID       string `bson:"sender_id" json:"sender_id"`
	ReceiverID     string `bson:"receiver_id" json:"receiver_id"`
	Text           string `bson:"text" json:"text"`
	Timestamp      int64  `bson:"timestamp" json:"timestamp"` // unix millis
	Read           bool   `bson:"read" json:"read"`
}

// RoomUnreadInfo unread count of one conversation
type RoomUnreadInfo struct {
	ConversationID      string `bson:"_id" json:"conversation_id"`
	UnreadCount         int    `bson:"unread_count" json:"unread_count"`
	LastUnreadTimestamp int64  `bson:"last_unread_timestamp" json:"last_unread_timestamp"`
}

// Notification out-of-band alert for the receiving participant
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// ValidateMessageText rejects blank text and text longer than maxLength runes
func ValidateMessageText(text string, maxLength int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	if utf8.RuneCountInString(text) > maxLength {
		return ErrMessageTooLong
	}
	return nil
}
