package app

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"farmlink_service/internal/chat/domain"
	"farmlink_service/internal/chat/repository"
	"farmlink_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// previewLength runes of message text carried in a notification body
const previewLength = 100

// MessageUseCase appends and reads messages of conversations the caller belongs to
type MessageUseCase struct {
	authorizer    *MembershipAuthorizer
	roomRepo      repository.RoomRepository
	msgRepo       repository.MessageRepository
	notifier      repository.Notifier
	maxLength     int
	notifyTimeout time.Duration
	now           func() time.Time

	wg sync.WaitGroup
}

// NewMessageUseCase init message use case, a nil notifier disables notifications
func NewMessageUseCase(
	authorizer *MembershipAuthorizer,
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	notifier repository.Notifier,
	maxLength int,
	notifyTimeout time.Duration,
) *MessageUseCase {
	if notifier == nil {
		notifier = repository.NopNotifier{}
	}
	if maxLength <= 0 {
		maxLength = domain.DefaultMaxMessageLength
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &MessageUseCase{
		authorizer:    authorizer,
		roomRepo:      roomRepo,
		msgRepo:       msgRepo,
		notifier:      notifier,
		maxLength:     maxLength,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

// PostMessage authorizes the sender, appends the message, updates the conversation summary and notifies the receiver.
// Notification runs detached; its failure never fails the post.
func (uc *MessageUseCase) PostMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	room, err := uc.authorizer.Authorize(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateMessageText(text, uc.maxLength); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	receiverID, ok := room.OtherParticipant(senderID)
	if !ok {
		logger.Log.Error("conversation without a receiver",
			zap.String("conversation_id", room.ID),
			zap.Int("participants", len(room.Participants)))
		return nil, domain.ErrCreationFailed
	}

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: room.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
		Timestamp:      uc.now().UnixMilli(),
	}
	if err := uc.msgRepo.Append(ctx, msg); err != nil {
		return nil, err
	}

	if err := uc.roomRepo.UpdateSummary(ctx, room.ID, text, senderID, msg.Timestamp); err != nil {
		logger.Log.Warn("conversation summary update failed", zap.String("conversation_id", room.ID), zap.Error(err))
	}

	uc.dispatch(ctx, room, msg)
	return msg, nil
}

func (uc *MessageUseCase) dispatch(ctx context.Context, room *domain.Conversation, msg *domain.Message) {
	n := domain.Notification{
		Title: senderName(room, msg.SenderID),
		Body:  preview(msg.Text),
		Data: map[string]string{
			"conversation_id": room.ID,
			"message_id":      msg.ID,
			"sender_id":       msg.SenderID,
		},
	}
	if room.ScopeID != "" {
		n.Data["scope_id"] = room.ScopeID
	}

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.notifyTimeout)
		defer cancel()

		if err := uc.notifier.Notify(nctx, msg.ReceiverID, n); err != nil {
			logger.Log.Warn("message notification failed",
				zap.String("conversation_id", room.ID),
				zap.String("receiver_id", msg.ReceiverID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every in-flight notification has finished
func (uc *MessageUseCase) Wait() {
	uc.wg.Wait()
}

// ListMessages messages of the conversation, oldest first
func (uc *MessageUseCase) ListMessages(ctx context.Context, conversationID, callerID string) ([]domain.Message, error) {
	room, err := uc.authorizer.Authorize(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}
	return uc.msgRepo.ListByConversation(ctx, room.ID)
}

// MarkRead flags every message addressed to the caller in the conversation as read
func (uc *MessageUseCase) MarkRead(ctx context.Context, conversationID, callerID string) (int64, error) {
	room, err := uc.authorizer.Authorize(ctx, conversationID, callerID)
	if err != nil {
		return 0, err
	}
	return uc.msgRepo.MarkRead(ctx, room.ID, callerID)
}

// CountUnread unread messages per conversation for userID
func (uc *MessageUseCase) CountUnread(ctx context.Context, userID string) ([]domain.RoomUnreadInfo, error) {
	if !domain.IsValidIdentifier(userID) {
		return nil, domain.ErrInvalidIdentifier
	}
	return uc.msgRepo.CountUnreadByRoom(ctx, userID)
}

func senderName(room *domain.Conversation, senderID string) string {
	if len(room.ParticipantNames) == len(room.Participants) {
		for i, id := range room.Participants {
			if id == senderID && room.ParticipantNames[i] != "" {
				return room.ParticipantNames[i]
			}
		}
	}
	return "New message"
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "…"
}
