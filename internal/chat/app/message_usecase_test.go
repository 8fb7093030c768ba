package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"farmlink_service/internal/chat/domain"
	errprocess "farmlink_service/pkg/err"
	"farmlink_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPostMessage(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	f := newChatFixture(nil, &domain.Conversation{
		ID:               "c1",
		Participants:     []string{"A", "B"},
		ParticipantNames: []string{"สมชาย", "ไร่ข้าวใหม่"},
	})
	f.msgUC.now = func() time.Time { return time.UnixMilli(1700000000000) }
	f.notifier.On("Notify", mock.Anything, "B", mock.MatchedBy(func(n domain.Notification) bool {
		return n.Title == "สมชาย" && n.Body == "hi" && n.Data["conversation_id"] == "c1"
	})).Return(nil).Once()

	msg, err := f.msgUC.PostMessage(ctx, "c1", "A", "hi")
	require.NoError(t, err)
	f.msgUC.Wait()

	assert.Equal(t, "A", msg.SenderID)
	assert.Equal(t, "B", msg.ReceiverID)
	assert.False(t, msg.Read)
	assert.Equal(t, int64(1700000000000), msg.Timestamp)
	assert.NotEmpty(t, msg.ID)

	stored := f.rooms.get("c1")
	assert.Equal(t, "hi", stored.LastMessageText)
	assert.Equal(t, "A", stored.LastMessageSenderID)
	assert.Equal(t, int64(1700000000000), stored.UpdatedAt)
	assert.Len(t, f.messages.all(), 1)
	f.notifier.AssertExpectations(t)
}

func TestPostMessage_Rejections(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	f := newChatFixture(nil,
		&domain.Conversation{ID: "c1", Participants: []string{"A", "B"}},
		&domain.Conversation{ID: "solo", Participants: []string{"A"}},
	)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.msgUC.PostMessage(ctx, "c1", "A", text)
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
		assert.Equal(t, errprocess.CodeInvalidArgument, errprocess.CodeOf(err))
	}

	_, err := f.msgUC.PostMessage(ctx, "c1", "A", strings.Repeat("ก", domain.DefaultMaxMessageLength+1))
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)

	_, err = f.msgUC.PostMessage(ctx, "c1", "C", "hi")
	assert.ErrorIs(t, err, domain.ErrDenied)

	_, err = f.msgUC.PostMessage(ctx, "nope", "A", "hi")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	_, err = f.msgUC.PostMessage(ctx, "solo", "A", "hi")
	assert.ErrorIs(t, err, domain.ErrCreationFailed)

	f.msgUC.Wait()
	assert.Empty(t, f.messages.all())
	assert.Empty(t, f.rooms.get("c1").LastMessageText)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessage_NotifyFailureIgnored(t *testing.T) {
	logger.SetNewNop()
	ctx, cancel := context.WithCancel(context.Background())
	f := newChatFixture(nil, &domain.Conversation{ID: "c1", Participants: []string{"A", "B"}})

	notified := make(chan error, 1)
	f.notifier.On("Notify", mock.Anything, "B", mock.Anything).
		Run(func(args mock.Arguments) {
			notified <- args.Get(0).(context.Context).Err()
		}).
		Return(errors.New("push gateway down")).Once()

	msg, err := f.msgUC.PostMessage(ctx, "c1", "A", "  ปุ๋ยคอกพร้อมส่ง  ")
	require.NoError(t, err)
	// request finished before the dispatch ran
	cancel()
	f.msgUC.Wait()

	assert.NoError(t, <-notified, "dispatch outlives the request context")
	assert.Equal(t, "ปุ๋ยคอกพร้อมส่ง", msg.Text)
	assert.Len(t, f.messages.all(), 1)
	assert.Equal(t, "ปุ๋ยคอกพร้อมส่ง", f.rooms.get("c1").LastMessageText)
}

func TestPostMessage_HealsBeforeAppend(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	f := newChatFixture(nil, &domain.Conversation{ID: "c1", BuyerID: "A", SellerID: "B"})
	f.notifier.On("Notify", mock.Anything, "B", mock.Anything).Return(nil).Once()

	msg, err := f.msgUC.PostMessage(ctx, "c1", "A", "hi")
	require.NoError(t, err)
	f.msgUC.Wait()

	assert.Equal(t, "B", msg.ReceiverID)
	assert.Equal(t, []string{"A", "B"}, f.rooms.get("c1").Participants)
}

func TestListMessagesAndMarkRead(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	f := newChatFixture(nil,
		&domain.Conversation{ID: "c1", Participants: []string{"A", "B"}},
		&domain.Conversation{ID: "c2", Participants: []string{"A", "C"}},
	)
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	clock := int64(1000)
	f.msgUC.now = func() time.Time { clock += 10; return time.UnixMilli(clock) }

	_, err := f.msgUC.PostMessage(ctx, "c1", "B", "first")
	require.NoError(t, err)
	_, err = f.msgUC.PostMessage(ctx, "c1", "A", "second")
	require.NoError(t, err)
	_, err = f.msgUC.PostMessage(ctx, "c1", "B", "third")
	require.NoError(t, err)
	_, err = f.msgUC.PostMessage(ctx, "c2", "C", "other room")
	require.NoError(t, err)
	f.msgUC.Wait()

	msgs, err := f.msgUC.ListMessages(ctx, "c1", "A")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "third", msgs[2].Text)

	_, err = f.msgUC.ListMessages(ctx, "c1", "C")
	assert.ErrorIs(t, err, domain.ErrDenied)

	unread, err := f.msgUC.CountUnread(ctx, "A")
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "c2", unread[0].ConversationID)
	assert.Equal(t, 1, unread[0].UnreadCount)
	assert.Equal(t, 2, unread[1].UnreadCount)

	n, err := f.msgUC.MarkRead(ctx, "c1", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = f.msgUC.CountUnread(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	_, err = f.msgUC.MarkRead(ctx, "c2", "B")
	assert.ErrorIs(t, err, domain.ErrDenied)
}

func TestNotificationPreview(t *testing.T) {
	long := strings.Repeat("ข", previewLength+5)
	assert.Equal(t, []rune(long)[:previewLength], []rune(preview(long))[:previewLength])
	assert.True(t, strings.HasSuffix(preview(long), "…"))
	assert.Equal(t, "hi", preview("hi"))

	room := &domain.Conversation{Participants: []string{"A", "B"}, ParticipantNames: []string{"", "ไร่ข้าวใหม่"}}
	assert.Equal(t, "ไร่ข้าวใหม่", senderName(room, "B"))
	assert.Equal(t, "New message", senderName(room, "A"))
}
