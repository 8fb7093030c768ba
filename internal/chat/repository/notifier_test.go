package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"farmlink_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

type mockKafkaWriter struct {
	mock.Mock
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Notify(context.Context, string, domain.Notification) error {
	s.calls++
	return s.err
}

var testNotification = domain.Notification{
	Title: "สมชาย",
	Body:  "สนใจครับ",
	Data:  map[string]string{"conversation_id": "c1"},
}

func TestRabbitNotifier(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", "", "chat.notifications", false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var env notificationEnvelope
		if err := json.Unmarshal(msg.Body, &env); err != nil {
			return false
		}
		return msg.DeliveryMode == amqp.Persistent && env.UserID == "u2" && env.Body == "สนใจครับ"
	})).Return(nil).Once()

	n := NewRabbitNotifier(pub, "chat.notifications")
	require.NoError(t, n.Notify(context.Background(), "u2", testNotification))
	pub.AssertExpectations(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "u2", testNotification), context.Canceled)
}

func TestKafkaNotifier(t *testing.T) {
	w := new(mockKafkaWriter)
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 && string(msgs[0].Key) == "u2"
	})).Return(errors.New("leader not available")).Once()

	err := NewKafkaNotifier(w).Notify(context.Background(), "u2", testNotification)
	assert.ErrorContains(t, err, "kafka notify")
	w.AssertExpectations(t)
}

func TestMultiNotifier(t *testing.T) {
	ok := &stubNotifier{}
	failing := &stubNotifier{err: errors.New("down")}

	err := MultiNotifier{failing, ok}.Notify(context.Background(), "u2", testNotification)

	assert.ErrorContains(t, err, "down")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, failing.calls)
	assert.NoError(t, MultiNotifier{}.Notify(context.Background(), "u2", testNotification))
}

func TestNotificationResponse(t *testing.T) {
	resp := NotificationResponse(testNotification)

	assert.Equal(t, string(domain.NotifyMessage), resp.Action)
	assert.True(t, resp.Success)
	assert.Equal(t, "c1", resp.Payload["conversation_id"])
	assert.Equal(t, "สนใจครับ", resp.Payload["body"])
	assert.Equal(t, "chat:user:u2", UserChannel("u2"))
}

func TestDecodeNotification(t *testing.T) {
	body, err := json.Marshal(notificationEnvelope{UserID: "u2", Notification: testNotification})
	require.NoError(t, err)

	userID, n, err := DecodeNotification(body)
	require.NoError(t, err)
	assert.Equal(t, "u2", userID)
	assert.Equal(t, testNotification, n)

	_, _, err = DecodeNotification([]byte(`{"title":"x"}`))
	assert.Error(t, err)

	_, _, err = DecodeNotification([]byte(`not json`))
	assert.Error(t, err)
}
