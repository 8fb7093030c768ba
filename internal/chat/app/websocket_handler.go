package app

import (
	"context"
	"encoding/json"
	"time"

	"farmlink_service/internal/chat/domain"
	"farmlink_service/internal/chat/repository"
	errprocess "farmlink_service/pkg/err"
	"farmlink_service/pkg/logger"
	"farmlink_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// pingInterval keeps idle sockets alive through proxies
const pingInterval = 10 * time.Minute

// NotificationSubscriber delivers pushes published on a channel
type NotificationSubscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// ChatWebsocketHandler live socket of a signed-in user
type ChatWebsocketHandler struct {
	messageUC  *MessageUseCase
	subscriber NotificationSubscriber
}

// NewChatWebsocketHandler subscriber may be nil, pushes are not relayed then
func NewChatWebsocketHandler(messageUC *MessageUseCase, subscriber NotificationSubscriber) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		messageUC:  messageUC,
		subscriber: subscriber,
	}
}

// HandleConnection websocket entry point, runs until the client disconnects
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	memberID, _ := conn.Locals(middlewares.TokenMemberID).(string)
	logger.Log.Info("websocket connected", zap.String("member_id", memberID))

	ticker := time.NewTicker(pingInterval)
	ctxClose, cancel := context.WithCancel(ctx)
	outbox := make(chan domain.WSResponse, 16)
	writerDone := make(chan struct{})

	defer func() {
		ticker.Stop()
		cancel()
		<-writerDone
		logger.Log.Info("websocket close", zap.String("member_id", memberID))
		conn.Close()
	}()

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("member_id", memberID))
		return nil
	})

	if h.subscriber != nil {
		err := h.subscriber.Subscribe(ctxClose, repository.UserChannel(memberID), func(resp domain.WSResponse) {
			select {
			case outbox <- resp:
			case <-ctxClose.Done():
			}
		})
		if err != nil {
			logger.Log.Warn("notification subscribe failed", zap.String("member_id", memberID), zap.Error(err))
		}
	}

	// single writer, gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for {
			select {
			case resp := <-outbox:
				h.sendResponse(conn, resp)
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Errorf("ping error", err, zap.String("member_id", memberID))
					cancel()
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("connection closed", zap.String("member_id", memberID))
			} else {
				logger.Log.Errorf("websocket read error", err, zap.String("member_id", memberID))
			}
			return
		}
		if mt != websocket.TextMessage {
			h.push(ctxClose, outbox, errorResponse("unsupported message type"))
			continue
		}
		h.push(ctxClose, outbox, h.Exec(ctxClose, memberID, message))
	}
}

func (h *ChatWebsocketHandler) push(ctx context.Context, outbox chan<- domain.WSResponse, resp domain.WSResponse) {
	select {
	case outbox <- resp:
	case <-ctx.Done():
	}
}

// Exec runs one text frame for memberID and builds its reply
func (h *ChatWebsocketHandler) Exec(ctx context.Context, memberID string, msg []byte) domain.WSResponse {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return errorResponse("invalid json")
	}

	resp := domain.WSResponse{Action: req.Action, Payload: map[string]interface{}{}}
	var err error
	switch domain.Action(req.Action) {
	case domain.SendMessage:
		var m *domain.Message
		m, err = h.messageUC.PostMessage(ctx, req.ConversationID, memberID, req.Text)
		if err == nil {
			resp.Payload["message_id"] = m.ID
			resp.Payload["timestamp"] = m.Timestamp
		}

	case domain.ReadMessage:
		var n int64
		n, err = h.messageUC.MarkRead(ctx, req.ConversationID, memberID)
		if err == nil {
			resp.Payload["updated"] = n
		}

	case domain.GetUnread:
		var unread []domain.RoomUnreadInfo
		unread, err = h.messageUC.CountUnread(ctx, memberID)
		for _, u := range unread {
			resp.Payload[u.ConversationID] = u.UnreadCount
		}

	default:
		return errorResponse("unknown action")
	}

	if err != nil {
		logger.Log.Debug("websocket action failed",
			zap.String("member_id", memberID),
			zap.String("action", req.Action),
			zap.Error(err))
		resp.Error = errprocess.PublicMessage(err)
		resp.Payload["code"] = errprocess.CodeOf(err)
		return resp
	}
	resp.Success = true
	return resp
}

func (h *ChatWebsocketHandler) sendResponse(conn *websocket.Conn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error", err)
	}
}

func errorResponse(errorMsg string) domain.WSResponse {
	return domain.WSResponse{
		Action: "error",
		Error:  errorMsg,
	}
}
