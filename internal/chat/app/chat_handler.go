package app

import (
	errprocess "farmlink_service/pkg/err"
	"farmlink_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler REST endpoints of conversations and messages
type ChatHandler struct {
	roomUC    *RoomUseCase
	messageUC *MessageUseCase
}

// NewChatHandler create ChatHandler
func NewChatHandler(roomUC *RoomUseCase, messageUC *MessageUseCase) *ChatHandler {
	return &ChatHandler{roomUC: roomUC, messageUC: messageUC}
}

type openConversationRequest struct {
	OtherUserID string `json:"other_user_id"`
	ScopeID     string `json:"scope_id"`
}

type postMessageRequest struct {
	Text string `json:"text"`
}

func badBody(err error) error {
	return errprocess.Wrap(errprocess.CodeInvalidArgument, "invalid request body", err)
}

// ListConversations godoc
// @Summary conversations of the caller, most recent first
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Conversation
// @Router /conversations [get]
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	rooms, err := h.roomUC.ListConversations(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	return c.JSON(rooms)
}

// OpenConversation godoc
// @Summary find or create the conversation with another user, optionally about a product
// @Tags chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body openConversationRequest true "counterpart"
// @Success 200 {object} domain.Conversation
// @Router /conversations [post]
func (h *ChatHandler) OpenConversation(c *fiber.Ctx) error {
	var req openConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return middlewares.ErrorResponse(c, badBody(err))
	}

	room, err := h.roomUC.OpenConversation(c.UserContext(), middlewares.MemberID(c), req.OtherUserID, req.ScopeID)
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	return c.JSON(room)
}

// GetConversation godoc
// @Summary one conversation of the caller
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Param id path string true "conversation id"
// @Success 200 {object} domain.Conversation
// @Router /conversations/{id} [get]
func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	room, err := h.roomUC.GetConversation(c.UserContext(), c.Params("id"), middlewares.MemberID(c))
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	return c.JSON(room)
}

// ListMessages godoc
// @Summary messages of a conversation, oldest first
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Param id path string true "conversation id"
// @Success 200 {array} domain.Message
// @Router /conversations/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.messageUC.ListMessages(c.UserContext(), c.Params("id"), middlewares.MemberID(c))
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	return c.JSON(msgs)
}

// PostMessage godoc
// @Summary send a message
// @Tags chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "conversation id"
// @Param body body postMessageRequest true "message"
// @Success 201 {object} domain.Message
// @Router /conversations/{id}/messages [post]
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return middlewares.ErrorResponse(c, badBody(err))
	}

	msg, err := h.messageUC.PostMessage(c.UserContext(), c.Params("id"), middlewares.MemberID(c), req.Text)
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// MarkRead godoc
// @Summary mark the caller's messages of a conversation as read
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Param id path string true "conversation id"
// @Success 200 {object} map[string]int64
// @Router /conversations/{id}/read [post]
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	n, err := h.messageUC.MarkRead(c.UserContext(), c.Params("id"), middlewares.MemberID(c))
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// CountUnread godoc
// @Summary unread counts per conversation
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.RoomUnreadInfo
// @Router /unread [get]
func (h *ChatHandler) CountUnread(c *fiber.Ctx) error {
	unread, err := h.messageUC.CountUnread(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	return c.JSON(unread)
}
