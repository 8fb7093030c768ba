package router

import (
	"context"

	"farmlink_service/internal/chat/app"
	"farmlink_service/pkg/middlewares"
	"farmlink_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes chat REST and websocket routes, all behind the credential check
func RegisterRoutes(r *fiber.App, tokens *token.Manager, chat *app.ChatHandler, chatWebsocket *app.ChatWebsocketHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := r.Group("", middlewares.JWTMiddleware(tokens))
	api.Get("/conversations", chat.ListConversations)
	api.Post("/conversations", chat.OpenConversation)
	api.Get("/conversations/:id", chat.GetConversation)
	api.Get("/conversations/:id/messages", chat.ListMessages)
	api.Post("/conversations/:id/messages", chat.PostMessage)
	api.Post("/conversations/:id/read", chat.MarkRead)
	api.Get("/unread", chat.CountUnread)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
