package router

import (
	"farmlink_service/internal/member/app"
	"farmlink_service/pkg/middlewares"
	"farmlink_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes member routes, everything but register and login needs a credential
func RegisterRoutes(r *fiber.App, handler *app.MemberHandler, tokens *token.Manager) {
	member := r.Group("/member")
	member.Post("/register", handler.Register)
	member.Post("/login", handler.Login)

	auth := member.Group("", middlewares.JWTMiddleware(tokens))
	auth.Post("/logout", handler.Logout)
	auth.Get("/:id", handler.Profile)
}
