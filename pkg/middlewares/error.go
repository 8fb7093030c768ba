package middlewares

import (
	errprocess "farmlink_service/pkg/err"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse writes err as {"code","error"} with the status its code maps to
func ErrorResponse(c *fiber.Ctx, err error) error {
	return c.Status(errprocess.HTTPStatus(err)).JSON(fiber.Map{
		"code":  errprocess.CodeOf(err),
		"error": errprocess.PublicMessage(err),
	})
}
