package app

import (
	"farmlink_service/internal/member/domain"
	errprocess "farmlink_service/pkg/err"
	"farmlink_service/pkg/logger"
	"farmlink_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MemberHandler member http endpoints
type MemberHandler struct {
	Usecase MemberUseCase
}

// NewMemberHandler create MemberHandler
func NewMemberHandler(uc MemberUseCase) *MemberHandler {
	return &MemberHandler{Usecase: uc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary register a farm account
// @Tags member
// @Accept json
// @Produce json
// @Param body body domain.RegisterInput true "account"
// @Success 201 {object} domain.Member
// @Router /member/register [post]
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req domain.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return middlewares.ErrorResponse(c, errprocess.Wrap(errprocess.CodeInvalidArgument, "invalid request body", err))
	}

	member, err := h.Usecase.Register(c.UserContext(), req)
	if err != nil {
		logger.Log.Debug("register failed", zap.Error(err))
		return middlewares.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// Login godoc
// @Summary login and receive a credential
// @Tags member
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} map[string]string
// @Router /member/login [post]
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return middlewares.ErrorResponse(c, errprocess.Wrap(errprocess.CodeInvalidArgument, "invalid request body", err))
	}

	t, err := h.Usecase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    t,
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"token": t})
}

// Logout godoc
// @Summary drop the current session
// @Tags member
// @Security BearerAuth
// @Success 204
// @Router /member/logout [post]
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	t := c.Get(fiber.HeaderAuthorization)
	if t == "" {
		t = c.Cookies(middlewares.CookieToken)
	}
	if err := h.Usecase.Logout(c.UserContext(), t); err != nil {
		return middlewares.ErrorResponse(c, err)
	}
	c.ClearCookie(middlewares.CookieToken)
	return c.SendStatus(fiber.StatusNoContent)
}

// Profile godoc
// @Summary public profile of a member
// @Tags member
// @Security BearerAuth
// @Produce json
// @Param id path string true "member id"
// @Success 200 {object} domain.Member
// @Router /member/{id} [get]
func (h *MemberHandler) Profile(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "me" {
		id = middlewares.MemberID(c)
	}

	member, err := h.Usecase.FindMember(c.UserContext(), &domain.MemberQuery{MemberID: &id})
	if err != nil {
		return middlewares.ErrorResponse(c, err)
	}

	// email only for the member themself
	if member.MemberID != middlewares.MemberID(c) {
		member.Email = ""
	}
	return c.JSON(member)
}
