package handler

import (
	"errors"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Login opens the single session of an employee; any older token stops working
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if !bindBody(c, &req) {
		return nil
	}

	session, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(session)
}

// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if !bindBody(c, &req) {
		return nil
	}

	if err := h.authService.ResetPassword(req.Email, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated, please sign in again"})
}

// Heartbeat marks the caller online; POS screens call it every minute
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id := middleware.UserID(c)
	if id == uuid.Nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if err := h.authService.Heartbeat(id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"status": "online"})
}

// ValidateToken lets a reopened POS screen check whether its stored session is still alive
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if !bindBody(c, &req) {
		return nil
	}

	session, err := h.authService.ValidateToken(req.Token)
	var notFound *service.NotFoundError
	switch {
	case errors.As(err, &notFound):
		// the account was deleted while the token was still out there
		return c.Status(401).JSON(fiber.Map{"error": "User not found"})
	case err != nil:
		return respondError(c, h.log, err)
	}
	return c.JSON(session)
}
