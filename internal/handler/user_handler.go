package handler

import (
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
	log         *zap.Logger
}

func NewUserHandler(userService service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// CreateUser handles employee creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if !bindBody(c, &req) {
		return nil
	}

	user, err := h.userService.CreateUser(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user.ToResponse(),
	})
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id", "user")
	if !ok {
		return nil
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if !bindBody(c, &req) {
		return nil
	}

	user, err := h.userService.UpdateUserPrivileges(userID, req.Privileges, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Privileges updated successfully",
		"data":    user.ToResponse(),
	})
}

// GetUsers returns every employee except the caller
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	self := middleware.UserID(c)
	users, err := h.userService.GetAllUsers(&self)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id", "user")
	if !ok {
		return nil
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id", "user")
	if !ok {
		return nil
	}

	var req service.UpdateUserRequest
	if !bindBody(c, &req) {
		return nil
	}

	user, err := h.userService.UpdateUser(userID, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user.ToResponse(),
	})
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, ok := parseID(c, "id", "user")
	if !ok {
		return nil
	}

	if err := h.userService.DeleteUser(userID, getUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
