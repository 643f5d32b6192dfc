package service

import (
	"errors"
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	DeleteUser(userID uuid.UUID, requesterID string) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error)
	GetAllUsers(excludeID *uuid.UUID) ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	RoleID      uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName    string  `json:"full_name" validate:"required,max=255"`
	PhoneNumber string  `json:"phone_number" validate:"max=20"`
	RoleID      uint    `json:"role_id" validate:"required"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	if err := validationFrom(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	if existing, _ := s.userRepo.FindByEmail(email); existing != nil {
		return nil, newValidationError("email", "email already exists")
	}

	role, err := s.findRole(req.RoleID)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:       email,
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		// Privileges follow the role
		Privileges: role.Privileges,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	if err := validationFrom(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, translateNotFound(err, "user", userID)
	}

	email := normalizeEmail(req.Email)
	if email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(email); existing != nil {
			return nil, newValidationError("email", "email already exists")
		}
	}

	role, err := s.findRole(req.RoleID)
	if err != nil {
		return nil, err
	}

	user.Email = email
	user.FullName = strings.TrimSpace(req.FullName)
	user.PhoneNumber = req.PhoneNumber
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePrivileges(userID, role.Privileges); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(userID)
}

// DeleteUser soft-deletes an employee. Nobody can delete their own account.
func (s *userService) DeleteUser(userID uuid.UUID, requesterID string) error {
	if userID.String() == requesterID {
		return newValidationError("id", "you cannot delete your own account")
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return translateNotFound(err, "user", userID)
	}
	return s.userRepo.Delete(userID, requesterID)
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, translateNotFound(err, "user", userID)
	}

	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, err
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, newValidationError("privileges", "unknown privilege code in %v", privilegeCodes)
	}

	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return nil, err
	}

	user.UpdatedBy = updaterID
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers(excludeID *uuid.UUID) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(excludeID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, translateNotFound(err, "user", id)
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) findRole(id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newValidationError("role_id", "role %d does not exist", id)
	}
	return role, err
}
