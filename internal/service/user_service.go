package service

import (
	"errors"
	"strings"

	"bodega-pos/internal/model"
	"bodega-pos/internal/repository"
	"bodega-pos/pkg/validator"
)

var (
	ErrEmailExists = errors.New("email already exists")
	ErrLastAdmin   = errors.New("cannot remove the last ADMIN")
	ErrDeleteSelf  = errors.New("cannot delete your own account")
)

type UserService interface {
	CreateUser(req *CreateUserRequest) (*model.UserProfile, error)
	UpdateUser(userID string, req *UpdateUserRequest) (*model.UserProfile, error)
	DeleteUser(userID, actorID string) error
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id string) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=6"`
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Role      model.Role `json:"role" validate:"required,role"`
}

type UpdateUserRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  *string    `json:"password,omitempty" validate:"omitempty,min=6"`
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Role      model.Role `json:"role" validate:"required,role"`
	IsActive  *bool      `json:"is_active"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(req *CreateUserRequest) (*model.UserProfile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.FirstError(req); err != nil {
		return nil, err
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	user := &model.UserProfile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(userID string, req *UpdateUserRequest) (*model.UserProfile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.FirstError(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, ErrEmailExists
		}
	}

	demoting := user.Role == model.RoleAdmin && (req.Role != model.RoleAdmin || (req.IsActive != nil && !*req.IsActive))
	if demoting {
		if err := s.ensureAnotherAdmin(); err != nil {
			return nil, err
		}
	}

	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone
	user.Role = req.Role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return s.userRepo.FindByID(userID)
}

// DeleteUser refuses to remove the actor itself or the last ADMIN.
func (s *userService) DeleteUser(userID, actorID string) error {
	if userID == actorID {
		return ErrDeleteSelf
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if user.Role == model.RoleAdmin {
		if err := s.ensureAnotherAdmin(); err != nil {
			return err
		}
	}
	return s.userRepo.Delete(userID)
}

func (s *userService) ensureAnotherAdmin() error {
	admins, err := s.userRepo.CountByRole(model.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}
