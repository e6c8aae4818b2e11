package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/ws"
	"estampa-fina/pkg/validator"
)

var (
	ErrEmailExists = errors.New("email already exists")
)

type UserService interface {
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	CreateUser(actor Actor, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error)
	UpdatePermissions(actor Actor, id uuid.UUID, perms model.PermissionSet) (*model.UserResponse, error)
	SetActive(actor Actor, id uuid.UUID, active bool) (*model.UserResponse, error)
	ResetPassword(actor Actor, id uuid.UUID, newPassword string) error
	DeleteUser(actor Actor, id uuid.UUID) error
}

type CreateUserRequest struct {
	Email       string              `json:"email" validate:"required,email"`
	Password    string              `json:"password" validate:"required,min=6"`
	Name        string              `json:"name" validate:"required"`
	Role        permission.Role     `json:"role" validate:"required"`
	PhotoURL    string              `json:"photoURL"`
	Permissions model.PermissionSet `json:"permissions"`
}

// UpdateUserRequest changes account details. Role, Active and Permissions
// are optional and each is gated by its own capability.
type UpdateUserRequest struct {
	Email       *string             `json:"email" validate:"omitempty,email"`
	Name        *string             `json:"name" validate:"omitempty,min=1"`
	PhotoURL    *string             `json:"photoURL"`
	Role        *permission.Role    `json:"role"`
	Active      *bool               `json:"active"`
	Permissions model.PermissionSet `json:"permissions"`
}

type userService struct {
	userRepo repository.UserRepository
	activity ActivityService
	wsHub    Publisher
}

func NewUserService(userRepo repository.UserRepository, activity ActivityService, hub Publisher) UserService {
	return &userService{
		userRepo: userRepo,
		activity: activity,
		wsHub:    hub,
	}
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) CreateUser(actor Actor, req *CreateUserRequest) (*model.UserResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, invalid("unknown role %q", req.Role)
	}
	if err := checkPermissionSet(req.Permissions); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(req.Email); err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    strings.TrimSpace(req.Email),
		Name:     req.Name,
		Role:     req.Role,
		PhotoURL: req.PhotoURL,
		Active:   true,
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID

	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	user.ResetPermissions()
	if len(req.Permissions) > 0 {
		if !actor.Can(permission.EditUserPermissions) {
			return nil, ErrForbidden
		}
		user.Permissions = datatypes.NewJSONType(mergePermissions(user.Permissions.Data(), req.Permissions))
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	s.activity.Record(actor, "create", "user", user.ID.String(), fmt.Sprintf("created user %s (%s)", user.Name, user.Role), nil, resp)
	s.broadcast(actor, user, "user_created", fmt.Sprintf("%s created user '%s'", actor.Name, user.Name))
	return &resp, nil
}

func (s *userService) UpdateUser(actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	before := user.ToResponse()
	target := user.ID.String()

	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		if err := s.ensureEmailFree(*req.Email); err != nil {
			return nil, err
		}
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.PhotoURL != nil {
		user.PhotoURL = *req.PhotoURL
	}

	if req.Role != nil && *req.Role != user.Role {
		if !req.Role.Valid() {
			return nil, invalid("unknown role %q", *req.Role)
		}
		if err := permission.CheckSelfModification(actor.ID, target, permission.FieldRole); err != nil {
			return nil, err
		}
		if !actor.Can(permission.EditUserPermissions) {
			return nil, ErrForbidden
		}
		user.Role = *req.Role
		user.ResetPermissions()
	}

	if len(req.Permissions) > 0 {
		if err := s.checkPermissionEdit(actor, target, req.Permissions); err != nil {
			return nil, err
		}
		user.Permissions = datatypes.NewJSONType(mergePermissions(user.Permissions.Data(), req.Permissions))
	}

	if req.Active != nil && *req.Active != user.Active {
		if err := permission.CheckSelfModification(actor.ID, target, permission.FieldActive); err != nil {
			return nil, err
		}
		if !actor.Can(permission.ToggleUserActive) {
			return nil, ErrForbidden
		}
		user.Active = *req.Active
	}

	user.UpdatedBy = actor.ID
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	s.activity.Record(actor, "update", "user", target, "updated user "+user.Name, before, resp)
	s.broadcast(actor, user, "user_updated", fmt.Sprintf("%s updated user '%s'", actor.Name, user.Name))
	return &resp, nil
}

func (s *userService) UpdatePermissions(actor Actor, id uuid.UUID, perms model.PermissionSet) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if err := s.checkPermissionEdit(actor, user.ID.String(), perms); err != nil {
		return nil, err
	}
	before := user.ToResponse()

	user.Permissions = datatypes.NewJSONType(mergePermissions(user.Permissions.Data(), perms))
	user.UpdatedBy = actor.ID
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	s.activity.Record(actor, "update_permissions", "user", user.ID.String(), "changed permissions of "+user.Name, before.Permissions, resp.Permissions)
	s.broadcast(actor, user, "permissions_updated", fmt.Sprintf("%s changed permissions of '%s'", actor.Name, user.Name))
	return &resp, nil
}

func (s *userService) SetActive(actor Actor, id uuid.UUID, active bool) (*model.UserResponse, error) {
	if err := permission.CheckSelfModification(actor.ID, id.String(), permission.FieldActive); err != nil {
		return nil, err
	}
	if !actor.Can(permission.ToggleUserActive) {
		return nil, ErrForbidden
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.Active == active {
		resp := user.ToResponse()
		return &resp, nil
	}

	user.Active = active
	user.UpdatedBy = actor.ID
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	action := "user_deactivated"
	if active {
		action = "user_activated"
	}
	resp := user.ToResponse()
	s.activity.Record(actor, action, "user", user.ID.String(), fmt.Sprintf("set %s active=%t", user.Name, active), nil, nil)
	s.broadcast(actor, user, action, fmt.Sprintf("%s set '%s' active=%t", actor.Name, user.Name, active))
	return &resp, nil
}

func (s *userService) ResetPassword(actor Actor, id uuid.UUID, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("password must have at least 6 characters")
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return ErrUserNotFound
	}
	if actor.ID == user.ID.String() || !permission.CanResetPassword(actor.User.Role, user.Role) {
		return ErrForbidden
	}

	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash password")
	}
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}
	// Existing sessions of the target end with the old password.
	if err := s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		return err
	}

	s.activity.Record(actor, "reset_password", "user", user.ID.String(), "reset password of "+user.Name, nil, nil)
	return nil
}

func (s *userService) DeleteUser(actor Actor, id uuid.UUID) error {
	if err := permission.CheckSelfModification(actor.ID, id.String(), permission.FieldAccount); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}

	s.activity.Record(actor, "delete", "user", id.String(), "deleted user "+user.Name, user.ToResponse(), nil)
	s.broadcast(actor, user, "user_deleted", fmt.Sprintf("%s deleted user '%s'", actor.Name, user.Name))
	return nil
}

func (s *userService) checkPermissionEdit(actor Actor, targetID string, perms model.PermissionSet) error {
	if err := permission.CheckSelfModification(actor.ID, targetID, permission.FieldPermissions); err != nil {
		return err
	}
	if !actor.Can(permission.EditUserPermissions) {
		return ErrForbidden
	}
	return checkPermissionSet(perms)
}

// broadcast notifies the users topic and the target's own topic so an open
// session of that user can refresh its role and permissions.
func (s *userService) broadcast(actor Actor, user *model.User, action, message string) {
	data := map[string]interface{}{
		"target": map[string]interface{}{
			"id":     user.ID.String(),
			"name":   user.Name,
			"role":   user.Role,
			"active": user.Active,
		},
	}
	publish(s.wsHub, ws.TopicUsers, "user_update", action, actor, data, message)
	publish(s.wsHub, ws.UserTopic(user.ID.String()), "account_update", action, actor, data, message)
}

func checkPermissionSet(perms model.PermissionSet) error {
	for c := range perms {
		if !permission.Known(c) {
			return invalid("unknown capability %q", c)
		}
	}
	return nil
}

func mergePermissions(base, overrides model.PermissionSet) model.PermissionSet {
	out := make(model.PermissionSet, len(base)+len(overrides))
	for c, v := range base {
		out[c] = v
	}
	for c, v := range overrides {
		out[c] = v
	}
	return out
}

// ensureEmailFree reports ErrEmailExists when the address is taken. Only a
// missing record counts as free; other store errors are returned.
func (s *userService) ensureEmailFree(email string) error {
	_, err := s.userRepo.FindByEmail(strings.TrimSpace(email))
	switch {
	case err == nil:
		return ErrEmailExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	}
	return err
}
