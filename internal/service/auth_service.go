package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/ws"
	"estampa-fina/pkg/jwt"
	"estampa-fina/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordMismatch   = errors.New("new password and confirmation do not match")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*model.User, error)
	ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error
	UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
	Logout(userID uuid.UUID) error
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token        string                  `json:"token"`
	User         model.UserResponse      `json:"user"`
	Capabilities []permission.Capability `json:"capabilities"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	Confirmation    string `json:"confirmation" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	PhotoURL *string `json:"photoURL" validate:"omitempty,max=2048"`
}

type authService struct {
	userRepo    repository.UserRepository
	issuer      *jwt.Issuer
	wsHub       Publisher
	idleTimeout time.Duration
}

// NewAuthService wires login and session checks. A zero idleTimeout keeps
// sessions alive until the token itself expires.
func NewAuthService(userRepo repository.UserRepository, issuer *jwt.Issuer, hub Publisher, idleTimeout time.Duration) AuthService {
	return &authService{
		userRepo:    userRepo,
		issuer:      issuer,
		wsHub:       hub,
		idleTimeout: idleTimeout,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrUserInactive
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a fresh token version invalidates older tokens.
	now := time.Now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update session")
	}

	token, err := s.issuer.GenerateToken(user.ID, user.Email, user.Name, string(user.Role), user.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	resp := user.ToResponse()
	return &LoginResponse{
		Token:        token,
		User:         resp,
		Capabilities: resp.Capabilities,
	}, nil
}

// ValidateToken resolves a bearer token to the current user record. Role and
// permissions always come from the store, never from the token claims.
func (s *authService) ValidateToken(tokenString string) (*model.User, error) {
	claims, err := s.issuer.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if !user.Active {
		return nil, ErrUserInactive
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	if s.idleTimeout > 0 && (user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > s.idleTimeout) {
		return nil, ErrSessionTimeout
	}

	return user, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	if req.NewPassword != req.Confirmation {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

func (s *authService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	changed := false
	if req.Name != nil && *req.Name != user.Name {
		user.Name = *req.Name
		changed = true
	}
	if req.PhotoURL != nil && *req.PhotoURL != user.PhotoURL {
		user.PhotoURL = *req.PhotoURL
		changed = true
	}

	if changed {
		user.UpdatedBy = user.ID.String()
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		publish(s.wsHub, ws.TopicUsers, "user_update", "profile_updated", ActorFromUser(user),
			map[string]interface{}{"target_id": user.ID.String()}, user.Name+" updated their profile")
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Logout(userID uuid.UUID) error {
	return s.userRepo.UpdateTokenVersion(userID, uuid.New().String())
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}

	if s.wsHub != nil {
		s.wsHub.Publish(ws.TopicUsers, map[string]interface{}{
			"type":         "user_status_update",
			"user_id":      userID.String(),
			"status":       "online",
			"last_seen_at": time.Now(),
		})
	}
	return nil
}
