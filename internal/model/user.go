package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"estampa-fina/internal/permission"
)

// PermissionSet is a per-user override of role defaults, keyed by capability.
type PermissionSet map[permission.Capability]bool

// User represents an authenticated back-office account.
type User struct {
	BaseModel
	Email        string                            `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string                            `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Name         string                            `gorm:"type:varchar(255)" json:"name"`
	Role         permission.Role                   `gorm:"type:varchar(20);index;not null" json:"role"`
	Permissions  datatypes.JSONType[PermissionSet] `json:"permissions"`
	Active       bool                              `json:"active"`
	PhotoURL     string                            `gorm:"type:text" json:"photoURL,omitempty"`
	TokenVersion string                            `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time                        `json:"lastSeenAt,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Principal is the evaluator's view of this user.
func (u *User) Principal() permission.Principal {
	return permission.Principal{
		ID:          u.ID.String(),
		Role:        u.Role,
		Permissions: u.Permissions.Data(),
	}
}

// Can reports whether the user holds capability c.
func (u *User) Can(c permission.Capability) bool {
	return permission.Can(u.Principal(), c)
}

// ResetPermissions replaces the override map with the role template.
func (u *User) ResetPermissions() {
	u.Permissions = datatypes.NewJSONType(PermissionSet(permission.Template(u.Role)))
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID           uuid.UUID               `json:"id"`
	Email        string                  `json:"email"`
	Name         string                  `json:"name"`
	Role         permission.Role         `json:"role"`
	Permissions  PermissionSet           `json:"permissions"`
	Capabilities []permission.Capability `json:"capabilities"`
	Active       bool                    `json:"active"`
	PhotoURL     string                  `json:"photoURL,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	LastSeenAt   *time.Time              `json:"lastSeenAt,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Permissions:  u.Permissions.Data(),
		Capabilities: permission.Granted(u.Principal()),
		Active:       u.Active,
		PhotoURL:     u.PhotoURL,
		CreatedAt:    u.CreatedAt,
		LastSeenAt:   u.LastSeenAt,
	}
}
