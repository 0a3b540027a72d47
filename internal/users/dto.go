package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	IsStaff     bool       `json:"is_staff"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	Username     string
	PasswordHash string
	IsStaff      bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		IsStaff:     u.IsStaff,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	email := strings.TrimSpace(c.Email)
	username := strings.TrimSpace(c.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	return &models.User{
		Email:        strings.ToLower(email),
		Username:     username,
		PasswordHash: c.PasswordHash,
		IsStaff:      c.IsStaff,
		IsActive:     true,
	}
}
