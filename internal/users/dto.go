package users

import (
	"time"

	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uint       `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Role           enums.Role `json:"role"`
	BarangayID     *uint      `json:"barangay_id,omitempty"`
	MunicipalityID *uint      `json:"municipality_id,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email          string
	FullName       string
	Role           enums.Role
	PasswordHash   string
	BarangayID     *uint
	MunicipalityID *uint
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		BarangayID:     u.BarangayID,
		MunicipalityID: u.MunicipalityID,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:          c.Email,
		FullName:       c.FullName,
		Role:           c.Role,
		PasswordHash:   c.PasswordHash,
		BarangayID:     c.BarangayID,
		MunicipalityID: c.MunicipalityID,
	}
}
