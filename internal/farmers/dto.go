package farmers

import (
	"time"

	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/google/uuid"
)

// FarmerDTO is the staff-facing farmer shape.
type FarmerDTO struct {
	ID         uint      `json:"id"`
	UUID       uuid.UUID `json:"uuid"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	MiddleName *string   `json:"middle_name,omitempty"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	BarangayID uint      `json:"barangay_id"`
	UserID     uint      `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublicProfileDTO is served without a session to offline sync clients.
type PublicProfileDTO struct {
	UUID         uuid.UUID `json:"uuid"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	MiddleName   *string   `json:"middle_name,omitempty"`
	LastName     string    `json:"last_name"`
	FullName     string    `json:"full_name"`
	BarangayID   uint      `json:"barangay_id"`
	BarangayName string    `json:"barangay_name"`
}

// AddFarmerRequest is submitted by barangay staff from the farmers page.
type AddFarmerRequest struct {
	FirstName  string `json:"first_name" form:"first_name" validate:"required,max=150"`
	MiddleName string `json:"middle_name" form:"middle_name" validate:"max=150"`
	LastName   string `json:"last_name" form:"last_name" validate:"required,max=150"`
	Username   string `json:"username" form:"username" validate:"required,max=150"`
	Password   string `json:"password" form:"password" validate:"required,min=6"`
}

type CreateFarmerDTO struct {
	UUID         uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	MiddleName   *string
	LastName     string
	BarangayID   uint
	UserID       uint
}

func FromModel(f *models.Farmer) *FarmerDTO {
	if f == nil {
		return nil
	}
	return &FarmerDTO{
		ID:         f.ID,
		UUID:       f.UUID,
		Username:   f.Username,
		FirstName:  f.FirstName,
		MiddleName: f.MiddleName,
		LastName:   f.LastName,
		FullName:   f.FullName(),
		BarangayID: f.BarangayID,
		UserID:     f.UserID,
		CreatedAt:  f.CreatedAt,
	}
}

func (c CreateFarmerDTO) ToModel() *models.Farmer {
	return &models.Farmer{
		UUID:         c.UUID,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		MiddleName:   c.MiddleName,
		LastName:     c.LastName,
		BarangayID:   c.BarangayID,
		UserID:       c.UserID,
	}
}
