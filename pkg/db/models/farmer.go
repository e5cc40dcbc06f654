package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Farmer is a restricted principal registered by a barangay staff user.
type Farmer struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	UUID         uuid.UUID `gorm:"column:uuid;type:uuid;not null;uniqueIndex"`
	Username     string    `gorm:"column:username;type:varchar(150);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FirstName    string    `gorm:"column:first_name;type:varchar(150);not null"`
	MiddleName   *string   `gorm:"column:middle_name;type:varchar(150)"`
	LastName     string    `gorm:"column:last_name;type:varchar(150);not null"`
	BarangayID   uint      `gorm:"column:barangay_id;not null;index"`
	UserID       uint      `gorm:"column:user_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins first, optional middle, and last name.
func (f Farmer) FullName() string {
	parts := []string{f.FirstName}
	if f.MiddleName != nil && strings.TrimSpace(*f.MiddleName) != "" {
		parts = append(parts, *f.MiddleName)
	}
	parts = append(parts, f.LastName)
	return strings.Join(parts, " ")
}
