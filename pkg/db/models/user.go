package models

import (
	"time"

	"github.com/drytrack/drytrack-backend/pkg/enums"
)

// User is a staff principal. Barangay staff carry BarangayID, municipal
// officers carry MunicipalityID.
type User struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	Email          string     `gorm:"column:email;type:varchar(150);not null;uniqueIndex"`
	FullName       string     `gorm:"column:full_name;type:varchar(150);not null"`
	Role           enums.Role `gorm:"column:role;type:varchar(50);not null"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	BarangayID     *uint      `gorm:"column:barangay_id;index"`
	MunicipalityID *uint      `gorm:"column:municipality_id;index"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
