package models

import "time"

// Barangay belongs to exactly one municipality. Names are unique per municipality.
type Barangay struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	Name           string    `gorm:"column:name;type:varchar(150);not null;uniqueIndex:ux_barangays_name_municipality"`
	MunicipalityID uint      `gorm:"column:municipality_id;not null;index;uniqueIndex:ux_barangays_name_municipality"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
