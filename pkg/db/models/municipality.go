package models

import "time"

// Municipality is the administrative region owning a set of barangays.
type Municipality struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(150);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
