package models

import (
	"time"

	"github.com/google/uuid"
)

// DryingRecord is one drying batch. FarmerName, BarangayID, BarangayName and
// MunicipalityID are snapshots taken from the farmer at insert time and are
// never recomputed.
type DryingRecord struct {
	ID              uint       `gorm:"primaryKey;autoIncrement"`
	UUID            *uuid.UUID `gorm:"column:uuid;type:uuid;uniqueIndex"`
	Timestamp       time.Time  `gorm:"column:timestamp;not null;index"`
	BatchName       string     `gorm:"column:batch_name;type:varchar(150);not null"`
	InitialWeight   float64    `gorm:"column:initial_weight;not null"`
	Temperature     float64    `gorm:"column:temperature;not null"`
	Humidity        float64    `gorm:"column:humidity;not null"`
	SensorValue     float64    `gorm:"column:sensor_value;not null"`
	InitialMoisture float64    `gorm:"column:initial_moisture;not null"`
	FinalMoisture   float64    `gorm:"column:final_moisture;not null"`
	DryingTime      string     `gorm:"column:drying_time;type:varchar(50);not null"`
	FinalWeight     float64    `gorm:"column:final_weight;not null"`
	ShelfLife       *string    `gorm:"column:shelf_life;type:varchar(50)"`
	DatePlanted     *time.Time `gorm:"column:date_planted;type:date"`
	DateHarvested   *time.Time `gorm:"column:date_harvested;type:date"`
	DueDate         *time.Time `gorm:"column:due_date;type:date"`
	DateDried       *time.Time `gorm:"column:date_dried;type:date"`
	UserID          uint       `gorm:"column:user_id;not null;index"`
	FarmerID        *uint      `gorm:"column:farmer_id;index"`
	FarmerName      *string    `gorm:"column:farmer_name;type:varchar(150)"`
	BarangayID      *uint      `gorm:"column:barangay_id;index"`
	BarangayName    *string    `gorm:"column:barangay_name;type:varchar(150)"`
	MunicipalityID  *uint      `gorm:"column:municipality_id;index"`
}
