package records

import (
	"time"

	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/google/uuid"
)

// RecordDTO is the transport shape of a drying record.
type RecordDTO struct {
	ID              uint       `json:"id"`
	UUID            *uuid.UUID `json:"uuid,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
	BatchName       string     `json:"batch_name"`
	InitialWeight   float64    `json:"initial_weight"`
	Temperature     float64    `json:"temperature"`
	Humidity        float64    `json:"humidity"`
	SensorValue     float64    `json:"sensor_value"`
	InitialMoisture float64    `json:"initial_moisture"`
	FinalMoisture   float64    `json:"final_moisture"`
	DryingTime      string     `json:"drying_time"`
	FinalWeight     float64    `json:"final_weight"`
	ShelfLife       *string    `json:"shelf_life,omitempty"`
	DatePlanted     *string    `json:"date_planted"`
	DateHarvested   *string    `json:"date_harvested"`
	DueDate         *string    `json:"due_date"`
	DateDried       *string    `json:"date_dried"`
	UserID          uint       `json:"user_id"`
	FarmerID        *uint      `json:"farmer_id,omitempty"`
	FarmerName      *string    `json:"farmer_name,omitempty"`
	BarangayID      *uint      `json:"barangay_id,omitempty"`
	BarangayName    *string    `json:"barangay_name,omitempty"`
	MunicipalityID  *uint      `json:"municipality_id,omitempty"`
}

func FromModel(r *models.DryingRecord) RecordDTO {
	return RecordDTO{
		ID:              r.ID,
		UUID:            r.UUID,
		Timestamp:       r.Timestamp,
		BatchName:       r.BatchName,
		InitialWeight:   r.InitialWeight,
		Temperature:     r.Temperature,
		Humidity:        r.Humidity,
		SensorValue:     r.SensorValue,
		InitialMoisture: r.InitialMoisture,
		FinalMoisture:   r.FinalMoisture,
		DryingTime:      r.DryingTime,
		FinalWeight:     r.FinalWeight,
		ShelfLife:       r.ShelfLife,
		DatePlanted:     FormatDate(r.DatePlanted),
		DateHarvested:   FormatDate(r.DateHarvested),
		DueDate:         FormatDate(r.DueDate),
		DateDried:       FormatDate(r.DateDried),
		UserID:          r.UserID,
		FarmerID:        r.FarmerID,
		FarmerName:      r.FarmerName,
		BarangayID:      r.BarangayID,
		BarangayName:    r.BarangayName,
		MunicipalityID:  r.MunicipalityID,
	}
}

func FromModels(rows []models.DryingRecord) []RecordDTO {
	out := make([]RecordDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// RecordForm is the interactive add/edit payload, posted as a form or JSON.
type RecordForm struct {
	FarmerID        string   `json:"farmer_id" form:"farmer_id"`
	BatchName       string   `json:"batch_name" form:"batch_name" validate:"required,max=150"`
	InitialWeight   *float64 `json:"initial_weight" form:"initial_weight" validate:"required"`
	FinalWeight     *float64 `json:"final_weight" form:"final_weight" validate:"required"`
	Temperature     float64  `json:"temperature" form:"temperature"`
	Humidity        float64  `json:"humidity" form:"humidity"`
	SensorValue     float64  `json:"sensor_value" form:"sensor_value"`
	InitialMoisture float64  `json:"initial_moisture" form:"initial_moisture"`
	FinalMoisture   float64  `json:"final_moisture" form:"final_moisture"`
	DryingTime      string   `json:"drying_time" form:"drying_time" validate:"max=50"`
	ShelfLife       string   `json:"shelf_life" form:"shelf_life" validate:"max=50"`
	DueDate         string   `json:"due_date" form:"due_date"`
	DatePlanted     string   `json:"date_planted" form:"date_planted"`
	DateHarvested   string   `json:"date_harvested" form:"date_harvested"`
	DateDried       string   `json:"date_dried" form:"date_dried"`
}

// Page is one slice of a record listing.
type Page struct {
	Records    []RecordDTO `json:"records"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
