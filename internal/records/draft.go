package records

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Measurement is a numeric draft field that offline clients may send either
// as a JSON number or as a numeric string.
type Measurement struct {
	Value   float64
	Present bool
	Valid   bool
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*m = Measurement{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			m.Present = true
			return nil
		}
		raw = strings.TrimSpace(raw)
		// Offline clients encode an unfilled input as "".
		if raw == "" {
			return nil
		}
	} else {
		raw = string(data)
	}
	m.Present = true
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	m.Value = v
	m.Valid = true
	return nil
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// SyncPayload is the body of a bulk sync call.
type SyncPayload struct {
	Records []SyncDraft `json:"records"`
}

// SyncDraft is one offline-collected record keyed by a client-generated uuid.
type SyncDraft struct {
	UUID            string      `json:"uuid"`
	FarmerUUID      string      `json:"farmer_uuid"`
	BatchName       string      `json:"batch_name"`
	InitialWeight   Measurement `json:"initial_weight"`
	Temperature     Measurement `json:"temperature"`
	Humidity        Measurement `json:"humidity"`
	SensorValue     Measurement `json:"sensor_value"`
	InitialMoisture Measurement `json:"initial_moisture"`
	FinalMoisture   Measurement `json:"final_moisture"`
	FinalWeight     Measurement `json:"final_weight"`
	DryingTime      string      `json:"drying_time"`
	ShelfLife       string      `json:"shelf_life"`
	DatePlanted     string      `json:"date_planted"`
	DateHarvested   string      `json:"date_harvested"`
	DueDate         string      `json:"due_date"`
	DateDried       string      `json:"date_dried"`
}

// measurementsValid reports whether every numeric field is usable. A missing
// or blank field reads as zero; a present but non-numeric field rejects the draft.
func (d SyncDraft) measurementsValid() bool {
	for _, m := range []Measurement{
		d.InitialWeight, d.Temperature, d.Humidity, d.SensorValue,
		d.InitialMoisture, d.FinalMoisture, d.FinalWeight,
	} {
		if m.Present && !m.Valid {
			return false
		}
	}
	return true
}

// SkipReason explains why a sync draft was not stored.
type SkipReason string

const (
	SkipMissingUUID        SkipReason = "missing_uuid"
	SkipInvalidUUID        SkipReason = "invalid_uuid"
	SkipDuplicateUUID      SkipReason = "duplicate_uuid"
	SkipMissingFarmerUUID  SkipReason = "missing_farmer_uuid"
	SkipUnknownFarmer      SkipReason = "unknown_farmer"
	SkipInvalidMeasurement SkipReason = "invalid_measurement"
)

type SkippedDraft struct {
	Index  int        `json:"index"`
	UUID   string     `json:"uuid,omitempty"`
	Reason SkipReason `json:"reason"`
}

// SyncResult reports the outcome of one bulk sync call.
type SyncResult struct {
	Accepted []uint         `json:"accepted"`
	Skipped  []SkippedDraft `json:"skipped"`
}
