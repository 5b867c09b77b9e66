package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryEntry is one flushed Reading of one field unit.
type HistoryEntry struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EspID        string `gorm:"index;type:varchar(64)" json:"esp_id"`
	Temperature  *int   `json:"temperature"`
	Humidity     *int   `json:"humidity"`
	SoilMoisture int    `json:"soil_moisture"`
	GasValue     *int   `json:"gas_value"`
	Timestamp    int64  `gorm:"index" json:"timestamp"` // unix milliseconds
	CreatedAt    string `json:"created_at"`
}

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	h.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return
}

// Reading converts the stored row back to its in-memory form.
func (h *HistoryEntry) Reading() Reading {
	return Reading{
		Temperature:  h.Temperature,
		Humidity:     h.Humidity,
		SoilMoisture: h.SoilMoisture,
		GasValue:     h.GasValue,
		Timestamp:    h.Timestamp,
	}
}

// NewHistoryEntry builds the storable row for one Reading.
func NewHistoryEntry(espID string, r Reading) HistoryEntry {
	return HistoryEntry{
		EspID:        espID,
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		SoilMoisture: r.SoilMoisture,
		GasValue:     r.GasValue,
		Timestamp:    r.Timestamp,
	}
}
