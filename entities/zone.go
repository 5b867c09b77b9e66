package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Zone struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerUID  string         `gorm:"index;type:varchar(64)" json:"owner_uid"`
	Name      string         `json:"name"`
	Color     string         `json:"color"`
	Subzones  []Subzone      `gorm:"foreignKey:ZoneID" json:"subzones"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (z *Zone) BeforeCreate(tx *gorm.DB) (err error) {
	if z.ID == "" {
		z.ID = uuid.New().String()
	}
	z.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	z.UpdatedAt = z.CreatedAt
	return
}

// Subzone ties exactly one field unit to a zone. An esp id is attached to at
// most one subzone across the whole system.
type Subzone struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ZoneID    string         `gorm:"index;type:varchar(36)" json:"zone_id"`
	Name      string         `json:"name"`
	Color     string         `json:"color"`
	EspID     string         `gorm:"uniqueIndex;type:varchar(64)" json:"esp_id"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Subzone) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.UpdatedAt = s.CreatedAt
	return
}
