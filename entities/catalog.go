package entities

import (
	"time"

	"gorm.io/gorm"
)

// CatalogUnit is the sales catalog entry for a field unit. A unit may be
// claimed by a subzone only when it has been sold and nobody owns it yet.
type CatalogUnit struct {
	EspID     string `gorm:"primaryKey;type:varchar(64)" json:"esp_id"`
	Sold      bool   `json:"sold"`
	OwnerUID  string `gorm:"index;type:varchar(64)" json:"owner_uid"` // empty when unowned
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (c *CatalogUnit) BeforeCreate(tx *gorm.DB) (err error) {
	c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	c.UpdatedAt = c.CreatedAt
	return
}

// Claimable reports whether the unit can be attached to a subzone.
func (c *CatalogUnit) Claimable() bool {
	return c.Sold && c.OwnerUID == ""
}
