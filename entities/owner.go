package entities

import (
	"time"

	"gorm.io/gorm"
)

// Owner is an account that owns field units through zones and subzones.
// Signup and token issuance happen outside this service; the hub only
// consumes the uid.
type Owner struct {
	UID          string         `gorm:"primaryKey;type:varchar(64)" json:"uid"`
	Username     string         `gorm:"unique;not null" json:"username"`
	Email        string         `gorm:"unique;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Zones        []Zone         `gorm:"foreignKey:OwnerUID" json:"zones"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Owner) BeforeCreate(tx *gorm.DB) (err error) {
	o.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	o.UpdatedAt = o.CreatedAt
	return
}
