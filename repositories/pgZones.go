package repositories

import (
	"time"

	"farm-hub/db"
	"farm-hub/entities"
)

type zonePgRepository struct {
	db db.Database
}

func NewZonePgRepository(database db.Database) ZoneRepository {
	return &zonePgRepository{db: database}
}

func (r *zonePgRepository) CreateZone(zone *entities.Zone) error {
	return r.db.GetDB().Create(zone).Error
}

func (r *zonePgRepository) GetZone(id string) (*entities.Zone, error) {
	var zone entities.Zone
	err := r.db.GetDB().Preload("Subzones").Where("id = ?", id).First(&zone).Error
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *zonePgRepository) GetZonesByOwner(uid string) ([]entities.Zone, error) {
	var zones []entities.Zone
	err := r.db.GetDB().Preload("Subzones").
		Where("owner_uid = ?", uid).Order("created_at ASC").Find(&zones).Error
	return zones, err
}

func (r *zonePgRepository) DeleteZone(id string) error {
	if err := r.db.GetDB().Where("zone_id = ?", id).Delete(&entities.Subzone{}).Error; err != nil {
		return err
	}
	return r.db.GetDB().Where("id = ?", id).Delete(&entities.Zone{}).Error
}

func (r *zonePgRepository) CreateSubzone(subzone *entities.Subzone) error {
	subzone.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return r.db.GetDB().Create(subzone).Error
}

func (r *zonePgRepository) GetSubzone(id string) (*entities.Subzone, error) {
	var subzone entities.Subzone
	err := r.db.GetDB().Where("id = ?", id).First(&subzone).Error
	if err != nil {
		return nil, err
	}
	return &subzone, nil
}

func (r *zonePgRepository) DeleteSubzone(id string) error {
	return r.db.GetDB().Where("id = ?", id).Delete(&entities.Subzone{}).Error
}
