package repositories

import (
	"time"

	"farm-hub/db"
	"farm-hub/entities"
)

type catalogPgRepository struct {
	db db.Database
}

func NewCatalogPgRepository(database db.Database) CatalogRepository {
	return &catalogPgRepository{db: database}
}

func (r *catalogPgRepository) GetByEspID(espID string) (*entities.CatalogUnit, error) {
	var unit entities.CatalogUnit
	err := r.db.GetDB().Where("esp_id = ?", espID).First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *catalogPgRepository) MarkOwned(espID, uid string) error {
	return r.db.GetDB().Model(&entities.CatalogUnit{}).
		Where("esp_id = ?", espID).
		Updates(map[string]interface{}{
			"owner_uid":  uid,
			"updated_at": time.Now().UTC().Format(time.RFC3339),
		}).Error
}

func (r *catalogPgRepository) Release(espID string) error {
	return r.db.GetDB().Model(&entities.CatalogUnit{}).
		Where("esp_id = ?", espID).
		Updates(map[string]interface{}{
			"owner_uid":  "",
			"updated_at": time.Now().UTC().Format(time.RFC3339),
		}).Error
}
