package repositories

import (
	"farm-hub/db"
	"farm-hub/entities"
)

type ownerPgRepository struct {
	db db.Database
}

func NewOwnerPgRepository(database db.Database) OwnerRepository {
	return &ownerPgRepository{db: database}
}

func (r *ownerPgRepository) Create(owner *entities.Owner) error {
	return r.db.GetDB().Create(owner).Error
}

func (r *ownerPgRepository) GetByUID(uid string) (*entities.Owner, error) {
	var owner entities.Owner
	err := r.db.GetDB().Where("uid = ?", uid).First(&owner).Error
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *ownerPgRepository) ReadOwnerTree() ([]entities.Owner, error) {
	var owners []entities.Owner
	err := r.db.GetDB().Preload("Zones.Subzones").Preload("Zones").Find(&owners).Error
	return owners, err
}
