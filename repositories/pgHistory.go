package repositories

import (
	"farm-hub/db"
	"farm-hub/entities"
)

type historyPgRepository struct {
	db db.Database
}

func NewHistoryPgRepository(database db.Database) HistoryRepository {
	return &historyPgRepository{db: database}
}

func (r *historyPgRepository) Append(espID string, reading entities.Reading) error {
	entry := entities.NewHistoryEntry(espID, reading)
	return r.db.GetDB().Create(&entry).Error
}

func (r *historyPgRepository) GetByEspID(espID string) ([]entities.HistoryEntry, error) {
	var entries []entities.HistoryEntry
	err := r.db.GetDB().Where("esp_id = ?", espID).Order("timestamp ASC").Find(&entries).Error
	return entries, err
}
