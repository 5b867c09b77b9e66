package db

import "gorm.io/gorm"

type Database interface {
	GetDB() *gorm.DB
}

type GormDatabase struct {
	DB *gorm.DB
}

func (g *GormDatabase) GetDB() *gorm.DB { return g.DB }

// Wrap adapts an already-open gorm handle; used by tests running against
// sqlite.
func Wrap(db *gorm.DB) Database {
	return &GormDatabase{DB: db}
}
