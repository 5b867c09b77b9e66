package repositories

import "farm-hub/entities"

type OwnerRepository interface {
	Create(owner *entities.Owner) error
	GetByUID(uid string) (*entities.Owner, error)
	// ReadOwnerTree loads every owner with zones and subzones preloaded,
	// the startup snapshot for the ownership registry.
	ReadOwnerTree() ([]entities.Owner, error)
}

type ZoneRepository interface {
	CreateZone(zone *entities.Zone) error
	GetZone(id string) (*entities.Zone, error)
	GetZonesByOwner(uid string) ([]entities.Zone, error)
	DeleteZone(id string) error
	CreateSubzone(subzone *entities.Subzone) error
	GetSubzone(id string) (*entities.Subzone, error)
	DeleteSubzone(id string) error
}

type HistoryRepository interface {
	// Append stores one reading under the unit's history path.
	Append(espID string, reading entities.Reading) error
	// GetByEspID returns the unit's history ordered by timestamp.
	GetByEspID(espID string) ([]entities.HistoryEntry, error)
}

type CatalogRepository interface {
	GetByEspID(espID string) (*entities.CatalogUnit, error)
	MarkOwned(espID, uid string) error
	Release(espID string) error
}
