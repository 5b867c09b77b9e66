package usecases

import (
	"errors"
	"log"

	"farm-hub/entities"
	"farm-hub/repositories"
	"farm-hub/ws"
)

// ProvisionUseCase handles zone and subzone lifecycle. Creating a subzone is
// what binds a field unit to an owner: the unit must exist in the sales
// catalog, be sold and unowned, and pass the registry's own double-attach
// check before anything is persisted.
type ProvisionUseCase struct {
	Zones    repositories.ZoneRepository
	Catalog  repositories.CatalogRepository
	Registry *ws.Registry
}

func NewProvisionUseCase(zones repositories.ZoneRepository, catalog repositories.CatalogRepository, registry *ws.Registry) *ProvisionUseCase {
	return &ProvisionUseCase{Zones: zones, Catalog: catalog, Registry: registry}
}

func (uc *ProvisionUseCase) CreateZone(uid, name, color string) (*entities.Zone, error) {
	if uid == "" {
		return nil, errors.New("uid is required")
	}
	if name == "" {
		return nil, errors.New("zone name is required")
	}
	zone := &entities.Zone{OwnerUID: uid, Name: name, Color: color}
	if err := uc.Zones.CreateZone(zone); err != nil {
		return nil, err
	}
	return zone, nil
}

func (uc *ProvisionUseCase) GetZones(uid string) ([]entities.Zone, error) {
	if uid == "" {
		return nil, errors.New("uid is required")
	}
	return uc.Zones.GetZonesByOwner(uid)
}

// DeleteZone removes a zone with all its subzones, detaching every bound
// field unit and releasing it back to the catalog.
func (uc *ProvisionUseCase) DeleteZone(uid, zoneID string) error {
	zone, err := uc.Zones.GetZone(zoneID)
	if err != nil {
		return errors.New("zone not found")
	}
	if zone.OwnerUID != uid {
		return errors.New("zone does not belong to this owner")
	}
	if err := uc.Zones.DeleteZone(zoneID); err != nil {
		return err
	}
	for _, sz := range zone.Subzones {
		uc.Registry.DetachFieldUnit(uid, sz.EspID)
		if err := uc.Catalog.Release(sz.EspID); err != nil {
			log.Printf("provision: releasing %s back to catalog failed: %v", sz.EspID, err)
		}
	}
	return nil
}

// CreateSubzone binds one field unit to a zone. The catalog sold+unowned
// check rejects the request up front; the registry attach is still the
// final authority against double attachment.
func (uc *ProvisionUseCase) CreateSubzone(uid, zoneID, name, color, espID string) (*entities.Subzone, error) {
	if name == "" {
		return nil, errors.New("subzone name is required")
	}
	if espID == "" {
		return nil, errors.New("esp_id is required")
	}
	zone, err := uc.Zones.GetZone(zoneID)
	if err != nil {
		return nil, errors.New("zone not found")
	}
	if zone.OwnerUID != uid {
		return nil, errors.New("zone does not belong to this owner")
	}

	unit, err := uc.Catalog.GetByEspID(espID)
	if err != nil {
		return nil, errors.New("field unit not found in catalog")
	}
	if !unit.Claimable() {
		return nil, errors.New("field unit is not sold or already owned")
	}

	if err := uc.Registry.AttachFieldUnit(uid, espID); err != nil {
		return nil, err
	}

	subzone := &entities.Subzone{ZoneID: zoneID, Name: name, Color: color, EspID: espID}
	if err := uc.Zones.CreateSubzone(subzone); err != nil {
		uc.Registry.DetachFieldUnit(uid, espID)
		return nil, err
	}
	if err := uc.Catalog.MarkOwned(espID, uid); err != nil {
		log.Printf("provision: marking %s owned in catalog failed: %v", espID, err)
	}
	return subzone, nil
}

// DeleteSubzone unbinds the field unit and releases it in the catalog.
func (uc *ProvisionUseCase) DeleteSubzone(uid, subzoneID string) error {
	subzone, err := uc.Zones.GetSubzone(subzoneID)
	if err != nil {
		return errors.New("subzone not found")
	}
	zone, err := uc.Zones.GetZone(subzone.ZoneID)
	if err != nil {
		return errors.New("zone not found")
	}
	if zone.OwnerUID != uid {
		return errors.New("subzone does not belong to this owner")
	}
	if err := uc.Zones.DeleteSubzone(subzoneID); err != nil {
		return err
	}
	uc.Registry.DetachFieldUnit(uid, subzone.EspID)
	if err := uc.Catalog.Release(subzone.EspID); err != nil {
		log.Printf("provision: releasing %s back to catalog failed: %v", subzone.EspID, err)
	}
	return nil
}
