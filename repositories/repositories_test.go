package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farm-hub/db"
	"farm-hub/entities"
)

func openTestDB(t *testing.T) db.Database {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&entities.Owner{},
		&entities.Zone{},
		&entities.Subzone{},
		&entities.CatalogUnit{},
		&entities.HistoryEntry{},
	))
	return db.Wrap(gdb)
}

func intPtr(v int) *int { return &v }

func TestHistoryAppendAndReadOrdered(t *testing.T) {
	repo := NewHistoryPgRepository(openTestDB(t))

	// insert out of timestamp order
	for _, ts := range []int64{3000, 1000, 2000} {
		err := repo.Append("E1", entities.Reading{
			Temperature:  intPtr(int(ts / 100)),
			Humidity:     intPtr(60),
			SoilMoisture: entities.SoilWet,
			Timestamp:    ts,
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Append("E2", entities.Reading{Timestamp: 500}))

	entries, err := repo.GetByEspID("E1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(1000), entries[0].Timestamp)
	assert.Equal(t, int64(2000), entries[1].Timestamp)
	assert.Equal(t, int64(3000), entries[2].Timestamp)
	assert.Equal(t, 10, *entries[0].Temperature)
	assert.Equal(t, entities.SoilWet, entries[0].SoilMoisture)
	assert.NotEmpty(t, entries[0].ID)
}

func TestHistoryNilSignalsSurvive(t *testing.T) {
	repo := NewHistoryPgRepository(openTestDB(t))

	require.NoError(t, repo.Append("E1", entities.Reading{
		Humidity:  intPtr(55),
		Timestamp: 1000,
	}))

	entries, err := repo.GetByEspID("E1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Temperature)
	assert.Nil(t, entries[0].GasValue)
	assert.Equal(t, 55, *entries[0].Humidity)
}

func TestCatalogMarkOwnedAndRelease(t *testing.T) {
	database := openTestDB(t)
	repo := NewCatalogPgRepository(database)

	require.NoError(t, database.GetDB().Create(&entities.CatalogUnit{EspID: "E1", Sold: true}).Error)

	unit, err := repo.GetByEspID("E1")
	require.NoError(t, err)
	assert.True(t, unit.Claimable())

	require.NoError(t, repo.MarkOwned("E1", "U1"))
	unit, err = repo.GetByEspID("E1")
	require.NoError(t, err)
	assert.Equal(t, "U1", unit.OwnerUID)
	assert.False(t, unit.Claimable())

	require.NoError(t, repo.Release("E1"))
	unit, err = repo.GetByEspID("E1")
	require.NoError(t, err)
	assert.True(t, unit.Claimable())

	_, err = repo.GetByEspID("NOPE")
	assert.Error(t, err)
}

func TestOwnerTreePreloadsZonesAndSubzones(t *testing.T) {
	database := openTestDB(t)
	owners := NewOwnerPgRepository(database)
	zones := NewZonePgRepository(database)

	require.NoError(t, owners.Create(&entities.Owner{
		UID: "U1", Username: "ana", Email: "ana@example.com", PasswordHash: "x",
	}))
	zone := &entities.Zone{OwnerUID: "U1", Name: "North field"}
	require.NoError(t, zones.CreateZone(zone))
	require.NoError(t, zones.CreateSubzone(&entities.Subzone{ZoneID: zone.ID, Name: "Row 1", EspID: "E1"}))
	require.NoError(t, zones.CreateSubzone(&entities.Subzone{ZoneID: zone.ID, Name: "Row 2", EspID: "E2"}))

	tree, err := owners.ReadOwnerTree()
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Zones, 1)
	assert.Len(t, tree[0].Zones[0].Subzones, 2)

	got, err := owners.GetByUID("U1")
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
}

func TestSubzoneEspIDUnique(t *testing.T) {
	database := openTestDB(t)
	zones := NewZonePgRepository(database)

	zone := &entities.Zone{OwnerUID: "U1", Name: "North field"}
	require.NoError(t, zones.CreateZone(zone))
	require.NoError(t, zones.CreateSubzone(&entities.Subzone{ZoneID: zone.ID, Name: "Row 1", EspID: "E1"}))
	assert.Error(t, zones.CreateSubzone(&entities.Subzone{ZoneID: zone.ID, Name: "Row 2", EspID: "E1"}))
}

func TestDeleteZoneRemovesSubzones(t *testing.T) {
	database := openTestDB(t)
	zones := NewZonePgRepository(database)

	zone := &entities.Zone{OwnerUID: "U1", Name: "North field"}
	require.NoError(t, zones.CreateZone(zone))
	subzone := &entities.Subzone{ZoneID: zone.ID, Name: "Row 1", EspID: "E1"}
	require.NoError(t, zones.CreateSubzone(subzone))

	require.NoError(t, zones.DeleteZone(zone.ID))

	_, err := zones.GetZone(zone.ID)
	assert.Error(t, err)
	_, err = zones.GetSubzone(subzone.ID)
	assert.Error(t, err)

	owned, err := zones.GetZonesByOwner("U1")
	require.NoError(t, err)
	assert.Empty(t, owned)
}
