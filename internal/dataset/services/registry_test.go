package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architect/commerce-analytics/internal/common/database"
	"github.com/architect/commerce-analytics/internal/common/errors"
	"github.com/architect/commerce-analytics/internal/dataset/models"
	"github.com/architect/commerce-analytics/internal/dataset/repository"
)

func setupRegistryDB(t *testing.T) {
	t.Helper()
	if err := database.InitWithType("sqlite", ":memory:"); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	if err := repository.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { database.Close() })
}

func registryFixture(t *testing.T) *models.Dataset {
	t.Helper()
	rows := []models.TransactionRecord{
		{CustomerID: "C1", OrderDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), ProductName: "Laptop", Quantity: 1, UnitPrice: 1200, TotalAmount: 1200, Country: "Germany", Region: "Bavaria", City: "Munich"},
		{CustomerID: "C1", OrderDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), ProductName: "Mouse", Quantity: 2, UnitPrice: 25, TotalAmount: 50, Country: "Germany", Region: "Bavaria", City: "Munich"},
		{CustomerID: "C2", OrderDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ProductName: "Keyboard", Quantity: 1, UnitPrice: 80, TotalAmount: 80, Country: "France", Region: "Unknown", City: "Paris"},
	}
	ds, _, err := BuildDataset(rows, "fixture")
	require.NoError(t, err)
	return ds
}

func TestRegisterAndGetDataset(t *testing.T) {
	setupRegistryDB(t)

	ds := registryFixture(t)
	require.NoError(t, RegisterDataset(ds))

	got, err := GetDataset(ds.ID)
	require.NoError(t, err)
	assert.Same(t, ds, got)

	infos := ListDatasets()
	found := false
	for _, info := range infos {
		if info.ID == ds.ID {
			found = true
			assert.Equal(t, "fixture", info.Name)
			assert.Equal(t, 3, info.Records)
			assert.True(t, info.HasGeoData)
		}
	}
	assert.True(t, found, "registered dataset should be listed")
	assert.GreaterOrEqual(t, DatasetCount(), 1)
}

func TestGetDataset_RebuildsFromStorage(t *testing.T) {
	setupRegistryDB(t)

	ds := registryFixture(t)
	require.NoError(t, RegisterDataset(ds))

	// Simulate a process restart: memory gone, rows still in storage
	registry.Lock()
	delete(registry.datasets, ds.ID)
	registry.Unlock()

	got, err := GetDataset(ds.ID)
	require.NoError(t, err)
	require.NotSame(t, ds, got)

	assert.Equal(t, ds.ID, got.ID)
	assert.Len(t, got.Rows, 3)
	assert.True(t, ds.ReferenceDate.Equal(got.ReferenceDate))
	assert.True(t, got.HasGeoData)
	for _, row := range got.Rows {
		assert.Equal(t, ds.ID, row.DatasetID)
	}
}

func TestGetDataset_UnknownNotFound(t *testing.T) {
	setupRegistryDB(t)

	_, err := GetDataset("no-such-dataset")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

func TestRemoveDataset(t *testing.T) {
	setupRegistryDB(t)

	ds := registryFixture(t)
	require.NoError(t, RegisterDataset(ds))
	require.NoError(t, RemoveDataset(ds.ID))

	_, err := GetDataset(ds.ID)
	require.Error(t, err)
}
