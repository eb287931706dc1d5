package services

import (
	"sync"

	"github.com/architect/commerce-analytics/internal/common/errors"
	"github.com/architect/commerce-analytics/internal/dataset/models"
	"github.com/architect/commerce-analytics/internal/dataset/repository"
)

// registry holds loaded datasets for the lifetime of the process. Uploaded
// rows are also persisted, so a dataset evicted by a restart can be rebuilt
// from storage on first access.
var registry = struct {
	sync.RWMutex
	datasets map[string]*models.Dataset
}{datasets: make(map[string]*models.Dataset)}

// RegisterDataset stores a dataset in memory and persists its rows
func RegisterDataset(ds *models.Dataset) error {
	if err := repository.SaveTransactions(ds.Rows); err != nil {
		return err
	}

	registry.Lock()
	registry.datasets[ds.ID] = ds
	registry.Unlock()

	return nil
}

// GetDataset returns a loaded dataset, falling back to storage when the
// process has restarted since the upload
func GetDataset(id string) (*models.Dataset, error) {
	registry.RLock()
	ds, ok := registry.datasets[id]
	registry.RUnlock()
	if ok {
		return ds, nil
	}

	rows, err := repository.GetTransactions(id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NotFound("dataset")
	}

	ds, _, err = BuildDataset(rows, "")
	if err != nil {
		return nil, err
	}
	// Keep the original identity so clients' handles stay valid
	ds.ID = id
	for i := range ds.Rows {
		ds.Rows[i].DatasetID = id
	}

	registry.Lock()
	registry.datasets[id] = ds
	registry.Unlock()

	return ds, nil
}

// ListDatasets returns list-view projections of all loaded datasets
func ListDatasets() []models.DatasetInfo {
	registry.RLock()
	defer registry.RUnlock()

	infos := make([]models.DatasetInfo, 0, len(registry.datasets))
	for _, ds := range registry.datasets {
		infos = append(infos, models.DatasetInfo{
			ID:            ds.ID,
			Name:          ds.Name,
			Records:       len(ds.Rows),
			ReferenceDate: ds.ReferenceDate,
			HasGeoData:    ds.HasGeoData,
			LoadedAt:      ds.LoadedAt,
		})
	}
	return infos
}

// DatasetCount reports how many datasets are held in memory
func DatasetCount() int {
	registry.RLock()
	defer registry.RUnlock()
	return len(registry.datasets)
}

// RemoveDataset drops a dataset from memory and storage
func RemoveDataset(id string) error {
	registry.Lock()
	delete(registry.datasets, id)
	registry.Unlock()

	return repository.DeleteTransactions(id)
}
