package services

import (
	"sync"

	"github.com/architect/commerce-analytics/internal/analytics/models"
)

// resultCache memoizes RFM output per dataset. Datasets are immutable once
// registered and date filtering mints a new dataset ID, so entries never go
// stale; they are evicted only when a dataset is dropped.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string][]models.CustomerRFM
}

var rfmCache = &resultCache{entries: make(map[string][]models.CustomerRFM)}

func (c *resultCache) get(datasetID string) ([]models.CustomerRFM, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows, ok := c.entries[datasetID]
	return rows, ok
}

func (c *resultCache) put(datasetID string, rows []models.CustomerRFM) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[datasetID] = rows
}

func (c *resultCache) drop(datasetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, datasetID)
}

// InvalidateDataset clears cached results for a removed dataset
func InvalidateDataset(datasetID string) {
	rfmCache.drop(datasetID)
}
