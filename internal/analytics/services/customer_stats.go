package services

import (
	"time"

	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// customerStats is the per-customer rollup most engines start from.
// Customers appear in ascending customer-ID order because dataset rows are
// kept sorted by (customer_id, order_date); rank tie-breaks depend on this.
type customerStats struct {
	CustomerID    string
	FirstPurchase time.Time
	LastPurchase  time.Time
	Frequency     int
	Monetary      float64
	AvgOrderValue float64
	OrderDates    []time.Time
	OrderValues   []float64
	Products      []string
}

// aggregateCustomers rolls transactions up to one row per customer,
// preserving the dataset's customer ordering.
func aggregateCustomers(ds *dataset.Dataset) []customerStats {
	index := make(map[string]int)
	stats := make([]customerStats, 0)

	for _, rec := range ds.Rows {
		i, ok := index[rec.CustomerID]
		if !ok {
			i = len(stats)
			index[rec.CustomerID] = i
			stats = append(stats, customerStats{
				CustomerID:    rec.CustomerID,
				FirstPurchase: rec.OrderDate,
				LastPurchase:  rec.OrderDate,
			})
		}
		cs := &stats[i]
		if rec.OrderDate.Before(cs.FirstPurchase) {
			cs.FirstPurchase = rec.OrderDate
		}
		if rec.OrderDate.After(cs.LastPurchase) {
			cs.LastPurchase = rec.OrderDate
		}
		cs.Frequency++
		cs.Monetary += rec.TotalAmount
		cs.OrderDates = append(cs.OrderDates, rec.OrderDate)
		cs.OrderValues = append(cs.OrderValues, rec.TotalAmount)
		cs.Products = append(cs.Products, rec.ProductName)
	}

	for i := range stats {
		stats[i].Monetary = round2(stats[i].Monetary)
		stats[i].AvgOrderValue = round2(stats[i].Monetary / float64(stats[i].Frequency))
	}
	return stats
}
