package services

import (
	"sort"
	"time"

	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// order is a compact transaction description for building test datasets
type order struct {
	customer string
	date     string // YYYY-MM-DD
	product  string
	amount   float64
	quantity int
	country  string
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

// newTestDataset builds a Dataset the way the loader would: rows sorted by
// (customer, date), reference date pinned to the newest order.
func newTestDataset(id string, orders []order) *dataset.Dataset {
	rows := make([]dataset.TransactionRecord, len(orders))
	hasGeo := false
	for i, o := range orders {
		qty := o.quantity
		if qty == 0 {
			qty = 1
		}
		rows[i] = dataset.TransactionRecord{
			CustomerID:  o.customer,
			OrderDate:   day(o.date),
			ProductName: o.product,
			Quantity:    qty,
			UnitPrice:   o.amount / float64(qty),
			TotalAmount: o.amount,
			Country:     o.country,
		}
		if o.country != "" && o.country != "Unknown" {
			hasGeo = true
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CustomerID != rows[j].CustomerID {
			return rows[i].CustomerID < rows[j].CustomerID
		}
		return rows[i].OrderDate.Before(rows[j].OrderDate)
	})

	ds := &dataset.Dataset{
		ID:         id,
		Name:       "test",
		Rows:       rows,
		HasGeoData: hasGeo,
		LoadedAt:   time.Now(),
	}
	for _, row := range rows {
		if row.OrderDate.After(ds.ReferenceDate) {
			ds.ReferenceDate = row.OrderDate
		}
	}
	return ds
}
