package models

import (
	"time"
)

// TransactionRecord is one order line of an uploaded transaction log.
// Persisted rows carry the owning dataset's ID so an upload can be reloaded
// after a restart.
type TransactionRecord struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	DatasetID   string    `gorm:"index;not null" json:"-"`
	CustomerID  string    `gorm:"index;not null" json:"customer_id" validate:"required"`
	OrderDate   time.Time `gorm:"not null" json:"order_date" validate:"required"`
	ProductName string    `gorm:"not null" json:"product_name" validate:"required"`
	Quantity    int       `gorm:"not null" json:"quantity" validate:"gt=0"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price" validate:"gt=0"`
	TotalAmount float64   `gorm:"not null" json:"total_amount" validate:"gt=0"`

	// Optional geographic columns; "Unknown" when absent from the upload.
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// Dataset is the validated, in-memory transaction table every engine reads.
// Rows are ordered by (customer_id, order_date) at load time and never
// mutated afterwards; each date-filtered slice is a new Dataset with its own
// ID, so caches keyed by ID stay correct.
type Dataset struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Rows          []TransactionRecord `json:"-"`
	ReferenceDate time.Time           `json:"reference_date"` // max order_date
	HasGeoData    bool                `json:"has_geo_data"`
	LoadedAt      time.Time           `json:"loaded_at"`
}

// Len returns the number of order lines.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// DataSummary describes a loaded dataset for the dashboard overview.
type DataSummary struct {
	TotalRecords      int           `json:"total_records"`
	UniqueCustomers   int           `json:"unique_customers"`
	UniqueProducts    int           `json:"unique_products"`
	DateRange         DateRange     `json:"date_range"`
	RevenueStats      RevenueStats  `json:"revenue_stats"`
	QuantityStats     QuantityStats `json:"quantity_stats"`
	OrdersPerCustomer float64       `json:"orders_per_customer"`
	Warnings          []string      `json:"warnings,omitempty"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

type RevenueStats struct {
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"`
}

type QuantityStats struct {
	Total int     `json:"total"`
	Mean  float64 `json:"mean"`
	Max   int     `json:"max"`
}

// DatasetInfo is the list-view projection of a loaded dataset.
type DatasetInfo struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Records       int       `json:"records"`
	ReferenceDate time.Time `json:"reference_date"`
	HasGeoData    bool      `json:"has_geo_data"`
	LoadedAt      time.Time `json:"loaded_at"`
}
