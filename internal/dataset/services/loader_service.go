package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/architect/commerce-analytics/internal/common/errors"
	"github.com/architect/commerce-analytics/internal/common/validation"
	"github.com/architect/commerce-analytics/internal/dataset/models"
	"github.com/architect/commerce-analytics/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var requiredColumns = []string{
	"customer_id", "order_date", "product_name",
	"quantity", "unit_price", "total_amount",
}

var optionalColumns = []string{"country", "region", "city"}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// LoadCSV parses, validates and cleans an uploaded transaction log and builds
// an immutable Dataset from the surviving rows. Rows with missing or
// non-positive values are dropped; totals drifting more than a cent from
// quantity*unit_price are recomputed.
func LoadCSV(r io.Reader, name string) (*models.Dataset, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.BadRequest("failed to read CSV header")
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errors.Validation(
			"missing required columns",
			strings.Join(missing, ", "),
		)
	}

	var warnings []string
	var rows []models.TransactionRecord
	dropped := 0
	inconsistent := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		row, ok := parseRow(record, colIndex)
		if !ok {
			dropped++
			continue
		}

		// Reconcile total_amount with quantity * unit_price
		calculated := float64(row.Quantity) * row.UnitPrice
		if math.Abs(row.TotalAmount-calculated) > 0.01 {
			row.TotalAmount = math.Round(calculated*100) / 100
			inconsistent++
		}

		rows = append(rows, row)
	}

	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("dropped %d rows with missing or invalid data", dropped))
	}
	if inconsistent > 0 {
		warnings = append(warnings, fmt.Sprintf("recalculated totals for %d rows with inconsistent amounts", inconsistent))
	}

	ds, qualityWarnings, err := BuildDataset(rows, name)
	if err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, qualityWarnings...)

	logger.Info("dataset loaded",
		zap.String("dataset_id", ds.ID),
		zap.Int("records", len(ds.Rows)),
		zap.Int("dropped", dropped))

	return ds, warnings, nil
}

func parseRow(record []string, colIndex map[string]int) (models.TransactionRecord, bool) {
	get := func(col string) string {
		idx, ok := colIndex[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := models.TransactionRecord{
		CustomerID:  get("customer_id"),
		ProductName: get("product_name"),
	}

	orderDate, ok := parseDate(get("order_date"))
	if !ok {
		return row, false
	}
	row.OrderDate = orderDate

	quantity, err := strconv.Atoi(get("quantity"))
	if err != nil {
		return row, false
	}
	row.Quantity = quantity

	unitPrice, err := strconv.ParseFloat(get("unit_price"), 64)
	if err != nil {
		return row, false
	}
	row.UnitPrice = unitPrice

	totalAmount, err := strconv.ParseFloat(get("total_amount"), 64)
	if err != nil {
		return row, false
	}
	row.TotalAmount = totalAmount

	row.Country = cleanGeoValue(get("country"))
	row.Region = cleanGeoValue(get("region"))
	row.City = cleanGeoValue(get("city"))

	// Struct tags carry the required/positive constraints
	if len(validation.Validate(row)) > 0 {
		return row, false
	}

	return row, true
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cleanGeoValue(value string) string {
	switch strings.ToLower(value) {
	case "", "nan", "none", "null":
		return "Unknown"
	}
	return value
}

// BuildDataset assembles an immutable Dataset from cleaned rows: assigns an
// ID, sorts by (customer_id, order_date) so "first-seen" tie-breaks are
// stable, and derives the recency reference date.
func BuildDataset(rows []models.TransactionRecord, name string) (*models.Dataset, []string, error) {
	if len(rows) == 0 {
		return nil, nil, errors.Unprocessable("no valid data rows found after cleaning", "")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CustomerID != rows[j].CustomerID {
			return rows[i].CustomerID < rows[j].CustomerID
		}
		return rows[i].OrderDate.Before(rows[j].OrderDate)
	})

	ds := &models.Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		Rows:     rows,
		LoadedAt: time.Now(),
	}

	hasGeo := false
	for i := range rows {
		rows[i].DatasetID = ds.ID
		if rows[i].OrderDate.After(ds.ReferenceDate) {
			ds.ReferenceDate = rows[i].OrderDate
		}
		if rows[i].Country != "" && rows[i].Country != "Unknown" {
			hasGeo = true
		}
	}
	ds.HasGeoData = hasGeo

	return ds, qualityWarnings(ds), nil
}

func qualityWarnings(ds *models.Dataset) []string {
	var warnings []string

	if len(ds.Rows) > 100000 {
		warnings = append(warnings, "dataset is large (>100K records), analysis may be slow")
	}

	minDate, maxDate := dateBounds(ds.Rows)
	if int(maxDate.Sub(minDate).Hours()/24) < 30 {
		warnings = append(warnings, "date range is less than 30 days, some analytics may be limited")
	}

	if countCustomers(ds.Rows) < 10 {
		warnings = append(warnings, "few unique customers found, segmentation analysis may be limited")
	}

	return warnings
}

// FilterByDate returns a new Dataset restricted to [start, end] (inclusive),
// preserving row order. A zero start or end leaves that side unbounded. The
// slice gets a derived ID so downstream caches never mix filtered and full
// results, while identical windows over the same parent share cache entries.
func FilterByDate(ds *models.Dataset, start, end time.Time) *models.Dataset {
	filtered := make([]models.TransactionRecord, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		if !start.IsZero() && row.OrderDate.Before(start) {
			continue
		}
		if !end.IsZero() && row.OrderDate.After(end) {
			continue
		}
		filtered = append(filtered, row)
	}

	out := &models.Dataset{
		ID:       fmt.Sprintf("%s@%s..%s", ds.ID, start.Format("2006-01-02"), end.Format("2006-01-02")),
		Name:     ds.Name,
		Rows:     filtered,
		LoadedAt: ds.LoadedAt,
	}

	hasGeo := false
	for _, row := range filtered {
		if row.OrderDate.After(out.ReferenceDate) {
			out.ReferenceDate = row.OrderDate
		}
		if row.Country != "" && row.Country != "Unknown" {
			hasGeo = true
		}
	}
	out.HasGeoData = hasGeo

	return out
}

// Summarize produces the dashboard overview statistics for a dataset
func Summarize(ds *models.Dataset) models.DataSummary {
	summary := models.DataSummary{
		TotalRecords: len(ds.Rows),
	}
	if len(ds.Rows) == 0 {
		return summary
	}

	customers := make(map[string]int)
	products := make(map[string]struct{})
	amounts := make([]float64, 0, len(ds.Rows))
	totalRevenue := 0.0
	totalQuantity := 0
	maxQuantity := 0

	for _, row := range ds.Rows {
		customers[row.CustomerID]++
		products[row.ProductName] = struct{}{}
		amounts = append(amounts, row.TotalAmount)
		totalRevenue += row.TotalAmount
		totalQuantity += row.Quantity
		if row.Quantity > maxQuantity {
			maxQuantity = row.Quantity
		}
	}

	minDate, maxDate := dateBounds(ds.Rows)

	summary.UniqueCustomers = len(customers)
	summary.UniqueProducts = len(products)
	summary.DateRange = models.DateRange{
		Start: minDate,
		End:   maxDate,
		Days:  int(maxDate.Sub(minDate).Hours() / 24),
	}
	summary.RevenueStats = models.RevenueStats{
		Total:  totalRevenue,
		Mean:   totalRevenue / float64(len(ds.Rows)),
		Median: median(amounts),
		StdDev: sampleStdDev(amounts),
	}
	summary.QuantityStats = models.QuantityStats{
		Total: totalQuantity,
		Mean:  float64(totalQuantity) / float64(len(ds.Rows)),
		Max:   maxQuantity,
	}
	summary.OrdersPerCustomer = float64(len(ds.Rows)) / float64(len(customers))
	summary.Warnings = qualityWarnings(ds)

	return summary
}

func dateBounds(rows []models.TransactionRecord) (time.Time, time.Time) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}
	}
	minDate, maxDate := rows[0].OrderDate, rows[0].OrderDate
	for _, row := range rows[1:] {
		if row.OrderDate.Before(minDate) {
			minDate = row.OrderDate
		}
		if row.OrderDate.After(maxDate) {
			maxDate = row.OrderDate
		}
	}
	return minDate, maxDate
}

func countCustomers(rows []models.TransactionRecord) int {
	customers := make(map[string]struct{})
	for _, row := range rows {
		customers[row.CustomerID] = struct{}{}
	}
	return len(customers)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// sampleStdDev uses the n-1 denominator; a single value has no spread.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
