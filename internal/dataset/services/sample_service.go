package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/architect/commerce-analytics/internal/dataset/models"
)

var sampleProducts = []string{
	"Laptop", "Smartphone", "Tablet", "Headphones", "Keyboard",
	"Mouse", "Monitor", "Webcam", "Speaker", "Charger",
	"Phone Case", "Screen Protector", "USB Cable", "Power Bank",
	"Wireless Earbuds", "Smart Watch", "Fitness Tracker", "Router",
}

var sampleCountries = []string{
	"United States", "Canada", "United Kingdom", "Germany", "France",
	"Australia", "Japan", "Brazil", "India", "Mexico",
}

var sampleRegions = map[string][]string{
	"United States":  {"California", "Texas", "New York", "Florida", "Illinois"},
	"Canada":         {"Ontario", "Quebec", "British Columbia", "Alberta", "Manitoba"},
	"United Kingdom": {"England", "Scotland", "Wales", "Northern Ireland"},
	"Germany":        {"Bavaria", "North Rhine-Westphalia", "Baden-Württemberg", "Lower Saxony"},
	"France":         {"Île-de-France", "Auvergne-Rhône-Alpes", "Occitanie", "Nouvelle-Aquitaine"},
	"Australia":      {"New South Wales", "Victoria", "Queensland", "Western Australia"},
	"Japan":          {"Tokyo", "Osaka", "Kanagawa", "Aichi", "Saitama"},
	"Brazil":         {"São Paulo", "Rio de Janeiro", "Minas Gerais", "Bahia"},
	"India":          {"Maharashtra", "Karnataka", "Tamil Nadu", "Delhi", "Gujarat"},
	"Mexico":         {"Mexico City", "Jalisco", "Nuevo León", "Puebla", "Guanajuato"},
}

var sampleCities = map[string][]string{
	"California": {"Los Angeles", "San Francisco", "San Diego", "San Jose"},
	"Texas":      {"Houston", "Dallas", "Austin", "San Antonio"},
	"New York":   {"New York City", "Buffalo", "Rochester", "Syracuse"},
	"Florida":    {"Miami", "Tampa", "Orlando", "Jacksonville"},
	"Ontario":    {"Toronto", "Ottawa", "Hamilton", "London"},
	"England":    {"London", "Manchester", "Birmingham", "Liverpool"},
	"Bavaria":    {"Munich", "Nuremberg", "Augsburg", "Würzburg"},
}

// GenerateSample builds a deterministic synthetic transaction log for demos
// and testing: 200 customers, the standard electronics catalog, and a
// 19-month order window.
func GenerateSample(numRecords int) (*models.Dataset, []string, error) {
	if numRecords <= 0 {
		numRecords = 1000
	}

	rng := rand.New(rand.NewSource(42))

	startDate := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	spanDays := int(endDate.Sub(startDate).Hours() / 24)

	rows := make([]models.TransactionRecord, 0, numRecords)
	for i := 0; i < numRecords; i++ {
		customerID := fmt.Sprintf("C%04d", rng.Intn(200)+1)
		orderDate := startDate.AddDate(0, 0, rng.Intn(spanDays))
		quantity := rng.Intn(4) + 1
		unitPrice := math.Round((rng.Float64()*490+10)*100) / 100

		country := sampleCountries[rng.Intn(len(sampleCountries))]
		region := pickGeo(rng, sampleRegions[country], "Unknown")
		city := pickGeo(rng, sampleCities[region], region+" City")

		rows = append(rows, models.TransactionRecord{
			CustomerID:  customerID,
			OrderDate:   orderDate,
			ProductName: sampleProducts[rng.Intn(len(sampleProducts))],
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TotalAmount: math.Round(float64(quantity)*unitPrice*100) / 100,
			Country:     country,
			Region:      region,
			City:        city,
		})
	}

	return BuildDataset(rows, "sample")
}

func pickGeo(rng *rand.Rand, options []string, fallback string) string {
	if len(options) == 0 {
		return fallback
	}
	return options[rng.Intn(len(options))]
}
