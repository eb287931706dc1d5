package services

import (
	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/architect/commerce-analytics/internal/common/errors"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// clvSegmentLabels index quartile bins 1..4
var clvSegmentLabels = []string{"Low", "Medium", "High", "Very High"}

// CalculateCLV estimates each customer's lifetime value from historical
// order cadence. One-off buyers have no observable lifespan, so they borrow
// the population's average lifespan for the projection.
func CalculateCLV(ds *dataset.Dataset) ([]models.CLVRecord, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	stats := aggregateCustomers(ds)
	n := len(stats)

	lifespans := make([]float64, n)
	for i, cs := range stats {
		days := daysBetween(cs.FirstPurchase, cs.LastPurchase)
		if days == 0 {
			// same-day customers count as a one-day lifespan
			days = 1
		}
		lifespans[i] = float64(days)
	}
	avgLifespan := mean(lifespans)

	result := make([]models.CLVRecord, n)
	clvValues := make([]float64, n)
	for i, cs := range stats {
		purchaseFreq := float64(cs.Frequency) / lifespans[i] * 365

		predicted := avgLifespan
		if cs.Frequency > 1 {
			predicted = lifespans[i]
		}

		clv := round2(cs.AvgOrderValue * purchaseFreq * (predicted / 365))
		clvValues[i] = clv
		result[i] = models.CLVRecord{
			CustomerID:        cs.CustomerID,
			FirstOrder:        cs.FirstPurchase,
			LastOrder:         cs.LastPurchase,
			Frequency:         cs.Frequency,
			TotalRevenue:      cs.Monetary,
			AvgOrderValue:     cs.AvgOrderValue,
			LifespanDays:      int(lifespans[i]),
			PurchaseFrequency: round2(purchaseFreq),
			PredictedLifespan: round2(predicted),
			CLV:               clv,
		}
	}

	bins := quantileScores(clvValues, 4)
	for i := range result {
		result[i].CLVSegment = clvSegmentLabels[bins[i]-1]
	}
	return result, nil
}
