package services

import (
	"fmt"
	"testing"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCLV_RepeatBuyerUsesOwnLifespan(t *testing.T) {
	ds := newTestDataset("clv-basic", []order{
		{customer: "A", date: "2024-01-01", product: "X", amount: 100},
		{customer: "A", date: "2024-12-31", product: "Y", amount: 100},
		{customer: "B", date: "2024-06-01", product: "X", amount: 50},
	})

	records, err := CalculateCLV(ds)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := make(map[string]models.CLVRecord)
	for _, r := range records {
		byID[r.CustomerID] = r
	}

	a := byID["A"]
	assert.Equal(t, 365, a.LifespanDays)
	assert.InDelta(t, 2.0, a.PurchaseFrequency, 0.01)
	assert.InDelta(t, 365.0, a.PredictedLifespan, 0.01)
	assert.InDelta(t, 200.0, a.CLV, 0.01)

	// One-off buyers borrow the population's average lifespan
	b := byID["B"]
	assert.Equal(t, 1, b.LifespanDays)
	assert.InDelta(t, 183.0, b.PredictedLifespan, 0.01)
	assert.InDelta(t, 9150.0, b.CLV, 0.5)
}

func TestCalculateCLV_SameDayLifespanFloor(t *testing.T) {
	ds := newTestDataset("clv-sameday", []order{
		{customer: "A", date: "2024-03-01", product: "X", amount: 30},
		{customer: "A", date: "2024-03-01", product: "Y", amount: 30},
		{customer: "B", date: "2024-01-01", product: "X", amount: 10},
		{customer: "B", date: "2024-04-10", product: "Y", amount: 10},
	})

	records, err := CalculateCLV(ds)
	require.NoError(t, err)

	for _, r := range records {
		assert.GreaterOrEqual(t, r.LifespanDays, 1, "lifespan is floored to one day")
	}
}

func TestCalculateCLV_QuartileSegments(t *testing.T) {
	orders := make([]order, 0, 8)
	for i := 1; i <= 8; i++ {
		orders = append(orders,
			order{customer: fmt.Sprintf("C%d", i), date: "2024-01-01", product: "X", amount: float64(i * 20)},
			order{customer: fmt.Sprintf("C%d", i), date: "2024-07-01", product: "Y", amount: float64(i * 20)},
		)
	}
	records, err := CalculateCLV(newTestDataset("clv-quartiles", orders))
	require.NoError(t, err)
	require.Len(t, records, 8)

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.CLVSegment]++
	}
	// Eight customers over four quartiles: two per segment
	for _, label := range []string{"Low", "Medium", "High", "Very High"} {
		assert.Equal(t, 2, counts[label], label)
	}
}

func TestCalculateCLV_EmptyDataset(t *testing.T) {
	_, err := CalculateCLV(newTestDataset("clv-empty", nil))
	assert.Error(t, err)
}
