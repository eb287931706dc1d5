package services

import (
	"fmt"
	"testing"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRFM_ThreeCustomerScenario(t *testing.T) {
	ds := newTestDataset("rfm-three", []order{
		// C1: five orders totaling $500, most recent activity
		{customer: "C1", date: "2024-02-01", product: "Laptop", amount: 100},
		{customer: "C1", date: "2024-03-01", product: "Mouse", amount: 100},
		{customer: "C1", date: "2024-04-01", product: "Keyboard", amount: 100},
		{customer: "C1", date: "2024-05-01", product: "Monitor", amount: 100},
		{customer: "C1", date: "2024-06-30", product: "Webcam", amount: 100},
		// C2: one old order of $10
		{customer: "C2", date: "2024-01-01", product: "Cable", amount: 10},
		// C3: three orders totaling $150
		{customer: "C3", date: "2024-03-01", product: "Mouse", amount: 50},
		{customer: "C3", date: "2024-04-01", product: "Cable", amount: 50},
		{customer: "C3", date: "2024-05-01", product: "Hub", amount: 50},
	})

	rfm, err := CalculateRFM(ds)
	require.NoError(t, err)
	require.Len(t, rfm, 3)

	byID := make(map[string]models.CustomerRFM)
	for _, row := range rfm {
		assert.Len(t, row.RFMScore, 3)
		byID[row.CustomerID] = row
	}

	c1, c2, c3 := byID["C1"], byID["C2"], byID["C3"]

	// C1 dominates every dimension, C2 trails every dimension
	assert.Greater(t, c1.MScore, c3.MScore)
	assert.Greater(t, c3.MScore, c2.MScore)
	assert.Greater(t, c1.FScore, c3.FScore)
	assert.Greater(t, c3.FScore, c2.FScore)
	assert.Greater(t, c1.RScore, c2.RScore)

	assert.Equal(t, 500.0, c1.Monetary)
	assert.Equal(t, 5, c1.Frequency)
	assert.Equal(t, 0, c1.Recency)
	assert.Equal(t, models.SegmentChampions, c1.Segment)
	assert.Equal(t, models.SegmentLostCustomers, c2.Segment)
}

func TestCalculateRFM_ScoreRangesAndBinBalance(t *testing.T) {
	orders := make([]order, 0)
	// Ten customers with strictly distinct frequency, monetary and recency
	for i := 1; i <= 10; i++ {
		for j := 0; j < i; j++ {
			orders = append(orders, order{
				customer: fmt.Sprintf("C%02d", i),
				date:     fmt.Sprintf("2024-%02d-%02d", (j%6)+1, i),
				product:  "Widget",
				amount:   float64(i * 10),
			})
		}
	}
	ds := newTestDataset("rfm-ranges", orders)

	rfm, err := CalculateRFM(ds)
	require.NoError(t, err)
	require.Len(t, rfm, 10)

	mBins := make(map[int]int)
	for _, row := range rfm {
		assert.GreaterOrEqual(t, row.RScore, 1)
		assert.LessOrEqual(t, row.RScore, 5)
		assert.GreaterOrEqual(t, row.FScore, 1)
		assert.LessOrEqual(t, row.FScore, 5)
		assert.GreaterOrEqual(t, row.MScore, 1)
		assert.LessOrEqual(t, row.MScore, 5)
		mBins[row.MScore]++
	}
	// 10 distinct monetary values over 5 bins: 2 per bin
	for bin := 1; bin <= 5; bin++ {
		assert.Equal(t, 2, mBins[bin], "monetary bin %d", bin)
	}
}

func TestCalculateRFM_Idempotent(t *testing.T) {
	makeOrders := func() []order {
		return []order{
			{customer: "A", date: "2024-01-10", product: "X", amount: 25},
			{customer: "A", date: "2024-03-10", product: "Y", amount: 75},
			{customer: "B", date: "2024-02-15", product: "X", amount: 40},
			{customer: "C", date: "2024-03-20", product: "Z", amount: 90},
		}
	}
	first, err := CalculateRFM(newTestDataset("rfm-idem-1", makeOrders()))
	require.NoError(t, err)
	second, err := CalculateRFM(newTestDataset("rfm-idem-2", makeOrders()))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculateRFM_CachedByDatasetID(t *testing.T) {
	ds := newTestDataset("rfm-cache", []order{
		{customer: "A", date: "2024-01-10", product: "X", amount: 25},
		{customer: "B", date: "2024-02-15", product: "Y", amount: 40},
	})
	first, err := CalculateRFM(ds)
	require.NoError(t, err)

	cached, ok := rfmCache.get(ds.ID)
	require.True(t, ok)
	assert.Equal(t, first, cached)

	InvalidateDataset(ds.ID)
	_, ok = rfmCache.get(ds.ID)
	assert.False(t, ok)
}

func TestCalculateRFM_EmptyDataset(t *testing.T) {
	_, err := CalculateRFM(newTestDataset("rfm-empty", nil))
	assert.Error(t, err)
}

func TestCategorizeRFM(t *testing.T) {
	tests := []struct {
		score   string
		segment string
	}{
		{"555", models.SegmentChampions},
		{"445", models.SegmentChampions},
		{"444", models.SegmentLoyalCustomers},
		{"335", models.SegmentLoyalCustomers},
		{"553", models.SegmentPotentialLoyalists},
		{"511", models.SegmentNewCustomers},
		{"311", models.SegmentNewCustomers},
		// "155" is listed under two segments; the first listing wins
		{"155", models.SegmentAtRisk},
		{"114", models.SegmentAtRisk},
		{"254", models.SegmentCannotLoseThem},
		{"334", models.SegmentCannotLoseThem},
		{"231", models.SegmentHibernating},
		{"222", models.SegmentHibernating},
		{"111", models.SegmentLostCustomers},
		{"000", models.SegmentLostCustomers},
	}

	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			assert.Equal(t, tt.segment, CategorizeRFM(tt.score))
		})
	}
}

func TestGetCustomerSegments(t *testing.T) {
	ds := newTestDataset("rfm-segments", []order{
		{customer: "C1", date: "2024-02-01", product: "Laptop", amount: 100},
		{customer: "C1", date: "2024-06-30", product: "Mouse", amount: 400},
		{customer: "C2", date: "2024-01-01", product: "Cable", amount: 10},
		{customer: "C3", date: "2024-05-01", product: "Hub", amount: 150},
	})

	segments, err := GetCustomerSegments(ds)
	require.NoError(t, err)

	totalCount := 0
	totalRevenue := 0.0
	for _, s := range segments {
		assert.Greater(t, s.Count, 0)
		totalCount += s.Count
		totalRevenue += s.Revenue
	}
	assert.Equal(t, 3, totalCount)
	assert.InDelta(t, 660.0, totalRevenue, 0.01)
}

func TestGetPredictiveInsights(t *testing.T) {
	orders := make([]order, 0)
	for i := 1; i <= 10; i++ {
		for j := 0; j < i; j++ {
			orders = append(orders, order{
				customer: fmt.Sprintf("C%02d", i),
				date:     fmt.Sprintf("2024-%02d-%02d", (j%6)+1, i),
				product:  "Widget",
				amount:   float64(i * 10),
			})
		}
	}
	ds := newTestDataset("rfm-insights", orders)

	insights, err := GetPredictiveInsights(ds)
	require.NoError(t, err)
	assert.NotEmpty(t, insights)
	assert.LessOrEqual(t, len(insights), 8)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1,234,568", formatMoney(1234567.89))
	assert.Equal(t, "10", formatMoney(10.4))
	assert.Equal(t, "-1,000", formatMoney(-1000))
}
