package services

import (
	"fmt"
	"testing"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func churnFixture() []order {
	orders := make([]order, 0)
	// Ten customers ranging from very active to long dormant
	for i := 1; i <= 10; i++ {
		for j := 0; j < i; j++ {
			orders = append(orders, order{
				customer: fmt.Sprintf("C%02d", i),
				date:     fmt.Sprintf("2024-%02d-%02d", (j%6)+1, i),
				product:  fmt.Sprintf("P%d", j%3),
				amount:   float64(i * 15),
			})
		}
	}
	return orders
}

func TestIdentifyChurnRisk_ScoreBounds(t *testing.T) {
	records, err := IdentifyChurnRisk(newTestDataset("churn-bounds", churnFixture()))
	require.NoError(t, err)
	require.Len(t, records, 10)

	for _, r := range records {
		assert.GreaterOrEqual(t, r.ChurnScore, 0.0)
		assert.LessOrEqual(t, r.ChurnScore, 100.0)
		assert.GreaterOrEqual(t, r.ChurnProbability, 0.1)
		assert.LessOrEqual(t, r.ChurnProbability, 0.9)
		assert.Contains(t, []string{
			models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical,
		}, r.RiskLevel)
		assert.NotEmpty(t, r.RetentionStrategy)
	}
}

func TestIdentifyChurnRisk_SortedByScoreDescending(t *testing.T) {
	records, err := IdentifyChurnRisk(newTestDataset("churn-sorted", churnFixture()))
	require.NoError(t, err)

	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i-1].ChurnScore, records[i].ChurnScore)
	}
	// The normalization pins the extremes
	assert.Equal(t, 100.0, records[0].ChurnScore)
	assert.Equal(t, 0.0, records[len(records)-1].ChurnScore)
}

func TestIdentifyChurnRisk_SingleCustomerScoresFifty(t *testing.T) {
	// One customer: min == max raw score, normalization is degenerate
	ds := newTestDataset("churn-uniform", []order{
		{customer: "A", date: "2024-01-01", product: "X", amount: 50},
		{customer: "A", date: "2024-03-01", product: "Y", amount: 50},
	})

	records, err := IdentifyChurnRisk(ds)
	require.NoError(t, err)
	require.Len(t, records, 1)

	for _, r := range records {
		assert.Equal(t, 50.0, r.ChurnScore)
		assert.Equal(t, models.RiskMedium, r.RiskLevel)
		assert.InDelta(t, 0.5, r.ChurnProbability, 0.001)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score float64
		level string
	}{
		{0, models.RiskLow},
		{25, models.RiskLow},
		{25.1, models.RiskMedium},
		{50, models.RiskMedium},
		{50.1, models.RiskHigh},
		{75, models.RiskHigh},
		{75.1, models.RiskCritical},
		{100, models.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, riskLevel(tt.score), "score %v", tt.score)
	}
}

func TestRetentionStrategy(t *testing.T) {
	assert.Contains(t, retentionStrategy(models.RiskCritical), "Immediate intervention")
	assert.Contains(t, retentionStrategy(models.RiskHigh), "Urgent")
	assert.Contains(t, retentionStrategy(models.RiskMedium), "Monitor")
	assert.Contains(t, retentionStrategy(models.RiskLow), "Maintain")
}

func TestIdentifyChurnRisk_EmptyDataset(t *testing.T) {
	_, err := IdentifyChurnRisk(newTestDataset("churn-empty", nil))
	assert.Error(t, err)
}
