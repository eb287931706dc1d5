package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSample_Deterministic(t *testing.T) {
	first, _, err := GenerateSample(500)
	require.NoError(t, err)
	second, _, err := GenerateSample(500)
	require.NoError(t, err)

	require.Len(t, first.Rows, 500)
	require.Len(t, second.Rows, 500)

	// Same seed, same rows; only dataset identity differs
	assert.NotEqual(t, first.ID, second.ID)
	for i := range first.Rows {
		a, b := first.Rows[i], second.Rows[i]
		assert.Equal(t, a.CustomerID, b.CustomerID)
		assert.Equal(t, a.OrderDate, b.OrderDate)
		assert.Equal(t, a.ProductName, b.ProductName)
		assert.Equal(t, a.Quantity, b.Quantity)
		assert.Equal(t, a.UnitPrice, b.UnitPrice)
		assert.Equal(t, a.TotalAmount, b.TotalAmount)
		assert.Equal(t, a.Country, b.Country)
	}
}

func TestGenerateSample_RowShape(t *testing.T) {
	ds, _, err := GenerateSample(300)
	require.NoError(t, err)

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, ds.HasGeoData)
	for _, row := range ds.Rows {
		assert.Regexp(t, `^C\d{4}$`, row.CustomerID)
		assert.GreaterOrEqual(t, row.Quantity, 1)
		assert.LessOrEqual(t, row.Quantity, 4)
		assert.GreaterOrEqual(t, row.UnitPrice, 10.0)
		assert.LessOrEqual(t, row.UnitPrice, 500.0)
		assert.InDelta(t, float64(row.Quantity)*row.UnitPrice, row.TotalAmount, 0.005)
		assert.False(t, row.OrderDate.Before(start))
		assert.True(t, row.OrderDate.Before(end))
		assert.NotEmpty(t, row.Country)
		assert.NotEmpty(t, row.Region)
		assert.NotEmpty(t, row.City)
	}
}

func TestGenerateSample_DefaultSize(t *testing.T) {
	ds, _, err := GenerateSample(0)
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 1000)
}
