package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesFixture() []order {
	return []order{
		{customer: "A", date: "2024-01-05", product: "Laptop", amount: 1000, quantity: 1},
		{customer: "A", date: "2024-02-10", product: "Mouse", amount: 50, quantity: 2},
		{customer: "A", date: "2024-03-15", product: "Keyboard", amount: 150, quantity: 1},
		{customer: "B", date: "2024-01-20", product: "Laptop", amount: 1200, quantity: 1},
		{customer: "B", date: "2024-03-05", product: "Monitor", amount: 600, quantity: 2},
		{customer: "C", date: "2024-02-25", product: "Mouse", amount: 25, quantity: 1},
	}
}

func TestGetSalesMetrics(t *testing.T) {
	metrics, err := GetSalesMetrics(newTestDataset("sales-metrics", salesFixture()))
	require.NoError(t, err)

	assert.InDelta(t, 3025.0, metrics.TotalRevenue, 0.01)
	assert.Equal(t, 3, metrics.TotalCustomers)
	assert.Equal(t, 6, metrics.TotalOrders)
	assert.InDelta(t, 504.17, metrics.AvgOrderValue, 0.01)
	assert.InDelta(t, 1008.33, metrics.RevenuePerCustomer, 0.01)
	// A and B are repeat customers
	assert.InDelta(t, 66.67, metrics.RepeatCustomerRate, 0.01)
	assert.InDelta(t, 2.0, metrics.AvgOrderFrequency, 0.01)
	// March 750 vs February 75: +900%
	assert.InDelta(t, 900.0, metrics.GrowthRate, 0.01)
	// Only three customers, the top-10 share covers everyone
	assert.InDelta(t, 100.0, metrics.TopCustomersShare, 0.01)
}

func TestGetMonthlyTrends(t *testing.T) {
	trends, err := GetMonthlyTrends(newTestDataset("sales-trends", salesFixture()))
	require.NoError(t, err)
	require.Len(t, trends, 3)

	jan := trends[0]
	assert.Equal(t, "2024-01", jan.Month)
	assert.InDelta(t, 2200.0, jan.Revenue, 0.01)
	assert.Equal(t, 2, jan.Orders)
	assert.Equal(t, 2, jan.Customers)
	assert.Equal(t, 0.0, jan.RevenueGrowth)
	assert.InDelta(t, 2200.0, jan.MovingAvgRevenue, 0.01)

	feb := trends[1]
	assert.InDelta(t, 75.0, feb.Revenue, 0.01)
	assert.InDelta(t, -96.59, feb.RevenueGrowth, 0.01)
	assert.InDelta(t, (2200.0+75.0)/2, feb.MovingAvgRevenue, 0.01)

	mar := trends[2]
	assert.InDelta(t, 750.0, mar.Revenue, 0.01)
	assert.Equal(t, 3, mar.UnitsSold)
	assert.InDelta(t, (2200.0+75.0+750.0)/3, mar.MovingAvgRevenue, 0.01)
}

func TestGetProductPerformance(t *testing.T) {
	products, err := GetProductPerformance(newTestDataset("sales-products", salesFixture()))
	require.NoError(t, err)
	require.Len(t, products, 4)

	top := products[0]
	assert.Equal(t, "Laptop", top.Product)
	assert.Equal(t, 1, top.Rank)
	assert.InDelta(t, 2200.0, top.Revenue, 0.01)
	assert.Equal(t, 2, top.UniqueCustomers)
	assert.InDelta(t, 72.73, top.RevenueShare, 0.01)

	// Cumulative share reaches 100% at the last product
	last := products[len(products)-1]
	assert.InDelta(t, 100.0, last.CumulativeShare, 0.05)
	for i := 1; i < len(products); i++ {
		assert.GreaterOrEqual(t, products[i-1].Revenue, products[i].Revenue)
		assert.Equal(t, i+1, products[i].Rank)
	}
}

func TestGetSeasonalAnalysis(t *testing.T) {
	seasonal, err := GetSeasonalAnalysis(newTestDataset("sales-seasonal", salesFixture()))
	require.NoError(t, err)

	assert.Equal(t, 1, seasonal.PeakMonth)
	assert.Equal(t, 2, seasonal.LowMonth)
	assert.Equal(t, 1, seasonal.PeakQuarter)
	assert.NotEmpty(t, seasonal.PeakDay)
	assert.InDelta(t, 2200.0, seasonal.MonthlySales[1], 0.01)
	assert.Greater(t, seasonal.SeasonalityStrength, 0.0)
}

func TestGetAcquisitionTrends(t *testing.T) {
	trends, err := GetAcquisitionTrends(newTestDataset("sales-acquisition", salesFixture()))
	require.NoError(t, err)
	require.Len(t, trends, 2)

	assert.Equal(t, "2024-01", trends[0].Month)
	assert.Equal(t, 2, trends[0].NewCustomers)
	assert.Equal(t, 2, trends[0].CumulativeCustomers)

	assert.Equal(t, "2024-02", trends[1].Month)
	assert.Equal(t, 1, trends[1].NewCustomers)
	assert.Equal(t, 3, trends[1].CumulativeCustomers)
	assert.InDelta(t, -50.0, trends[1].GrowthRate, 0.01)
}

func TestGetTopCustomers(t *testing.T) {
	top, err := GetTopCustomers(newTestDataset("sales-top", salesFixture()), 2)
	require.NoError(t, err)
	require.NotEmpty(t, top)

	// B leads on revenue
	assert.Equal(t, "B", top[0].CustomerID)
	assert.Equal(t, "Revenue", top[0].RankType)
	assert.InDelta(t, 1800.0, top[0].TotalSpent, 0.01)

	// No customer appears twice
	seen := make(map[string]bool)
	for _, c := range top {
		assert.False(t, seen[c.CustomerID], c.CustomerID)
		seen[c.CustomerID] = true
	}
}

func TestForecastRevenue(t *testing.T) {
	forecast, err := ForecastRevenue(newTestDataset("sales-forecast", salesFixture()), 3)
	require.NoError(t, err)

	require.Len(t, forecast.Forecast, 3)
	assert.Contains(t, []string{"Low", "Medium", "High"}, forecast.Confidence)
	for _, v := range forecast.Forecast {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestAnalyzePricingImpact_PriceBands(t *testing.T) {
	impact, err := AnalyzePricingImpact(newTestDataset("sales-pricing", salesFixture()))
	require.NoError(t, err)
	require.Len(t, impact.PriceRangePerformance, 5)

	// Unit prices span $25..$1200, so each band covers $235
	veryLow := impact.PriceRangePerformance[0]
	assert.Equal(t, "Very Low", veryLow.Range)
	assert.Equal(t, 4, veryLow.UnitsSold)
	assert.InDelta(t, 225.0, veryLow.Revenue, 0.01)
	assert.Equal(t, 2, veryLow.UniqueCustomers)

	// The $300 Monitor is the only mid-priced sale
	low := impact.PriceRangePerformance[1]
	assert.Equal(t, 2, low.UnitsSold)
	assert.InDelta(t, 600.0, low.Revenue, 0.01)

	// Nothing sells in the Medium and High bands
	assert.Equal(t, 0, impact.PriceRangePerformance[2].UnitsSold)
	assert.Equal(t, 0, impact.PriceRangePerformance[3].UnitsSold)

	veryHigh := impact.PriceRangePerformance[4]
	assert.Equal(t, "Very High", veryHigh.Range)
	assert.InDelta(t, 2200.0, veryHigh.Revenue, 0.01)
	assert.Equal(t, 2, veryHigh.UniqueCustomers)

	// No product clears the six-sale elasticity threshold
	assert.Empty(t, impact.PriceElasticity)

	// Expensive months sell fewer units
	assert.InDelta(t, -0.985, impact.PriceSalesCorrelation, 0.001)
}

func TestAnalyzePricingImpact_Elasticity(t *testing.T) {
	orders := make([]order, 0, 11)
	// Widget sells one unit less for every $10 price step
	for i := 1; i <= 6; i++ {
		price := float64(10 * i)
		qty := 7 - i
		orders = append(orders, order{
			customer: fmt.Sprintf("C%d", i),
			date:     fmt.Sprintf("2024-%02d-10", i),
			product:  "Widget",
			amount:   price * float64(qty),
			quantity: qty,
		})
	}
	// Gadget sells five times, below the threshold
	for i := 1; i <= 5; i++ {
		orders = append(orders, order{
			customer: fmt.Sprintf("G%d", i),
			date:     fmt.Sprintf("2024-%02d-20", i),
			product:  "Gadget",
			amount:   30,
			quantity: 1,
		})
	}

	impact, err := AnalyzePricingImpact(newTestDataset("sales-elasticity", orders))
	require.NoError(t, err)

	require.Contains(t, impact.PriceElasticity, "Widget")
	assert.InDelta(t, -1.0, impact.PriceElasticity["Widget"], 0.001)
	assert.NotContains(t, impact.PriceElasticity, "Gadget")
}

func TestAnalyzePricingImpact_UniformPrices(t *testing.T) {
	ds := newTestDataset("sales-pricing-flat", []order{
		{customer: "A", date: "2024-01-05", product: "X", amount: 50, quantity: 1},
		{customer: "B", date: "2024-01-12", product: "X", amount: 100, quantity: 2},
		{customer: "C", date: "2024-01-19", product: "Y", amount: 50, quantity: 1},
	})
	impact, err := AnalyzePricingImpact(ds)
	require.NoError(t, err)

	// A flat $50 price has no spread; everything lands in the middle band
	for i, band := range impact.PriceRangePerformance {
		if i == 2 {
			assert.Equal(t, 4, band.UnitsSold)
			assert.InDelta(t, 200.0, band.Revenue, 0.01)
			assert.Equal(t, 3, band.UniqueCustomers)
		} else {
			assert.Equal(t, 0, band.UnitsSold)
		}
	}

	// A single month gives no correlation to measure
	assert.Equal(t, 0.0, impact.PriceSalesCorrelation)
}

func TestAnalyzePricingImpact_EmptyDataset(t *testing.T) {
	_, err := AnalyzePricingImpact(newTestDataset("sales-pricing-empty", nil))
	assert.Error(t, err)
}

func TestForecastRevenue_NeedsThreeMonths(t *testing.T) {
	ds := newTestDataset("sales-forecast-short", []order{
		{customer: "A", date: "2024-01-05", product: "X", amount: 100},
		{customer: "A", date: "2024-02-05", product: "Y", amount: 100},
	})
	_, err := ForecastRevenue(ds, 3)
	assert.Error(t, err)
}
