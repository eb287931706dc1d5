package models

import (
	"time"
)

// SalesMetrics are the headline performance numbers for a dataset
type SalesMetrics struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TotalCustomers     int     `json:"total_customers"`
	TotalOrders        int     `json:"total_orders"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	RepeatCustomerRate float64 `json:"repeat_customer_rate"` // percent
	AvgOrderFrequency  float64 `json:"avg_order_frequency"`
	GrowthRate         float64 `json:"growth_rate"` // last vs previous month, percent
	RevenueVolatility  float64 `json:"revenue_volatility"`
	TopCustomersShare  float64 `json:"top_customers_revenue_share"` // top 10, percent
}

// MonthlyTrend is one calendar month's sales rollup
type MonthlyTrend struct {
	Month              string  `json:"month"` // "2023-01"
	Revenue            float64 `json:"revenue"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	Orders             int     `json:"orders"`
	Customers          int     `json:"customers"`
	UnitsSold          int     `json:"units_sold"`
	RevenueGrowth      float64 `json:"revenue_growth"`  // percent vs previous month
	CustomerGrowth     float64 `json:"customer_growth"` // percent vs previous month
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	MovingAvgRevenue   float64 `json:"moving_avg_revenue"` // 3-month window
}

// ProductPerformance is one product's sales rollup
type ProductPerformance struct {
	Product            string  `json:"product"`
	Revenue            float64 `json:"revenue"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	Orders             int     `json:"orders"`
	UnitsSold          int     `json:"units_sold"`
	UniqueCustomers    int     `json:"unique_customers"`
	RevenueShare       float64 `json:"revenue_share"` // percent
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	AvgUnitsPerOrder   float64 `json:"avg_units_per_order"`
	Rank               int     `json:"rank"`
	CumulativeShare    float64 `json:"cumulative_revenue_share"` // percent
}

// SeasonalAnalysis breaks revenue down by calendar position
type SeasonalAnalysis struct {
	MonthlySales        map[int]float64    `json:"monthly_sales"` // 1..12
	PeakMonth           int                `json:"peak_month"`
	LowMonth            int                `json:"low_month"`
	QuarterlySales      map[int]float64    `json:"quarterly_sales"` // 1..4
	PeakQuarter         int                `json:"peak_quarter"`
	WeekdaySales        map[string]float64 `json:"weekly_sales"`
	PeakDay             string             `json:"peak_day"`
	SeasonalityStrength float64            `json:"seasonality_strength"` // std/mean of monthly sales
}

// AcquisitionTrend counts newly acquired customers per month
type AcquisitionTrend struct {
	Month               string  `json:"month"`
	NewCustomers        int     `json:"new_customers"`
	CumulativeCustomers int     `json:"cumulative_customers"`
	GrowthRate          float64 `json:"growth_rate"` // percent vs previous month
	MovingAvg           float64 `json:"moving_avg"`  // 3-month window
}

// TopCustomer is one customer's summary in a top-N ranking
type TopCustomer struct {
	CustomerID         string    `json:"customer_id"`
	TotalSpent         float64   `json:"total_spent"`
	AvgOrderValue      float64   `json:"avg_order_value"`
	OrderCount         int       `json:"order_count"`
	FirstOrder         time.Time `json:"first_order"`
	LastOrder          time.Time `json:"last_order"`
	TotalQuantity      int       `json:"total_quantity"`
	CustomerLifespan   int       `json:"customer_lifespan"` // days
	DaysSinceLastOrder int       `json:"days_since_last_order"`
	OrderFrequency     float64   `json:"order_frequency"` // orders per year
	RankType           string    `json:"rank_type"`       // Revenue/Frequency/Recency
}

// PriceRangePerformance is one price band's sales rollup
type PriceRangePerformance struct {
	Range           string  `json:"range"` // Very Low .. Very High
	UnitsSold       int     `json:"units_sold"`
	Revenue         float64 `json:"revenue"`
	UniqueCustomers int     `json:"unique_customers"`
}

// PricingImpact relates unit prices to sales volume
type PricingImpact struct {
	PriceRangePerformance []PriceRangePerformance `json:"price_range_performance"`
	PriceElasticity       map[string]float64      `json:"price_elasticity"`        // per product, price vs quantity correlation
	PriceSalesCorrelation float64                 `json:"price_sales_correlation"` // monthly avg price vs units sold
}

// RevenueForecast projects monthly revenue by compounding recent growth
type RevenueForecast struct {
	Forecast   []float64 `json:"forecast"`
	GrowthRate float64   `json:"growth_rate"` // percent
	Confidence string    `json:"confidence"`  // Low/Medium/High
}
