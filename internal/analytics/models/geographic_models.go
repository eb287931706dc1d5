package models

// Market performance tiers derived from revenue share
const (
	TierEmerging = "Emerging" // share <= 5%
	TierGrowing  = "Growing"  // <= 15%
	TierStrong   = "Strong"   // <= 30%
	TierDominant = "Dominant" // > 30%
)

// GeoLevelCoverage summarizes one geographic level (country/region/city)
type GeoLevelCoverage struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"` // transactions per location
	Top    string         `json:"top"`
}

// GeoCoverage reports which locations the customer base spans
type GeoCoverage struct {
	Countries *GeoLevelCoverage `json:"countries,omitempty"`
	Regions   *GeoLevelCoverage `json:"regions,omitempty"`
	Cities    *GeoLevelCoverage `json:"cities,omitempty"`
}

// RegionalPerformance is one location's sales rollup with market share
type RegionalPerformance struct {
	Location           string  `json:"location"`
	TotalRevenue       float64 `json:"total_revenue"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	TotalOrders        int     `json:"total_orders"`
	UniqueCustomers    int     `json:"unique_customers"`
	UnitsSold          int     `json:"units_sold"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	OrdersPerCustomer  float64 `json:"orders_per_customer"`
	MarketShare        float64 `json:"market_share"` // percent
	RevenueRank        int     `json:"revenue_rank"`
	PerformanceTier    string  `json:"performance_tier"`
}

// GeoTrends compares growth, preferences and seasonality across countries
type GeoTrends struct {
	CountryGrowthRates    map[string]float64 `json:"country_growth_rates,omitempty"`
	FastestGrowingCountry string             `json:"fastest_growing_country,omitempty"`
	TopProductsByCountry  map[string]string  `json:"top_products_by_country,omitempty"`
	PeakMonthsByCountry   map[string]int     `json:"peak_months_by_country,omitempty"`
}

// GeoCustomerSegment places one customer in its country's spending and
// frequency terciles.
type GeoCustomerSegment struct {
	CustomerID       string  `json:"customer_id"`
	TotalSpent       float64 `json:"total_spent"`
	OrderFrequency   int     `json:"order_frequency"`
	SpendingSegment  string  `json:"spending_segment"`  // Low/Medium/High Spender
	FrequencySegment string  `json:"frequency_segment"` // Occasional/Regular/Frequent
}

// MarketConcentration is the HHI reading over customer share
type MarketConcentration struct {
	HHIScore       float64 `json:"hhi_score"`
	Interpretation string  `json:"interpretation"`
}

// MarketPenetration identifies expansion opportunities and mature markets
type MarketPenetration struct {
	ExpansionOpportunities []string             `json:"expansion_opportunities,omitempty"`
	MatureMarkets          []string             `json:"mature_markets,omitempty"`
	Concentration          *MarketConcentration `json:"market_concentration,omitempty"`
}
