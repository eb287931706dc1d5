package models

import (
	"time"
)

// Customer lifecycle stages, classified in precedence order
const (
	StageNew        = "New"
	StageDeveloping = "Developing"
	StageLoyal      = "Loyal"
	StageInactive   = "Inactive"
	StageRegular    = "Regular"
)

// CustomerJourney describes one customer's lifecycle so far
type CustomerJourney struct {
	CustomerID          string    `json:"customer_id"`
	CurrentStage        string    `json:"current_stage"`
	JourneyLengthDays   int       `json:"journey_length_days"`
	TotalTouchpoints    int       `json:"total_touchpoints"`
	OrderFrequency      float64   `json:"order_frequency"` // orders per ~30 days
	UniqueProducts      int       `json:"unique_products"`
	ProductDiversity    float64   `json:"product_diversity"`
	AvgOrderValue       float64   `json:"avg_order_value"`
	ValueVolatility     float64   `json:"value_volatility"`
	TotalCLV            float64   `json:"total_clv"`
	FirstPurchase       time.Time `json:"first_purchase"`
	LastPurchase        time.Time `json:"last_purchase"`
	ProductSequence     []string  `json:"product_sequence"`     // first 10 products
	SpendingProgression []float64 `json:"spending_progression"` // first 10 order amounts
}

// StageMetrics averages journey measures over one stage's population
type StageMetrics struct {
	Count               int     `json:"count"`
	AvgJourneyLength    float64 `json:"avg_journey_length"`
	AvgTouchpoints      float64 `json:"avg_touchpoints"`
	AvgCLV              float64 `json:"avg_clv"`
	AvgOrderFrequency   float64 `json:"avg_order_frequency"`
	AvgProductDiversity float64 `json:"avg_product_diversity"`
}

// JourneyPatterns counts mutually exclusive behavioral patterns
type JourneyPatterns struct {
	QuickConverters   int `json:"quick_converters"`
	GradualBuilders   int `json:"gradual_builders"`
	HighValueStarters int `json:"high_value_starters"`
	ProductExplorers  int `json:"product_explorers"`
	ConsistentBuyers  int `json:"consistent_buyers"`
	AtRiskPatterns    int `json:"at_risk_patterns"`
}

// ConversionMetrics reports lifecycle funnel rates as percentages
type ConversionMetrics struct {
	NewToRepeatRate        float64 `json:"new_to_repeat_rate"`
	RepeatToLoyalRate      float64 `json:"repeat_to_loyal_rate"`
	OneTimeCustomerRate    float64 `json:"one_time_customer_rate"`
	CustomerLifecycleRatio float64 `json:"customer_lifecycle_ratio"`
}

// JourneyAnalysis is the customer journey engine output
type JourneyAnalysis struct {
	Journeys          map[string]CustomerJourney `json:"customer_journeys"`
	StageDistribution map[string]int             `json:"stage_distribution"`
	StageMetrics      map[string]StageMetrics    `json:"stage_metrics"`
	Patterns          JourneyPatterns            `json:"journey_patterns"`
	Conversion        ConversionMetrics          `json:"conversion_metrics"`
	Insights          []string                   `json:"insights"`
	TotalCustomers    int                        `json:"total_customers_analyzed"`
}
