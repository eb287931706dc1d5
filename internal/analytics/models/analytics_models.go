package models

import (
	"time"
)

// ========== RFM MODELS ==========

// Business segment labels produced by the RFM categorizer. The set is open:
// consumers must not assume these are the only values.
const (
	SegmentChampions          = "Champions"
	SegmentLoyalCustomers     = "Loyal Customers"
	SegmentPotentialLoyalists = "Potential Loyalists"
	SegmentNewCustomers       = "New Customers"
	SegmentAtRisk             = "At Risk"
	SegmentCannotLoseThem     = "Cannot Lose Them"
	SegmentHibernating        = "Hibernating"
	SegmentLostCustomers      = "Lost Customers"
)

// CustomerRFM holds one customer's recency/frequency/monetary metrics,
// quantile scores and business segment.
type CustomerRFM struct {
	CustomerID    string    `json:"customer_id"`
	LastOrderDate time.Time `json:"last_order_date"`
	Frequency     int       `json:"frequency"`
	Monetary      float64   `json:"monetary"`
	AvgOrderValue float64   `json:"avg_order_value"`
	Recency       int       `json:"recency"` // days from last order to reference date
	RScore        int       `json:"r_score"`
	FScore        int       `json:"f_score"`
	MScore        int       `json:"m_score"`
	RFMScore      string    `json:"rfm_score"` // R, F, M digits concatenated, e.g. "555"
	Segment       string    `json:"segment"`
}

// SegmentSummary aggregates the customers sharing one segment label
type SegmentSummary struct {
	Count        int     `json:"count"`
	Revenue      float64 `json:"revenue"`
	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
}

// ========== LIFETIME VALUE MODELS ==========

// CLVRecord is one customer's lifetime value estimate
type CLVRecord struct {
	CustomerID        string    `json:"customer_id"`
	FirstOrder        time.Time `json:"first_order"`
	LastOrder         time.Time `json:"last_order"`
	Frequency         int       `json:"frequency"`
	TotalRevenue      float64   `json:"total_revenue"`
	AvgOrderValue     float64   `json:"avg_order_value"`
	LifespanDays      int       `json:"lifespan_days"`
	PurchaseFrequency float64   `json:"purchase_frequency"` // orders per year
	PredictedLifespan float64   `json:"predicted_lifespan"`
	CLV               float64   `json:"clv"`
	CLVSegment        string    `json:"clv_segment"` // Low/Medium/High/Very High quartile
}

// ========== CHURN MODELS ==========

// Churn risk tiers, inclusive-lowest binning over the normalized score
const (
	RiskLow      = "Low"      // [0, 25]
	RiskMedium   = "Medium"   // (25, 50]
	RiskHigh     = "High"     // (50, 75]
	RiskCritical = "Critical" // (75, 100]
)

// ChurnRecord extends a customer's RFM row with behavioral churn indicators
type ChurnRecord struct {
	CustomerID          string  `json:"customer_id"`
	Recency             int     `json:"recency"`
	Frequency           int     `json:"frequency"`
	Monetary            float64 `json:"monetary"`
	Segment             string  `json:"segment"`
	ChurnScore          float64 `json:"churn_score"`       // min-max normalized to [0,100]
	ChurnProbability    float64 `json:"churn_probability"` // bounded to [0.1, 0.9]
	RiskLevel           string  `json:"risk_level"`
	RetentionStrategy   string  `json:"retention_strategy"`
	OrderFrequency      float64 `json:"order_frequency"` // orders per ~month
	PurchaseConsistency float64 `json:"purchase_consistency"`
	PurchaseDiversity   float64 `json:"purchase_diversity"`
}
