package models

// CohortMatrix is a cohort_group × period_number pivot. Cohorts are calendar
// months ("2023-01") in ascending order; Periods always run 0..max with
// missing cells filled with 0.
type CohortMatrix struct {
	Cohorts []string    `json:"cohorts"`
	Periods []int       `json:"periods"`
	Values  [][]float64 `json:"values"` // [cohort][period]
}

// Cell returns the value at (cohort label, period number), 0 when absent
func (m *CohortMatrix) Cell(cohort string, period int) float64 {
	if period < 0 || period >= len(m.Periods) {
		return 0
	}
	for i, c := range m.Cohorts {
		if c == cohort {
			return m.Values[i][period]
		}
	}
	return 0
}

// CohortHighlight names the best or worst performing cohort at a period
type CohortHighlight struct {
	Cohort        string  `json:"cohort"`
	RetentionRate float64 `json:"retention_rate"`
}

// RetentionMilestones are average retention at fixed month marks. A nil field
// means the data does not span that many periods.
type RetentionMilestones struct {
	OneMonth    *float64 `json:"1_month,omitempty"`
	ThreeMonths *float64 `json:"3_months,omitempty"`
	SixMonths   *float64 `json:"6_months,omitempty"`
}

// RetentionInsights derives comparative signals from the retention matrix.
// Optional members are omitted when the data is too thin to support them.
type RetentionInsights struct {
	AvgRetentionByPeriod        []float64            `json:"avg_retention_by_period,omitempty"`
	BestCohort                  *CohortHighlight     `json:"best_cohort,omitempty"`
	WorstCohort                 *CohortHighlight     `json:"worst_cohort,omitempty"`
	Milestones                  *RetentionMilestones `json:"retention_milestones,omitempty"`
	RetentionRevenueCorrelation *float64             `json:"retention_revenue_correlation,omitempty"`
}

// CohortPerformance summarizes one cohort's lifetime behavior
type CohortPerformance struct {
	TotalCustomers       int     `json:"total_customers"`
	TotalRevenue         float64 `json:"total_revenue"`
	AvgCustomerValue     float64 `json:"avg_customer_value"`
	AvgOrdersPerCustomer float64 `json:"avg_orders_per_customer"`
	AvgOrderValue        float64 `json:"avg_order_value"`
	ActiveMonths         int     `json:"active_months"`
	PurchaseFrequency    float64 `json:"purchase_frequency"`
}

// RetentionPredictions extrapolates the average retention curve
type RetentionPredictions struct {
	PredictedNext3Months []float64 `json:"predicted_retention_next_3_months,omitempty"`
	AvgMonthlyDecayRate  *float64  `json:"avg_monthly_decay_rate,omitempty"`
	Estimated12Month     *float64  `json:"estimated_12_month_retention,omitempty"`
}

// CohortAnalysisSummary gives headline cohort counts
type CohortAnalysisSummary struct {
	TotalCohorts  int    `json:"total_cohorts"`
	AvgCohortSize int    `json:"avg_cohort_size"`
	OldestCohort  string `json:"oldest_cohort"`
	NewestCohort  string `json:"newest_cohort"`
}

// CohortAnalysis is the complete cohort/retention engine output
type CohortAnalysis struct {
	RetentionTable  *CohortMatrix                `json:"retention_table"`
	RevenueTable    *CohortMatrix                `json:"revenue_table"` // revenue per cohort customer
	CountTable      *CohortMatrix                `json:"count_table"`   // absolute active customers
	CohortSizes     map[string]int               `json:"cohort_sizes"`
	Insights        RetentionInsights            `json:"retention_insights"`
	Performance     map[string]CohortPerformance `json:"cohort_performance"`
	Predictions     RetentionPredictions         `json:"retention_predictions"`
	AnalysisSummary CohortAnalysisSummary        `json:"analysis_summary"`
}
