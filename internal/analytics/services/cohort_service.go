package services

import (
	"math"
	"sort"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/architect/commerce-analytics/internal/common/errors"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// ========== COHORT / RETENTION ==========

// CohortAnalysis groups customers by first-purchase month and tracks their
// activity across subsequent calendar months. Period 0 is every cohort's
// acquisition month, so its retention is always 1.0.
func CohortAnalysis(ds *dataset.Dataset) (*models.CohortAnalysis, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	// First purchase month per customer defines their cohort
	cohortOf := make(map[string]int)
	for _, rec := range ds.Rows {
		m := monthIndex(rec.OrderDate)
		if cur, ok := cohortOf[rec.CustomerID]; !ok || m < cur {
			cohortOf[rec.CustomerID] = m
		}
	}

	cohortMonths := make([]int, 0)
	seen := make(map[int]bool)
	for _, m := range cohortOf {
		if !seen[m] {
			seen[m] = true
			cohortMonths = append(cohortMonths, m)
		}
	}
	sort.Ints(cohortMonths)
	cohortIdx := make(map[int]int, len(cohortMonths))
	labels := make([]string, len(cohortMonths))
	for i, m := range cohortMonths {
		cohortIdx[m] = i
		labels[i] = monthLabel(m)
	}

	// Active customers and revenue per (cohort, period) cell
	maxPeriod := 0
	type cellKey struct{ cohort, period int }
	activeSets := make(map[cellKey]map[string]bool)
	cellRevenue := make(map[cellKey]float64)
	for _, rec := range ds.Rows {
		cohort := cohortIdx[cohortOf[rec.CustomerID]]
		period := monthIndex(rec.OrderDate) - cohortOf[rec.CustomerID]
		if period > maxPeriod {
			maxPeriod = period
		}
		key := cellKey{cohort, period}
		if activeSets[key] == nil {
			activeSets[key] = make(map[string]bool)
		}
		activeSets[key][rec.CustomerID] = true
		cellRevenue[key] += rec.TotalAmount
	}

	numCohorts := len(cohortMonths)
	numPeriods := maxPeriod + 1

	cohortSizes := make([]int, numCohorts)
	for _, m := range cohortOf {
		cohortSizes[cohortIdx[m]]++
	}

	periods := make([]int, numPeriods)
	for p := range periods {
		periods[p] = p
	}
	retention := newMatrix(labels, periods)
	revenue := newMatrix(labels, periods)
	counts := newMatrix(labels, periods)
	for key, set := range activeSets {
		active := len(set)
		counts.Values[key.cohort][key.period] = float64(active)
		retention.Values[key.cohort][key.period] = round3(float64(active) / float64(cohortSizes[key.cohort]))
		revenue.Values[key.cohort][key.period] = round2(cellRevenue[key] / float64(active))
	}

	sizeMap := make(map[string]int, numCohorts)
	sizeSum := 0
	for i, label := range labels {
		sizeMap[label] = cohortSizes[i]
		sizeSum += cohortSizes[i]
	}

	analysis := &models.CohortAnalysis{
		RetentionTable: retention,
		RevenueTable:   revenue,
		CountTable:     counts,
		CohortSizes:    sizeMap,
		Insights:       retentionInsights(retention, revenue),
		Performance:    cohortPerformance(ds, cohortOf, cohortIdx, labels, cohortSizes),
		Predictions:    predictRetentionTrends(retention),
		AnalysisSummary: models.CohortAnalysisSummary{
			TotalCohorts:  numCohorts,
			AvgCohortSize: sizeSum / numCohorts,
			OldestCohort:  labels[0],
			NewestCohort:  labels[numCohorts-1],
		},
	}
	return analysis, nil
}

func newMatrix(cohorts []string, periods []int) *models.CohortMatrix {
	values := make([][]float64, len(cohorts))
	for i := range values {
		values[i] = make([]float64, len(periods))
	}
	return &models.CohortMatrix{Cohorts: cohorts, Periods: periods, Values: values}
}

// columnMean averages one period column across all cohorts, zeros included
func columnMean(m *models.CohortMatrix, period int) float64 {
	sum := 0.0
	for i := range m.Cohorts {
		sum += m.Values[i][period]
	}
	return sum / float64(len(m.Cohorts))
}

func retentionInsights(retention, revenue *models.CohortMatrix) models.RetentionInsights {
	insights := models.RetentionInsights{}
	numPeriods := len(retention.Periods)
	if numPeriods <= 1 {
		return insights
	}

	avgByPeriod := make([]float64, numPeriods)
	for p := 0; p < numPeriods; p++ {
		avgByPeriod[p] = round3(columnMean(retention, p))
	}
	insights.AvgRetentionByPeriod = avgByPeriod

	if numPeriods >= 3 {
		col := numPeriods - 1
		if col > 3 {
			col = 3
		}
		best, worst := 0, 0
		for i := range retention.Cohorts {
			if retention.Values[i][col] > retention.Values[best][col] {
				best = i
			}
			if retention.Values[i][col] < retention.Values[worst][col] {
				worst = i
			}
		}
		insights.BestCohort = &models.CohortHighlight{
			Cohort:        retention.Cohorts[best],
			RetentionRate: retention.Values[best][col],
		}
		insights.WorstCohort = &models.CohortHighlight{
			Cohort:        retention.Cohorts[worst],
			RetentionRate: retention.Values[worst][col],
		}
	}

	milestones := &models.RetentionMilestones{}
	oneMonth := round3(columnMean(retention, 1))
	milestones.OneMonth = &oneMonth
	if numPeriods > 3 {
		v := round3(columnMean(retention, 3))
		milestones.ThreeMonths = &v
	}
	if numPeriods > 6 {
		v := round3(columnMean(retention, 6))
		milestones.SixMonths = &v
	}
	insights.Milestones = milestones

	// Per-period correlation between retention and revenue per customer,
	// over cohorts active in that period
	correlations := make([]float64, 0, numPeriods)
	for p := 0; p < numPeriods; p++ {
		var rets, revs []float64
		for i := range retention.Cohorts {
			if retention.Values[i][p] > 0 && revenue.Values[i][p] > 0 {
				rets = append(rets, retention.Values[i][p])
				revs = append(revs, revenue.Values[i][p])
			}
		}
		if len(rets) > 2 {
			correlations = append(correlations, pearson(rets, revs))
		}
	}
	if len(correlations) > 0 {
		corr := round3(mean(correlations))
		insights.RetentionRevenueCorrelation = &corr
	}
	return insights
}

func cohortPerformance(ds *dataset.Dataset, cohortOf map[string]int, cohortIdx map[int]int, labels []string, sizes []int) map[string]models.CohortPerformance {
	type rollup struct {
		revenue      float64
		orders       int
		maxPeriod    int
		customerRev  map[string]float64
	}
	rollups := make([]rollup, len(labels))
	for i := range rollups {
		rollups[i].customerRev = make(map[string]float64)
	}

	for _, rec := range ds.Rows {
		cohortMonth := cohortOf[rec.CustomerID]
		i := cohortIdx[cohortMonth]
		r := &rollups[i]
		r.revenue += rec.TotalAmount
		r.orders++
		r.customerRev[rec.CustomerID] += rec.TotalAmount
		if p := monthIndex(rec.OrderDate) - cohortMonth; p > r.maxPeriod {
			r.maxPeriod = p
		}
	}

	performance := make(map[string]models.CohortPerformance, len(labels))
	for i, label := range labels {
		r := rollups[i]
		if r.orders == 0 {
			continue
		}
		perCustomer := make([]float64, 0, len(r.customerRev))
		for _, v := range r.customerRev {
			perCustomer = append(perCustomer, v)
		}
		activeMonths := r.maxPeriod + 1
		size := float64(sizes[i])
		performance[label] = models.CohortPerformance{
			TotalCustomers:       sizes[i],
			TotalRevenue:         round2(r.revenue),
			AvgCustomerValue:     round2(mean(perCustomer)),
			AvgOrdersPerCustomer: round2(float64(r.orders) / size),
			AvgOrderValue:        round2(r.revenue / float64(r.orders)),
			ActiveMonths:         activeMonths,
			PurchaseFrequency:    round2(float64(r.orders) / (float64(activeMonths) * size)),
		}
	}
	return performance
}

// predictRetentionTrends extrapolates the average retention curve by its
// observed month-over-month decay rate.
func predictRetentionTrends(retention *models.CohortMatrix) models.RetentionPredictions {
	predictions := models.RetentionPredictions{}
	numPeriods := len(retention.Periods)
	if numPeriods <= 2 {
		return predictions
	}

	avgByPeriod := make([]float64, numPeriods)
	for p := 0; p < numPeriods; p++ {
		avgByPeriod[p] = columnMean(retention, p)
	}

	limit := numPeriods
	if limit > 6 {
		limit = 6
	}
	decayRates := make([]float64, 0, limit)
	for i := 1; i < limit; i++ {
		if avgByPeriod[i-1] > 0 {
			decayRates = append(decayRates, 1-avgByPeriod[i]/avgByPeriod[i-1])
		}
	}
	if len(decayRates) == 0 {
		return predictions
	}

	avgDecay := mean(decayRates)
	current := avgByPeriod[numPeriods-1]
	forecast := make([]float64, 0, 3)
	for month := 0; month < 3; month++ {
		current *= 1 - avgDecay
		forecast = append(forecast, round3(math.Max(0, current)))
	}
	predictions.PredictedNext3Months = forecast
	decay := round3(avgDecay)
	predictions.AvgMonthlyDecayRate = &decay

	if avgDecay < 0.5 {
		steady := round3(math.Max(0, avgByPeriod[numPeriods-1]*math.Pow(1-avgDecay, 12)))
		predictions.Estimated12Month = &steady
	}
	return predictions
}
