package services

import (
	"fmt"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/architect/commerce-analytics/internal/common/errors"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// ========== CUSTOMER JOURNEY ==========

// stageOrder fixes iteration order over lifecycle stages for deterministic
// metric and insight output.
var stageOrder = []string{
	models.StageNew,
	models.StageDeveloping,
	models.StageLoyal,
	models.StageInactive,
	models.StageRegular,
}

// classifyStage assigns a lifecycle stage; rules apply in precedence order
func classifyStage(cs customerStats, referenceDate func() (sinceFirst, sinceLast int)) string {
	sinceFirst, sinceLast := referenceDate()
	totalSpent := cs.Monetary

	switch {
	case sinceFirst <= 30:
		return models.StageNew
	case sinceFirst <= 90 && cs.Frequency >= 2:
		return models.StageDeveloping
	case cs.Frequency >= 5 && totalSpent > cs.AvgOrderValue*2:
		return models.StageLoyal
	case sinceLast > 90:
		return models.StageInactive
	default:
		return models.StageRegular
	}
}

// MapCustomerJourneys builds per-customer lifecycle journeys, stage rollups,
// behavioral pattern counts and the lifecycle conversion funnel.
func MapCustomerJourneys(ds *dataset.Dataset) (*models.JourneyAnalysis, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	stats := aggregateCustomers(ds)
	journeys := make(map[string]models.CustomerJourney, len(stats))
	stageDistribution := make(map[string]int)
	patterns := models.JourneyPatterns{}

	for _, cs := range stats {
		journeyLength := daysBetween(cs.FirstPurchase, cs.LastPurchase)
		lengthDivisor := journeyLength
		if lengthDivisor < 1 {
			lengthDivisor = 1
		}
		orderFreq := round2(float64(cs.Frequency) / float64(lengthDivisor) * 30)

		unique := make(map[string]bool, len(cs.Products))
		for _, p := range cs.Products {
			unique[p] = true
		}
		diversity := round2(float64(len(unique)) / float64(cs.Frequency))

		volatility := 0.0
		if cs.AvgOrderValue > 0 {
			volatility = round2(stdDev(cs.OrderValues) / cs.AvgOrderValue)
		}

		stage := classifyStage(cs, func() (int, int) {
			return daysBetween(cs.FirstPurchase, ds.ReferenceDate),
				daysBetween(cs.LastPurchase, ds.ReferenceDate)
		})

		journey := models.CustomerJourney{
			CustomerID:          cs.CustomerID,
			CurrentStage:        stage,
			JourneyLengthDays:   journeyLength,
			TotalTouchpoints:    cs.Frequency,
			OrderFrequency:      orderFreq,
			UniqueProducts:      len(unique),
			ProductDiversity:    diversity,
			AvgOrderValue:       cs.AvgOrderValue,
			ValueVolatility:     volatility,
			TotalCLV:            cs.Monetary,
			FirstPurchase:       cs.FirstPurchase,
			LastPurchase:        cs.LastPurchase,
			ProductSequence:     firstN(cs.Products, 10),
			SpendingProgression: firstNFloats(cs.OrderValues, 10),
		}
		journeys[cs.CustomerID] = journey
		stageDistribution[stage]++
		countPattern(&patterns, journey)
	}

	stageMetrics := make(map[string]models.StageMetrics)
	for _, stage := range stageOrder {
		if stageDistribution[stage] == 0 {
			continue
		}
		var lengths, touchpoints, clvs, freqs, diversities []float64
		for _, j := range journeys {
			if j.CurrentStage != stage {
				continue
			}
			lengths = append(lengths, float64(j.JourneyLengthDays))
			touchpoints = append(touchpoints, float64(j.TotalTouchpoints))
			clvs = append(clvs, j.TotalCLV)
			freqs = append(freqs, j.OrderFrequency)
			diversities = append(diversities, j.ProductDiversity)
		}
		stageMetrics[stage] = models.StageMetrics{
			Count:               stageDistribution[stage],
			AvgJourneyLength:    round2(mean(lengths)),
			AvgTouchpoints:      round2(mean(touchpoints)),
			AvgCLV:              round2(mean(clvs)),
			AvgOrderFrequency:   round2(mean(freqs)),
			AvgProductDiversity: round2(mean(diversities)),
		}
	}

	return &models.JourneyAnalysis{
		Journeys:          journeys,
		StageDistribution: stageDistribution,
		StageMetrics:      stageMetrics,
		Patterns:          patterns,
		Conversion:        conversionMetrics(stats),
		Insights:          journeyInsights(stageMetrics, patterns),
		TotalCustomers:    len(journeys),
	}, nil
}

// countPattern assigns a journey to its first matching behavioral pattern
func countPattern(p *models.JourneyPatterns, j models.CustomerJourney) {
	switch {
	case j.CurrentStage == models.StageLoyal && j.JourneyLengthDays <= 60:
		p.QuickConverters++
	case j.JourneyLengthDays > 180 && j.TotalTouchpoints >= 5:
		p.GradualBuilders++
	case len(j.SpendingProgression) > 0 && j.SpendingProgression[0] > j.AvgOrderValue*1.5:
		p.HighValueStarters++
	case j.ProductDiversity > 0.7:
		p.ProductExplorers++
	case j.ValueVolatility < 0.5 && j.OrderFrequency > 1:
		p.ConsistentBuyers++
	case j.CurrentStage == models.StageInactive:
		p.AtRiskPatterns++
	}
}

// conversionMetrics reports the lifecycle funnel. Its staging is simpler
// than the journey stages: new / one_time / repeat / loyal by order count
// and active span alone.
func conversionMetrics(stats []customerStats) models.ConversionMetrics {
	var newCount, oneTime, repeat, loyal int
	for _, cs := range stats {
		daysActive := daysBetween(cs.FirstPurchase, cs.LastPurchase)
		switch {
		case daysActive <= 30:
			newCount++
		case cs.Frequency >= 5:
			loyal++
		case cs.Frequency >= 2:
			repeat++
		default:
			oneTime++
		}
	}

	total := float64(len(stats))
	repeatDenom := repeat
	if repeatDenom < 1 {
		repeatDenom = 1
	}
	newDenom := newCount
	if newDenom < 1 {
		newDenom = 1
	}
	return models.ConversionMetrics{
		NewToRepeatRate:        round2(float64(repeat+loyal) / total * 100),
		RepeatToLoyalRate:      round2(float64(loyal) / float64(repeatDenom) * 100),
		OneTimeCustomerRate:    round2(float64(oneTime) / total * 100),
		CustomerLifecycleRatio: round2(float64(loyal) / float64(newDenom)),
	}
}

func journeyInsights(stageMetrics map[string]models.StageMetrics, patterns models.JourneyPatterns) []string {
	insights := make([]string, 0, 6)

	total := 0
	for _, m := range stageMetrics {
		total += m.Count
	}
	if total == 0 {
		return insights
	}

	for _, stage := range stageOrder {
		m, ok := stageMetrics[stage]
		if !ok {
			continue
		}
		pct := float64(m.Count) / float64(total) * 100
		if pct > 40 {
			insights = append(insights, fmt.Sprintf(
				"%s customers represent %.1f%% of your base - consider stage-specific strategies", stage, pct))
		}
	}

	if patterns.QuickConverters > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d customers converted quickly - identify and replicate success factors", patterns.QuickConverters))
	}
	if patterns.AtRiskPatterns > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d customers show at-risk patterns - implement retention campaigns", patterns.AtRiskPatterns))
	}
	if patterns.ProductExplorers > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d customers explore many products - leverage for cross-selling", patterns.ProductExplorers))
	}

	loyal, hasLoyal := stageMetrics[models.StageLoyal]
	newStage, hasNew := stageMetrics[models.StageNew]
	if hasLoyal && hasNew && newStage.AvgCLV > 0 && loyal.AvgCLV > newStage.AvgCLV*3 {
		insights = append(insights, fmt.Sprintf(
			"Loyal customers generate %.1fx more value - focus on loyalty conversion", loyal.AvgCLV/newStage.AvgCLV))
	}

	if len(insights) > 6 {
		insights = insights[:6]
	}
	return insights
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		values = values[:n]
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func firstNFloats(values []float64, n int) []float64 {
	if len(values) > n {
		values = values[:n]
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
