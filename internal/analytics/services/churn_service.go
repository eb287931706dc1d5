package services

import (
	"sort"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// ========== CHURN RISK ==========

// Composite weights for the raw churn score. They sum to 1 over six
// behavioral indicators.
const (
	churnWeightRecency     = 0.25
	churnWeightFrequency   = 0.20
	churnWeightMonetary    = 0.20
	churnWeightOrderFreq   = 0.15
	churnWeightConsistency = 0.10
	churnWeightDiversity   = 0.10
)

// IdentifyChurnRisk scores every customer's likelihood of churning from
// their RFM profile and order behavior, normalized to [0,100]. Results come
// back sorted by descending risk.
func IdentifyChurnRisk(ds *dataset.Dataset) ([]models.ChurnRecord, error) {
	rfm, err := CalculateRFM(ds)
	if err != nil {
		return nil, err
	}

	stats := aggregateCustomers(ds)
	behavior := make(map[string]customerStats, len(stats))
	for _, cs := range stats {
		behavior[cs.CustomerID] = cs
	}

	records := make([]models.ChurnRecord, len(rfm))
	raw := make([]float64, len(rfm))
	for i, row := range rfm {
		cs := behavior[row.CustomerID]

		daysSinceFirst := daysBetween(cs.FirstPurchase, ds.ReferenceDate)
		if daysSinceFirst == 0 {
			daysSinceFirst = 1
		}
		orderFreq := float64(cs.Frequency) / float64(daysSinceFirst) * 30

		// A single order has no spread; fall back to 1.0
		consistency := 1.0
		if cs.Frequency > 1 && cs.AvgOrderValue > 0 {
			consistency = stdDev(cs.OrderValues) / cs.AvgOrderValue
		}

		unique := make(map[string]bool, len(cs.Products))
		for _, p := range cs.Products {
			unique[p] = true
		}
		diversity := float64(len(unique)) / float64(cs.Frequency)

		raw[i] = float64(row.Recency)*churnWeightRecency +
			float64(6-row.FScore)*8*churnWeightFrequency +
			float64(6-row.MScore)*8*churnWeightMonetary +
			1/(orderFreq+0.1)*100*churnWeightOrderFreq +
			consistency*20*churnWeightConsistency +
			(1-diversity)*50*churnWeightDiversity

		records[i] = models.ChurnRecord{
			CustomerID:          row.CustomerID,
			Recency:             row.Recency,
			Frequency:           row.Frequency,
			Monetary:            row.Monetary,
			Segment:             row.Segment,
			OrderFrequency:      round2(orderFreq),
			PurchaseConsistency: round2(consistency),
			PurchaseDiversity:   round2(diversity),
		}
	}

	lo, hi := raw[0], raw[0]
	for _, v := range raw {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for i := range records {
		score := 50.0
		if hi > lo {
			score = (raw[i] - lo) / (hi - lo) * 100
		}
		records[i].ChurnScore = round2(score)
		records[i].RiskLevel = riskLevel(score)
		records[i].ChurnProbability = round3(score/100*0.8 + 0.1)
		records[i].RetentionStrategy = retentionStrategy(records[i].RiskLevel)
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].ChurnScore > records[b].ChurnScore
	})
	return records, nil
}

// riskLevel bins a normalized score, lowest bound inclusive
func riskLevel(score float64) string {
	switch {
	case score <= 25:
		return models.RiskLow
	case score <= 50:
		return models.RiskMedium
	case score <= 75:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

func retentionStrategy(risk string) string {
	switch risk {
	case models.RiskCritical:
		return "Immediate intervention: Personal outreach + special offers"
	case models.RiskHigh:
		return "Urgent: Targeted discounts + engagement campaigns"
	case models.RiskMedium:
		return "Monitor closely + personalized recommendations"
	default:
		return "Maintain: Regular marketing + loyalty programs"
	}
}
