package services

import (
	"fmt"
	"math"
	"time"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/architect/commerce-analytics/internal/common/errors"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// ========== RFM SEGMENTATION ==========

// segmentPattern maps a set of RFM score strings to a business segment.
// Patterns are evaluated in order and the first match wins, so a score
// listed under two segments resolves to the earlier one.
type segmentPattern struct {
	scores  []string
	segment string
}

var segmentPatterns = []segmentPattern{
	{[]string{"555", "554", "544", "545", "454", "455", "445"}, models.SegmentChampions},
	{[]string{"543", "444", "435", "355", "354", "345", "344", "335"}, models.SegmentLoyalCustomers},
	{[]string{"553", "551", "552", "541", "542", "533", "532", "531", "452", "451"}, models.SegmentPotentialLoyalists},
	{[]string{"512", "511", "422", "421", "412", "411", "311"}, models.SegmentNewCustomers},
	{[]string{"155", "154", "144", "214", "215", "115", "114"}, models.SegmentAtRisk},
	{[]string{"155", "254", "245", "253", "244", "243", "234", "343", "334"}, models.SegmentCannotLoseThem},
	{[]string{"231", "241", "251", "233", "232", "223", "222"}, models.SegmentHibernating},
}

// CategorizeRFM maps an "RFM" score string onto a business segment.
// Unlisted combinations fall through to Lost Customers.
func CategorizeRFM(rfmScore string) string {
	for _, p := range segmentPatterns {
		for _, s := range p.scores {
			if s == rfmScore {
				return p.segment
			}
		}
	}
	return models.SegmentLostCustomers
}

// CalculateRFM scores every customer in the dataset. Recency is measured
// against the dataset reference date (its newest order date). Scores are
// rank-based quintiles: recent/frequent/big spenders score 5.
func CalculateRFM(ds *dataset.Dataset) ([]models.CustomerRFM, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}
	if cached, ok := rfmCache.get(ds.ID); ok {
		return cached, nil
	}

	stats := aggregateCustomers(ds)
	n := len(stats)

	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, cs := range stats {
		recency[i] = float64(daysBetween(cs.LastPurchase, ds.ReferenceDate))
		frequency[i] = float64(cs.Frequency)
		monetary[i] = cs.Monetary
	}

	// Recency quintiles invert: the smallest recency lands in bin 1 and
	// must come out as score 5.
	rBins := quantileScores(recency, 5)
	fBins := quantileScores(frequency, 5)
	mBins := quantileScores(monetary, 5)

	result := make([]models.CustomerRFM, n)
	for i, cs := range stats {
		r := 6 - rBins[i]
		f := fBins[i]
		m := mBins[i]
		score := fmt.Sprintf("%d%d%d", r, f, m)
		result[i] = models.CustomerRFM{
			CustomerID:    cs.CustomerID,
			LastOrderDate: cs.LastPurchase,
			Frequency:     cs.Frequency,
			Monetary:      cs.Monetary,
			AvgOrderValue: cs.AvgOrderValue,
			Recency:       int(recency[i]),
			RScore:        r,
			FScore:        f,
			MScore:        m,
			RFMScore:      score,
			Segment:       CategorizeRFM(score),
		}
	}

	rfmCache.put(ds.ID, result)
	return result, nil
}

// GetCustomerSegments rolls the RFM rows up into per-segment summaries
func GetCustomerSegments(ds *dataset.Dataset) (map[string]models.SegmentSummary, error) {
	rfm, err := CalculateRFM(ds)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]models.SegmentSummary)
	for _, row := range rfm {
		s := summary[row.Segment]
		s.Count++
		s.Revenue += row.Monetary
		s.AvgRecency += float64(row.Recency)
		s.AvgFrequency += float64(row.Frequency)
		s.AvgMonetary += row.Monetary
		summary[row.Segment] = s
	}
	for segment, s := range summary {
		c := float64(s.Count)
		s.Revenue = round2(s.Revenue)
		s.AvgRecency = round2(s.AvgRecency / c)
		s.AvgFrequency = round2(s.AvgFrequency / c)
		s.AvgMonetary = round2(s.AvgMonetary / c)
		summary[segment] = s
	}
	return summary, nil
}

// ========== PREDICTIVE INSIGHTS ==========

// GetPredictiveInsights derives up to eight plain-language observations from
// the segment summaries and recent order behavior.
func GetPredictiveInsights(ds *dataset.Dataset) ([]string, error) {
	segments, err := GetCustomerSegments(ds)
	if err != nil {
		return nil, err
	}

	insights := make([]string, 0, 8)

	totalCustomers := 0
	for _, s := range segments {
		totalCustomers += s.Count
	}
	if totalCustomers == 0 {
		return []string{"Insufficient data for predictive insights"}, nil
	}

	if champions, ok := segments[models.SegmentChampions]; ok && champions.Count > 0 {
		pct := float64(champions.Count) / float64(totalCustomers) * 100
		insights = append(insights, fmt.Sprintf(
			"Champion customers represent %.1f%% of your base but generate $%s in revenue",
			pct, formatMoney(champions.Revenue)))
	}
	if atRisk, ok := segments[models.SegmentAtRisk]; ok && atRisk.Count > 0 {
		pct := float64(atRisk.Count) / float64(totalCustomers) * 100
		insights = append(insights, fmt.Sprintf(
			"%.1f%% of customers are at risk of churning, representing potential revenue loss of $%s",
			pct, formatMoney(atRisk.Revenue)))
	}
	if lost, ok := segments[models.SegmentLostCustomers]; ok && lost.Count > 0 {
		pct := float64(lost.Count) / float64(totalCustomers) * 100
		insights = append(insights, fmt.Sprintf(
			"%.1f%% of customers are already lost, representing $%s in historical value",
			pct, formatMoney(lost.Revenue)))
	}

	// Order value momentum over the trailing 30 days
	var allSum float64
	var recentSum float64
	var recentCount int
	cutoff := ds.ReferenceDate.AddDate(0, 0, -30)
	for _, rec := range ds.Rows {
		allSum += rec.TotalAmount
		if !rec.OrderDate.Before(cutoff) {
			recentSum += rec.TotalAmount
			recentCount++
		}
	}
	avgOrderValue := allSum / float64(ds.Len())
	if recentCount > 0 && avgOrderValue > 0 {
		recentAOV := recentSum / float64(recentCount)
		change := (recentAOV - avgOrderValue) / avgOrderValue * 100
		if change > 5 {
			insights = append(insights, fmt.Sprintf(
				"Average order value has increased by %.1f%% in the last 30 days", change))
		} else if change < -5 {
			insights = append(insights, fmt.Sprintf(
				"Average order value has decreased by %.1f%% in the last 30 days - consider promotional strategies",
				math.Abs(change)))
		}
	}

	// Repeat purchases: every order beyond a customer's first
	repeatOrders := ds.Len() - totalCustomers
	repeatRate := float64(repeatOrders) / float64(totalCustomers) * 100
	if repeatRate < 20 {
		insights = append(insights, "Low repeat purchase rate detected - focus on customer retention strategies")
	} else if repeatRate > 60 {
		insights = append(insights, "High customer loyalty detected - leverage this for referral programs")
	}

	monthlySales := make(map[time.Month]float64)
	for _, rec := range ds.Rows {
		monthlySales[rec.OrderDate.Month()] += rec.TotalAmount
	}
	peakMonth := time.January
	peakValue := math.Inf(-1)
	for m := time.January; m <= time.December; m++ {
		if v, ok := monthlySales[m]; ok && v > peakValue {
			peakMonth, peakValue = m, v
		}
	}
	insights = append(insights, fmt.Sprintf(
		"Peak sales month is %d - plan inventory and marketing accordingly", int(peakMonth)))

	if len(insights) == 0 {
		insights = append(insights, "Continue monitoring customer behavior patterns for emerging trends")
	}
	if len(insights) > 8 {
		insights = insights[:8]
	}
	return insights, nil
}

// formatMoney renders a dollar amount with thousands separators and no cents
func formatMoney(v float64) string {
	whole := int64(math.Round(v))
	sign := ""
	if whole < 0 {
		sign = "-"
		whole = -whole
	}
	s := fmt.Sprintf("%d", whole)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}
