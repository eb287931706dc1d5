package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/architect/commerce-analytics/internal/common/errors"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// ========== GEOGRAPHIC ANALYTICS ==========

func requireGeoData(ds *dataset.Dataset) error {
	if ds == nil || ds.Len() == 0 {
		return errors.InsufficientData("dataset has no transactions")
	}
	if !ds.HasGeoData {
		return errors.InsufficientData("dataset has no geographic columns")
	}
	return nil
}

// GetGeographicCoverage reports which countries, regions and cities the
// customer base spans. City counts are capped to the 20 busiest.
func GetGeographicCoverage(ds *dataset.Dataset) (*models.GeoCoverage, error) {
	if err := requireGeoData(ds); err != nil {
		return nil, err
	}

	countries := make(map[string]int)
	regions := make(map[string]int)
	cities := make(map[string]int)
	for _, rec := range ds.Rows {
		if rec.Country != "" {
			countries[rec.Country]++
		}
		if rec.Region != "" {
			regions[rec.Region]++
		}
		if rec.City != "" {
			cities[rec.City]++
		}
	}

	coverage := &models.GeoCoverage{}
	if len(countries) > 0 {
		coverage.Countries = levelCoverage(countries, 0)
	}
	if len(regions) > 0 {
		coverage.Regions = levelCoverage(regions, 0)
	}
	if len(cities) > 0 {
		coverage.Cities = levelCoverage(cities, 20)
	}
	return coverage, nil
}

// levelCoverage builds one level's summary; limit > 0 keeps only the top N
// counts while Total still reflects every distinct location.
func levelCoverage(counts map[string]int, limit int) *models.GeoLevelCoverage {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	kept := entries
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	keptMap := make(map[string]int, len(kept))
	for _, e := range kept {
		keptMap[e.name] = e.count
	}
	return &models.GeoLevelCoverage{
		Total:  len(counts),
		Counts: keptMap,
		Top:    entries[0].name,
	}
}

// locationOf picks the primary geographic level available on a record:
// country first, then region, then city.
func locationOf(rec dataset.TransactionRecord) string {
	switch {
	case rec.Country != "":
		return rec.Country
	case rec.Region != "":
		return rec.Region
	default:
		return rec.City
	}
}

// GetRegionalPerformance ranks locations by revenue with market share and a
// performance tier per location.
func GetRegionalPerformance(ds *dataset.Dataset) ([]models.RegionalPerformance, error) {
	if err := requireGeoData(ds); err != nil {
		return nil, err
	}

	type geoAgg struct {
		revenue   float64
		orders    int
		units     int
		customers map[string]bool
	}
	byLocation := make(map[string]*geoAgg)
	var totalRevenue float64
	for _, rec := range ds.Rows {
		loc := locationOf(rec)
		if loc == "" {
			continue
		}
		agg := byLocation[loc]
		if agg == nil {
			agg = &geoAgg{customers: make(map[string]bool)}
			byLocation[loc] = agg
		}
		agg.revenue += rec.TotalAmount
		agg.orders++
		agg.units += rec.Quantity
		agg.customers[rec.CustomerID] = true
		totalRevenue += rec.TotalAmount
	}
	if len(byLocation) == 0 {
		return nil, errors.InsufficientData("no locations present in dataset")
	}

	result := make([]models.RegionalPerformance, 0, len(byLocation))
	for loc, agg := range byLocation {
		customers := float64(len(agg.customers))
		share := round2(agg.revenue / totalRevenue * 100)
		result = append(result, models.RegionalPerformance{
			Location:           loc,
			TotalRevenue:       round2(agg.revenue),
			AvgOrderValue:      round2(agg.revenue / float64(agg.orders)),
			TotalOrders:        agg.orders,
			UniqueCustomers:    len(agg.customers),
			UnitsSold:          agg.units,
			RevenuePerCustomer: round2(agg.revenue / customers),
			OrdersPerCustomer:  round2(float64(agg.orders) / customers),
			MarketShare:        share,
			PerformanceTier:    performanceTier(share),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalRevenue != result[j].TotalRevenue {
			return result[i].TotalRevenue > result[j].TotalRevenue
		}
		return result[i].Location < result[j].Location
	})
	for i := range result {
		result[i].RevenueRank = i + 1
	}
	return result, nil
}

// performanceTier bins a market share percentage
func performanceTier(share float64) string {
	switch {
	case share <= 5:
		return models.TierEmerging
	case share <= 15:
		return models.TierGrowing
	case share <= 30:
		return models.TierStrong
	default:
		return models.TierDominant
	}
}

// Tercile labels for per-country customer segmentation
var (
	spendingSegmentLabels  = []string{"Low Spender", "Medium Spender", "High Spender"}
	frequencySegmentLabels = []string{"Occasional", "Regular", "Frequent"}
)

// GetGeographicCustomerSegments buckets each country's customers into
// spending and frequency terciles. Terciles are computed within the country,
// so a "High Spender" in a small market can sit below a "Low Spender" in a
// large one.
func GetGeographicCustomerSegments(ds *dataset.Dataset) (map[string][]models.GeoCustomerSegment, error) {
	if err := requireGeoData(ds); err != nil {
		return nil, err
	}

	type custAgg struct {
		spent  float64
		orders int
	}
	byCountry := make(map[string]map[string]*custAgg)
	customerOrder := make(map[string][]string)
	for _, rec := range ds.Rows {
		if rec.Country == "" {
			continue
		}
		customers := byCountry[rec.Country]
		if customers == nil {
			customers = make(map[string]*custAgg)
			byCountry[rec.Country] = customers
		}
		agg := customers[rec.CustomerID]
		if agg == nil {
			agg = &custAgg{}
			customers[rec.CustomerID] = agg
			customerOrder[rec.Country] = append(customerOrder[rec.Country], rec.CustomerID)
		}
		agg.spent += rec.TotalAmount
		agg.orders++
	}

	segments := make(map[string][]models.GeoCustomerSegment, len(byCountry))
	for country, customers := range byCountry {
		ids := customerOrder[country]
		spent := make([]float64, len(ids))
		freq := make([]float64, len(ids))
		for i, id := range ids {
			spent[i] = customers[id].spent
			freq[i] = float64(customers[id].orders)
		}
		spendBins := quantileScores(spent, 3)
		freqBins := quantileScores(freq, 3)

		result := make([]models.GeoCustomerSegment, len(ids))
		for i, id := range ids {
			result[i] = models.GeoCustomerSegment{
				CustomerID:       id,
				TotalSpent:       round2(customers[id].spent),
				OrderFrequency:   customers[id].orders,
				SpendingSegment:  spendingSegmentLabels[spendBins[i]-1],
				FrequencySegment: frequencySegmentLabels[freqBins[i]-1],
			}
		}
		segments[country] = result
	}
	return segments, nil
}

// AnalyzeGeographicTrends compares month-over-month growth, top products and
// peak months across countries.
func AnalyzeGeographicTrends(ds *dataset.Dataset) (*models.GeoTrends, error) {
	if err := requireGeoData(ds); err != nil {
		return nil, err
	}

	trends := &models.GeoTrends{}

	monthlyRevenue := make(map[string]map[int]float64)
	productRevenue := make(map[string]map[string]float64)
	monthOfYearRevenue := make(map[string]map[int]float64)
	for _, rec := range ds.Rows {
		country := rec.Country
		if country == "" {
			continue
		}
		if monthlyRevenue[country] == nil {
			monthlyRevenue[country] = make(map[int]float64)
			productRevenue[country] = make(map[string]float64)
			monthOfYearRevenue[country] = make(map[int]float64)
		}
		monthlyRevenue[country][monthIndex(rec.OrderDate)] += rec.TotalAmount
		productRevenue[country][rec.ProductName] += rec.TotalAmount
		monthOfYearRevenue[country][int(rec.OrderDate.Month())] += rec.TotalAmount
	}
	if len(monthlyRevenue) == 0 {
		return trends, nil
	}

	growthRates := make(map[string]float64)
	for country, months := range monthlyRevenue {
		keys := sortedKeys(months)
		if len(keys) < 2 {
			continue
		}
		rates := make([]float64, 0, len(keys)-1)
		for i := 1; i < len(keys); i++ {
			prev := months[keys[i-1]]
			if prev > 0 {
				rates = append(rates, (months[keys[i]]-prev)/prev*100)
			}
		}
		if len(rates) > 0 {
			growthRates[country] = round2(mean(rates))
		}
	}
	if len(growthRates) > 0 {
		trends.CountryGrowthRates = growthRates
		fastest := ""
		for country, rate := range growthRates {
			if fastest == "" || rate > growthRates[fastest] ||
				(rate == growthRates[fastest] && country < fastest) {
				fastest = country
			}
		}
		trends.FastestGrowingCountry = fastest
	}

	topProducts := make(map[string]string, len(productRevenue))
	for country, products := range productRevenue {
		best := ""
		for product, revenue := range products {
			if best == "" || revenue > products[best] ||
				(revenue == products[best] && product < best) {
				best = product
			}
		}
		topProducts[country] = best
	}
	trends.TopProductsByCountry = topProducts

	peakMonths := make(map[string]int, len(monthOfYearRevenue))
	for country, months := range monthOfYearRevenue {
		peak := 0
		for m := 1; m <= 12; m++ {
			if v, ok := months[m]; ok && (peak == 0 || v > months[peak]) {
				peak = m
			}
		}
		peakMonths[country] = peak
	}
	trends.PeakMonthsByCountry = peakMonths
	return trends, nil
}

// GetMarketPenetration spots expansion opportunities (high value per
// customer, few customers) and mature markets, plus an HHI concentration
// reading over customer share.
func GetMarketPenetration(ds *dataset.Dataset) (*models.MarketPenetration, error) {
	if err := requireGeoData(ds); err != nil {
		return nil, err
	}

	type countryAgg struct {
		revenue   float64
		orders    int
		customers map[string]bool
	}
	byCountry := make(map[string]*countryAgg)
	for _, rec := range ds.Rows {
		if rec.Country == "" {
			continue
		}
		agg := byCountry[rec.Country]
		if agg == nil {
			agg = &countryAgg{customers: make(map[string]bool)}
			byCountry[rec.Country] = agg
		}
		agg.revenue += rec.TotalAmount
		agg.orders++
		agg.customers[rec.CustomerID] = true
	}
	if len(byCountry) == 0 {
		return &models.MarketPenetration{}, nil
	}

	type countryScore struct {
		country        string
		customers      int
		expansionScore float64
	}
	scores := make([]countryScore, 0, len(byCountry))
	totalCustomers := 0
	for country, agg := range byCountry {
		customers := len(agg.customers)
		totalCustomers += customers
		avgRevenue := agg.revenue / float64(customers)
		scores = append(scores, countryScore{
			country:        country,
			customers:      customers,
			expansionScore: avgRevenue / float64(customers),
		})
	}

	byExpansion := make([]countryScore, len(scores))
	copy(byExpansion, scores)
	sort.Slice(byExpansion, func(i, j int) bool {
		if byExpansion[i].expansionScore != byExpansion[j].expansionScore {
			return byExpansion[i].expansionScore > byExpansion[j].expansionScore
		}
		return byExpansion[i].country < byExpansion[j].country
	})
	byCustomers := make([]countryScore, len(scores))
	copy(byCustomers, scores)
	sort.Slice(byCustomers, func(i, j int) bool {
		if byCustomers[i].customers != byCustomers[j].customers {
			return byCustomers[i].customers > byCustomers[j].customers
		}
		return byCustomers[i].country < byCustomers[j].country
	})

	topNames := func(sorted []countryScore, n int) []string {
		if len(sorted) > n {
			sorted = sorted[:n]
		}
		names := make([]string, len(sorted))
		for i, s := range sorted {
			names[i] = s.country
		}
		return names
	}

	hhi := 0.0
	for _, s := range scores {
		share := float64(s.customers) / float64(totalCustomers) * 100
		hhi += share * share
	}
	interpretation := "Unconcentrated"
	if hhi > 2500 {
		interpretation = "Highly Concentrated"
	} else if hhi > 1500 {
		interpretation = "Moderately Concentrated"
	}

	return &models.MarketPenetration{
		ExpansionOpportunities: topNames(byExpansion, 3),
		MatureMarkets:          topNames(byCustomers, 3),
		Concentration: &models.MarketConcentration{
			HHIScore:       round2(hhi),
			Interpretation: interpretation,
		},
	}, nil
}

// GetGeographicInsights derives up to eight plain-language observations from
// the regional rollups.
func GetGeographicInsights(ds *dataset.Dataset) ([]string, error) {
	if err := requireGeoData(ds); err != nil {
		return nil, err
	}

	insights := make([]string, 0, 8)

	performance, err := GetRegionalPerformance(ds)
	if err == nil && len(performance) > 0 {
		top := performance[0]
		insights = append(insights, fmt.Sprintf(
			"%s is your top market with %.1f%% market share and $%s revenue",
			top.Location, top.MarketShare, formatMoney(top.TotalRevenue)))

		highValue := performance[0]
		for _, p := range performance[1:] {
			if p.RevenuePerCustomer > highValue.RevenuePerCustomer {
				highValue = p
			}
		}
		insights = append(insights, fmt.Sprintf(
			"%s has the highest customer value at $%.0f per customer",
			highValue.Location, highValue.RevenuePerCustomer))
	}

	penetration, err := GetMarketPenetration(ds)
	if err == nil && len(penetration.ExpansionOpportunities) > 0 {
		markets := penetration.ExpansionOpportunities
		if len(markets) > 2 {
			markets = markets[:2]
		}
		insights = append(insights, fmt.Sprintf(
			"Consider expansion focus on %s - high value, low penetration markets",
			strings.Join(markets, ", ")))
	}

	trends, err := AnalyzeGeographicTrends(ds)
	if err == nil {
		if len(trends.TopProductsByCountry) > 0 {
			distinct := make(map[string]bool)
			for _, p := range trends.TopProductsByCountry {
				distinct[p] = true
			}
			if len(distinct) > 1 {
				insights = append(insights, "Regional product preferences vary - consider localized inventory and marketing strategies")
			} else {
				insights = append(insights, "Product preferences are consistent across regions - standardized approach may work well")
			}
		}
		if len(trends.PeakMonthsByCountry) > 0 {
			distinct := make(map[int]bool)
			for _, m := range trends.PeakMonthsByCountry {
				distinct[m] = true
			}
			if len(distinct) > 1 {
				insights = append(insights, "Peak seasons vary by region - implement region-specific promotional calendars")
			}
		}
		if penetration != nil && penetration.Concentration != nil {
			if penetration.Concentration.HHIScore > 2500 {
				insights = append(insights, "Market is highly concentrated - diversification into new regions recommended")
			} else if penetration.Concentration.HHIScore < 1500 {
				insights = append(insights, "Market is well-diversified across regions - maintain balanced growth strategy")
			}
		}
		if trends.FastestGrowingCountry != "" {
			insights = append(insights, fmt.Sprintf(
				"%s shows strongest growth momentum - prioritize investment and expansion there",
				trends.FastestGrowingCountry))
		}
	}

	if len(insights) == 0 {
		insights = append(insights, "Geographic analysis complete - monitor regional performance trends for optimization opportunities")
	}
	if len(insights) > 8 {
		insights = insights[:8]
	}
	return insights, nil
}

// GetLocationRecommendations pairs each location with tier and value based
// action items.
func GetLocationRecommendations(ds *dataset.Dataset) (map[string][]string, error) {
	performance, err := GetRegionalPerformance(ds)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(performance))
	for i, p := range performance {
		values[i] = p.RevenuePerCustomer
	}
	medianValue := medianOf(values)

	recommendations := make(map[string][]string, len(performance))
	for _, p := range performance {
		recs := make([]string, 0, 3)
		switch p.PerformanceTier {
		case models.TierDominant:
			recs = append(recs,
				"Maintain market leadership through premium service and customer retention",
				"Consider this region as a testing ground for new products")
		case models.TierStrong:
			recs = append(recs,
				"Invest in growth initiatives to capture larger market share",
				"Expand customer acquisition efforts")
		case models.TierGrowing:
			recs = append(recs,
				"Focus on customer education and brand awareness",
				"Optimize pricing strategy for market conditions")
		default:
			recs = append(recs,
				"Evaluate market potential and entry barriers",
				"Consider partnerships or local market expertise")
		}
		if p.RevenuePerCustomer > medianValue {
			recs = append(recs, "Leverage high customer value with premium offerings")
		} else {
			recs = append(recs, "Develop value-oriented product bundles")
		}
		recommendations[p.Location] = recs
	}
	return recommendations, nil
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
