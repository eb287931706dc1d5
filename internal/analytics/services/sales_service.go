package services

import (
	"math"
	"sort"
	"time"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/architect/commerce-analytics/internal/common/errors"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// ========== SALES PERFORMANCE ==========

// GetSalesMetrics computes the headline performance numbers for a dataset
func GetSalesMetrics(ds *dataset.Dataset) (*models.SalesMetrics, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	var totalRevenue float64
	customerRevenue := make(map[string]float64)
	customerOrders := make(map[string]int)
	dailyRevenue := make(map[string]float64)
	monthly := make(map[int]float64)
	for _, rec := range ds.Rows {
		totalRevenue += rec.TotalAmount
		customerRevenue[rec.CustomerID] += rec.TotalAmount
		customerOrders[rec.CustomerID]++
		dailyRevenue[rec.OrderDate.Format("2006-01-02")] += rec.TotalAmount
		monthly[monthIndex(rec.OrderDate)] += rec.TotalAmount
	}

	totalCustomers := len(customerOrders)
	totalOrders := ds.Len()

	repeatCustomers := 0
	for _, count := range customerOrders {
		if count > 1 {
			repeatCustomers++
		}
	}

	// Month-over-month growth of the two most recent months
	months := sortedKeys(monthly)
	growthRate := 0.0
	if len(months) >= 2 {
		prev := monthly[months[len(months)-2]]
		cur := monthly[months[len(months)-1]]
		if prev > 0 {
			growthRate = (cur - prev) / prev * 100
		}
	}

	daily := make([]float64, 0, len(dailyRevenue))
	for _, v := range dailyRevenue {
		daily = append(daily, v)
	}

	revenues := make([]float64, 0, totalCustomers)
	for _, v := range customerRevenue {
		revenues = append(revenues, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(revenues)))
	topShare := 0.0
	if totalRevenue > 0 {
		topSum := 0.0
		for i := 0; i < len(revenues) && i < 10; i++ {
			topSum += revenues[i]
		}
		topShare = topSum / totalRevenue * 100
	}

	return &models.SalesMetrics{
		TotalRevenue:       round2(totalRevenue),
		TotalCustomers:     totalCustomers,
		TotalOrders:        totalOrders,
		AvgOrderValue:      round2(totalRevenue / float64(totalOrders)),
		RevenuePerCustomer: round2(totalRevenue / float64(totalCustomers)),
		RepeatCustomerRate: round2(float64(repeatCustomers) / float64(totalCustomers) * 100),
		AvgOrderFrequency:  round2(float64(totalOrders) / float64(totalCustomers)),
		GrowthRate:         round2(growthRate),
		RevenueVolatility:  round2(stdDev(daily)),
		TopCustomersShare:  round2(topShare),
	}, nil
}

// GetMonthlyTrends rolls sales up per calendar month in chronological order
func GetMonthlyTrends(ds *dataset.Dataset) ([]models.MonthlyTrend, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	type monthAgg struct {
		revenue   float64
		orders    int
		units     int
		customers map[string]bool
	}
	byMonth := make(map[int]*monthAgg)
	for _, rec := range ds.Rows {
		m := monthIndex(rec.OrderDate)
		agg := byMonth[m]
		if agg == nil {
			agg = &monthAgg{customers: make(map[string]bool)}
			byMonth[m] = agg
		}
		agg.revenue += rec.TotalAmount
		agg.orders++
		agg.units += rec.Quantity
		agg.customers[rec.CustomerID] = true
	}

	months := sortedKeys(byMonth)
	trends := make([]models.MonthlyTrend, len(months))
	for i, m := range months {
		agg := byMonth[m]
		trend := models.MonthlyTrend{
			Month:              monthLabel(m),
			Revenue:            round2(agg.revenue),
			AvgOrderValue:      round2(agg.revenue / float64(agg.orders)),
			Orders:             agg.orders,
			Customers:          len(agg.customers),
			UnitsSold:          agg.units,
			RevenuePerCustomer: round2(agg.revenue / float64(len(agg.customers))),
		}
		if i > 0 {
			prev := trends[i-1]
			if prev.Revenue > 0 {
				trend.RevenueGrowth = round2((trend.Revenue - prev.Revenue) / prev.Revenue * 100)
			}
			if prev.Customers > 0 {
				trend.CustomerGrowth = round2(float64(trend.Customers-prev.Customers) / float64(prev.Customers) * 100)
			}
		}
		// 3-month trailing moving average, shorter at the series head
		windowStart := i - 2
		if windowStart < 0 {
			windowStart = 0
		}
		windowSum := 0.0
		for j := windowStart; j <= i; j++ {
			if j == i {
				windowSum += trend.Revenue
			} else {
				windowSum += trends[j].Revenue
			}
		}
		trend.MovingAvgRevenue = round2(windowSum / float64(i-windowStart+1))
		trends[i] = trend
	}
	return trends, nil
}

// GetProductPerformance ranks products by revenue with share and cumulative
// share percentages.
func GetProductPerformance(ds *dataset.Dataset) ([]models.ProductPerformance, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	type productAgg struct {
		revenue   float64
		orders    int
		units     int
		customers map[string]bool
	}
	byProduct := make(map[string]*productAgg)
	order := make([]string, 0)
	var totalRevenue float64
	for _, rec := range ds.Rows {
		agg := byProduct[rec.ProductName]
		if agg == nil {
			agg = &productAgg{customers: make(map[string]bool)}
			byProduct[rec.ProductName] = agg
			order = append(order, rec.ProductName)
		}
		agg.revenue += rec.TotalAmount
		agg.orders++
		agg.units += rec.Quantity
		agg.customers[rec.CustomerID] = true
		totalRevenue += rec.TotalAmount
	}

	result := make([]models.ProductPerformance, 0, len(byProduct))
	for _, name := range order {
		agg := byProduct[name]
		result = append(result, models.ProductPerformance{
			Product:            name,
			Revenue:            round2(agg.revenue),
			AvgOrderValue:      round2(agg.revenue / float64(agg.orders)),
			Orders:             agg.orders,
			UnitsSold:          agg.units,
			UniqueCustomers:    len(agg.customers),
			RevenueShare:       round2(agg.revenue / totalRevenue * 100),
			RevenuePerCustomer: round2(agg.revenue / float64(len(agg.customers))),
			AvgUnitsPerOrder:   round2(float64(agg.units) / float64(agg.orders)),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Revenue > result[j].Revenue
	})
	cumulative := 0.0
	for i := range result {
		result[i].Rank = i + 1
		cumulative += result[i].RevenueShare
		result[i].CumulativeShare = round2(cumulative)
	}
	return result, nil
}

// GetSeasonalAnalysis breaks revenue down by calendar month, quarter and
// weekday. Seasonality strength is the coefficient of variation of monthly
// revenue.
func GetSeasonalAnalysis(ds *dataset.Dataset) (*models.SeasonalAnalysis, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	monthlySales := make(map[int]float64)
	quarterlySales := make(map[int]float64)
	weekdaySales := make(map[string]float64)
	for _, rec := range ds.Rows {
		month := int(rec.OrderDate.Month())
		monthlySales[month] += rec.TotalAmount
		quarterlySales[(month-1)/3+1] += rec.TotalAmount
		weekdaySales[rec.OrderDate.Weekday().String()] += rec.TotalAmount
	}
	for k, v := range monthlySales {
		monthlySales[k] = round2(v)
	}
	for k, v := range quarterlySales {
		quarterlySales[k] = round2(v)
	}
	for k, v := range weekdaySales {
		weekdaySales[k] = round2(v)
	}

	peakMonth, lowMonth := 0, 0
	peakValue, lowValue := math.Inf(-1), math.Inf(1)
	for m := 1; m <= 12; m++ {
		v, ok := monthlySales[m]
		if !ok {
			continue
		}
		if v > peakValue {
			peakMonth, peakValue = m, v
		}
		if v < lowValue {
			lowMonth, lowValue = m, v
		}
	}

	peakQuarter := 0
	peakQuarterValue := math.Inf(-1)
	for q := 1; q <= 4; q++ {
		if v, ok := quarterlySales[q]; ok && v > peakQuarterValue {
			peakQuarter, peakQuarterValue = q, v
		}
	}

	peakDay := ""
	peakDayValue := math.Inf(-1)
	for _, d := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		if v, ok := weekdaySales[d.String()]; ok && v > peakDayValue {
			peakDay, peakDayValue = d.String(), v
		}
	}

	monthValues := make([]float64, 0, len(monthlySales))
	for _, v := range monthlySales {
		monthValues = append(monthValues, v)
	}
	strength := 0.0
	if m := mean(monthValues); m > 0 {
		strength = round3(stdDev(monthValues) / m)
	}

	return &models.SeasonalAnalysis{
		MonthlySales:        monthlySales,
		PeakMonth:           peakMonth,
		LowMonth:            lowMonth,
		QuarterlySales:      quarterlySales,
		PeakQuarter:         peakQuarter,
		WeekdaySales:        weekdaySales,
		PeakDay:             peakDay,
		SeasonalityStrength: strength,
	}, nil
}

// GetAcquisitionTrends counts first-time customers per calendar month
func GetAcquisitionTrends(ds *dataset.Dataset) ([]models.AcquisitionTrend, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	firstMonth := make(map[string]int)
	for _, rec := range ds.Rows {
		m := monthIndex(rec.OrderDate)
		if cur, ok := firstMonth[rec.CustomerID]; !ok || m < cur {
			firstMonth[rec.CustomerID] = m
		}
	}
	newByMonth := make(map[int]int)
	for _, m := range firstMonth {
		newByMonth[m]++
	}

	months := sortedKeys(newByMonth)
	trends := make([]models.AcquisitionTrend, len(months))
	cumulative := 0
	for i, m := range months {
		count := newByMonth[m]
		cumulative += count
		trend := models.AcquisitionTrend{
			Month:               monthLabel(m),
			NewCustomers:        count,
			CumulativeCustomers: cumulative,
		}
		if i > 0 && trends[i-1].NewCustomers > 0 {
			trend.GrowthRate = round2(float64(count-trends[i-1].NewCustomers) / float64(trends[i-1].NewCustomers) * 100)
		}
		windowStart := i - 2
		if windowStart < 0 {
			windowStart = 0
		}
		windowSum := 0.0
		for j := windowStart; j < i; j++ {
			windowSum += float64(trends[j].NewCustomers)
		}
		windowSum += float64(count)
		trend.MovingAvg = round2(windowSum / float64(i-windowStart+1))
		trends[i] = trend
	}
	return trends, nil
}

// GetTopCustomers ranks customers three ways (revenue, order count, recency)
// and returns the union, n per ranking, deduplicated. A customer qualifying
// under several rankings keeps the first ranking's label.
func GetTopCustomers(ds *dataset.Dataset, n int) ([]models.TopCustomer, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	stats := aggregateCustomers(ds)
	base := make([]models.TopCustomer, len(stats))
	for i, cs := range stats {
		lifespan := daysBetween(cs.FirstPurchase, cs.LastPurchase)
		base[i] = models.TopCustomer{
			CustomerID:         cs.CustomerID,
			TotalSpent:         cs.Monetary,
			AvgOrderValue:      cs.AvgOrderValue,
			OrderCount:         cs.Frequency,
			FirstOrder:         cs.FirstPurchase,
			LastOrder:          cs.LastPurchase,
			CustomerLifespan:   lifespan,
			DaysSinceLastOrder: daysBetween(cs.LastPurchase, ds.ReferenceDate),
			OrderFrequency:     round2(float64(cs.Frequency) / float64(lifespan+1) * 365),
		}
	}
	// Quantities need the raw rows, aggregateCustomers tracks values only
	qty := make(map[string]int)
	for _, rec := range ds.Rows {
		qty[rec.CustomerID] += rec.Quantity
	}
	for i := range base {
		base[i].TotalQuantity = qty[base[i].CustomerID]
	}

	pick := func(less func(a, b models.TopCustomer) bool) []models.TopCustomer {
		sorted := make([]models.TopCustomer, len(base))
		copy(sorted, base)
		sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
		if len(sorted) > n {
			sorted = sorted[:n]
		}
		return sorted
	}

	byRevenue := pick(func(a, b models.TopCustomer) bool { return a.TotalSpent > b.TotalSpent })
	byFrequency := pick(func(a, b models.TopCustomer) bool { return a.OrderCount > b.OrderCount })
	byRecency := pick(func(a, b models.TopCustomer) bool { return a.DaysSinceLastOrder < b.DaysSinceLastOrder })

	seen := make(map[string]bool)
	result := make([]models.TopCustomer, 0, 3*n)
	appendRanked := func(customers []models.TopCustomer, rankType string) {
		for _, c := range customers {
			if seen[c.CustomerID] {
				continue
			}
			seen[c.CustomerID] = true
			c.RankType = rankType
			result = append(result, c)
		}
	}
	appendRanked(byRevenue, "Revenue")
	appendRanked(byFrequency, "Frequency")
	appendRanked(byRecency, "Recency")
	return result, nil
}

// ForecastRevenue projects monthly revenue forward by compounding the
// average growth rate of the last three observed months.
func ForecastRevenue(ds *dataset.Dataset, periods int) (*models.RevenueForecast, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	monthly := make(map[int]float64)
	for _, rec := range ds.Rows {
		monthly[monthIndex(rec.OrderDate)] += rec.TotalAmount
	}
	months := sortedKeys(monthly)
	if len(months) < 3 {
		return nil, errors.InsufficientData("forecasting needs at least three months of sales")
	}

	tail := months[len(months)-3:]
	growthRates := make([]float64, 0, 2)
	for i := 1; i < len(tail); i++ {
		prev := monthly[tail[i-1]]
		if prev > 0 {
			growthRates = append(growthRates, (monthly[tail[i]]-prev)/prev)
		}
	}
	growth := mean(growthRates)

	forecast := make([]float64, 0, periods)
	current := monthly[months[len(months)-1]]
	for i := 0; i < periods; i++ {
		current *= 1 + growth
		forecast = append(forecast, round2(current))
	}

	confidence := "High"
	if math.Abs(growth) > 0.5 {
		confidence = "Low"
	} else if math.Abs(growth) > 0.2 {
		confidence = "Medium"
	}

	return &models.RevenueForecast{
		Forecast:   forecast,
		GrowthRate: round2(growth * 100),
		Confidence: confidence,
	}, nil
}

// priceRangeLabels name the five equal-width unit-price bands
var priceRangeLabels = []string{"Very Low", "Low", "Medium", "High", "Very High"}

// AnalyzePricingImpact relates unit prices to sales volume: performance per
// equal-width price band, a price-quantity correlation per product with more
// than five sales, and the correlation of monthly average price against
// monthly units sold.
func AnalyzePricingImpact(ds *dataset.Dataset) (*models.PricingImpact, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	for _, rec := range ds.Rows {
		if rec.UnitPrice < minPrice {
			minPrice = rec.UnitPrice
		}
		if rec.UnitPrice > maxPrice {
			maxPrice = rec.UnitPrice
		}
	}
	width := (maxPrice - minPrice) / float64(len(priceRangeLabels))

	ranges := make([]models.PriceRangePerformance, len(priceRangeLabels))
	rangeCustomers := make([]map[string]bool, len(priceRangeLabels))
	for i, label := range priceRangeLabels {
		ranges[i].Range = label
		rangeCustomers[i] = make(map[string]bool)
	}

	type productSeries struct {
		prices     []float64
		quantities []float64
	}
	byProduct := make(map[string]*productSeries)
	productOrder := make([]string, 0)
	monthPriceSum := make(map[int]float64)
	monthPriceCount := make(map[int]int)
	monthUnits := make(map[int]float64)
	for _, rec := range ds.Rows {
		bin := len(priceRangeLabels) / 2
		if width > 0 {
			bin = int((rec.UnitPrice - minPrice) / width)
			if bin >= len(priceRangeLabels) {
				bin = len(priceRangeLabels) - 1
			}
		}
		ranges[bin].UnitsSold += rec.Quantity
		ranges[bin].Revenue += rec.TotalAmount
		rangeCustomers[bin][rec.CustomerID] = true

		series := byProduct[rec.ProductName]
		if series == nil {
			series = &productSeries{}
			byProduct[rec.ProductName] = series
			productOrder = append(productOrder, rec.ProductName)
		}
		series.prices = append(series.prices, rec.UnitPrice)
		series.quantities = append(series.quantities, float64(rec.Quantity))

		m := monthIndex(rec.OrderDate)
		monthPriceSum[m] += rec.UnitPrice
		monthPriceCount[m]++
		monthUnits[m] += float64(rec.Quantity)
	}
	for i := range ranges {
		ranges[i].Revenue = round2(ranges[i].Revenue)
		ranges[i].UniqueCustomers = len(rangeCustomers[i])
	}

	elasticity := make(map[string]float64)
	for _, product := range productOrder {
		series := byProduct[product]
		if len(series.prices) > 5 {
			elasticity[product] = round3(pearson(series.prices, series.quantities))
		}
	}

	correlation := 0.0
	if months := sortedKeys(monthUnits); len(months) > 1 {
		avgPrices := make([]float64, len(months))
		units := make([]float64, len(months))
		for i, m := range months {
			avgPrices[i] = monthPriceSum[m] / float64(monthPriceCount[m])
			units[i] = monthUnits[m]
		}
		correlation = round3(pearson(avgPrices, units))
	}

	return &models.PricingImpact{
		PriceRangePerformance: ranges,
		PriceElasticity:       elasticity,
		PriceSalesCorrelation: correlation,
	}, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
