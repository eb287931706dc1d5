package services

import (
	"math"
	"sort"
	"time"
)

// Shared numeric helpers for the analytics engines. Every ranking operation
// that feeds a tie-break-sensitive result uses a stable sort so equal values
// keep their first-seen order.

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev uses the sample (n-1) denominator; fewer than two values have no
// measurable spread.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// pearson computes the correlation coefficient of two equal-length series.
// Zero-variance input yields 0.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// quantileScores buckets values into q equal-population bins by rank and
// returns a 1-based bin index per input position. Ties are broken by input
// order ("first" tie-break): the earlier value gets the lower rank. When
// fewer values than bins exist the same formula applies and upper bins stay
// empty, so thin datasets degrade instead of failing.
func quantileScores(values []float64, q int) []int {
	n := len(values)
	scores := make([]int, n)
	if n == 0 {
		return scores
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	for rank, idx := range order {
		// rank is 0-based; bins are equal population ±1
		scores[idx] = rank*q/n + 1
	}
	return scores
}

// daysBetween returns whole days from a to b
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// monthIndex maps a date onto a linear month axis for period arithmetic
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// monthLabel renders a calendar month as "2006-01"
func monthLabel(index int) string {
	return time.Date(index/12, time.Month(index%12+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
