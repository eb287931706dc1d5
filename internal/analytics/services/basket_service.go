package services

import (
	"sort"

	"github.com/architect/commerce-analytics/internal/analytics/models"
	"github.com/architect/commerce-analytics/internal/common/errors"
	dataset "github.com/architect/commerce-analytics/internal/dataset/models"
)

// ========== MARKET BASKET ==========

// A basket is one customer's purchases on one day. Products are deduplicated
// within a basket, so a pair co-occurs at most once per basket and a
// product's count is the number of baskets containing it.

const topRuleCount = 20

type productPair struct {
	a, b string // a < b
}

type basketCounts struct {
	totalBaskets  int
	productCounts map[string]int
	pairCounts    map[productPair]int
	products      []string // distinct, in first-seen order
}

func countBaskets(ds *dataset.Dataset) basketCounts {
	counts := basketCounts{
		productCounts: make(map[string]int),
		pairCounts:    make(map[productPair]int),
	}

	// Rows are sorted by (customer, date), so baskets come out contiguous
	var curCustomer string
	var curDay string
	var basket []string
	flush := func() {
		if len(basket) == 0 {
			return
		}
		counts.totalBaskets++
		sort.Strings(basket)
		for i, p := range basket {
			if counts.productCounts[p] == 0 {
				counts.products = append(counts.products, p)
			}
			counts.productCounts[p]++
			for _, q := range basket[i+1:] {
				counts.pairCounts[productPair{p, q}]++
			}
		}
		basket = basket[:0]
	}

	seen := make(map[string]bool)
	for _, rec := range ds.Rows {
		day := rec.OrderDate.Format("2006-01-02")
		if rec.CustomerID != curCustomer || day != curDay {
			flush()
			curCustomer, curDay = rec.CustomerID, day
			for k := range seen {
				delete(seen, k)
			}
		}
		if !seen[rec.ProductName] {
			seen[rec.ProductName] = true
			basket = append(basket, rec.ProductName)
		}
	}
	flush()
	return counts
}

// associationRules derives directional rules passing both thresholds,
// sorted by lift then confidence, descending.
func associationRules(counts basketCounts, minSupport, minConfidence float64) []models.AssociationRule {
	rules := make([]models.AssociationRule, 0)
	total := float64(counts.totalBaskets)

	appendRule := func(antecedent, consequent string, co int) {
		support := float64(co) / total
		if support < minSupport {
			return
		}
		confidence := float64(co) / float64(counts.productCounts[antecedent])
		if confidence < minConfidence {
			return
		}
		lift := confidence / (float64(counts.productCounts[consequent]) / total)
		rules = append(rules, models.AssociationRule{
			Antecedent: antecedent,
			Consequent: consequent,
			Support:    round4(support),
			Confidence: round4(confidence),
			Lift:       round2(lift),
			Conviction: round2(1 / (1 - confidence + 0.001)),
		})
	}

	for pair, co := range counts.pairCounts {
		appendRule(pair.a, pair.b, co)
		appendRule(pair.b, pair.a, co)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Lift != rules[j].Lift {
			return rules[i].Lift > rules[j].Lift
		}
		if rules[i].Confidence != rules[j].Confidence {
			return rules[i].Confidence > rules[j].Confidence
		}
		if rules[i].Antecedent != rules[j].Antecedent {
			return rules[i].Antecedent < rules[j].Antecedent
		}
		return rules[i].Consequent < rules[j].Consequent
	})
	return rules
}

// MarketBasketAnalysis mines product association rules above the support and
// confidence thresholds. The affinity matrix is skipped when the catalog
// exceeds maxProducts, since it is quadratic in catalog size.
func MarketBasketAnalysis(ds *dataset.Dataset, minSupport, minConfidence float64, maxProducts int) (*models.BasketAnalysis, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	counts := countBaskets(ds)
	rules := associationRules(counts, minSupport, minConfidence)
	if len(rules) > topRuleCount {
		rules = rules[:topRuleCount]
	}

	popularity := make([]models.ProductCount, 0, len(counts.products))
	for _, p := range counts.products {
		popularity = append(popularity, models.ProductCount{Product: p, Count: counts.productCounts[p]})
	}
	sort.SliceStable(popularity, func(i, j int) bool {
		if popularity[i].Count != popularity[j].Count {
			return popularity[i].Count > popularity[j].Count
		}
		return popularity[i].Product < popularity[j].Product
	})

	analysis := &models.BasketAnalysis{
		Rules:             rules,
		ProductPopularity: popularity,
		TotalBaskets:      counts.totalBaskets,
		UniqueProducts:    len(counts.products),
	}

	if len(counts.products) <= maxProducts {
		analysis.AffinityMatrix = affinityMatrix(counts)
	}
	return analysis, nil
}

// affinityMatrix is row-normalized: cell(A,B) = co(A,B)/count(A), diagonal 1
func affinityMatrix(counts basketCounts) map[string]map[string]float64 {
	matrix := make(map[string]map[string]float64, len(counts.products))
	for _, a := range counts.products {
		row := make(map[string]float64, len(counts.products))
		for _, b := range counts.products {
			if a == b {
				row[b] = 1.0
				continue
			}
			pair := productPair{a, b}
			if b < a {
				pair = productPair{b, a}
			}
			row[b] = float64(counts.pairCounts[pair]) / float64(counts.productCounts[a])
		}
		matrix[a] = row
	}
	return matrix
}

// RecommendProducts suggests up to topN products a customer has not bought,
// scored by the summed confidence×lift of rules firing from their purchase
// history. Recommendations draw on the full rule set, not just the top
// rules reported by MarketBasketAnalysis.
func RecommendProducts(ds *dataset.Dataset, customerID string, minSupport, minConfidence float64, topN int) ([]models.ProductRecommendation, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.InsufficientData("dataset has no transactions")
	}

	owned := make(map[string]bool)
	for _, rec := range ds.Rows {
		if rec.CustomerID == customerID {
			owned[rec.ProductName] = true
		}
	}
	if len(owned) == 0 {
		return nil, errors.NotFound("customer")
	}

	counts := countBaskets(ds)
	scores := make(map[string]float64)
	for _, rule := range associationRules(counts, minSupport, minConfidence) {
		if owned[rule.Antecedent] && !owned[rule.Consequent] {
			scores[rule.Consequent] += rule.Confidence * rule.Lift
		}
	}

	recs := make([]models.ProductRecommendation, 0, len(scores))
	for product, score := range scores {
		recs = append(recs, models.ProductRecommendation{Product: product, Score: round4(score)})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Product < recs[j].Product
	})
	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs, nil
}
