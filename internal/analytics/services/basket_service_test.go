package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hundredBasketFixture builds 100 single-day baskets: Alpha and Beta
// co-occur in 10, Alpha appears in 20 total, Beta in 15, and 75 filler
// baskets carry one unique product each.
func hundredBasketFixture() []order {
	orders := make([]order, 0, 200)
	n := 0
	basket := func(products ...string) {
		n++
		customer := fmt.Sprintf("U%03d", n)
		date := fmt.Sprintf("2024-%02d-%02d", (n%12)+1, (n%27)+1)
		for _, p := range products {
			orders = append(orders, order{customer: customer, date: date, product: p, amount: 10})
		}
	}
	for i := 0; i < 10; i++ {
		basket("Alpha", "Beta")
	}
	for i := 0; i < 10; i++ {
		basket("Alpha")
	}
	for i := 0; i < 5; i++ {
		basket("Beta")
	}
	for i := 0; i < 75; i++ {
		basket(fmt.Sprintf("Filler%02d", i))
	}
	return orders
}

func TestMarketBasketAnalysis_PairRuleMetrics(t *testing.T) {
	ds := newTestDataset("basket-100", hundredBasketFixture())
	analysis, err := MarketBasketAnalysis(ds, 0.01, 0.4, 500)
	require.NoError(t, err)

	assert.Equal(t, 100, analysis.TotalBaskets)
	assert.Equal(t, 77, analysis.UniqueProducts)
	require.Len(t, analysis.Rules, 2)

	// Equal lift, so the higher-confidence direction sorts first
	ba := analysis.Rules[0]
	assert.Equal(t, "Beta", ba.Antecedent)
	assert.Equal(t, "Alpha", ba.Consequent)
	assert.InDelta(t, 0.10, ba.Support, 1e-9)
	assert.InDelta(t, 0.6667, ba.Confidence, 1e-4)
	assert.InDelta(t, 3.33, ba.Lift, 1e-9)

	ab := analysis.Rules[1]
	assert.Equal(t, "Alpha", ab.Antecedent)
	assert.Equal(t, "Beta", ab.Consequent)
	assert.InDelta(t, 0.10, ab.Support, 1e-9)
	assert.InDelta(t, 0.50, ab.Confidence, 1e-9)
	assert.InDelta(t, 3.33, ab.Lift, 1e-9)
	assert.InDelta(t, 2.0, ab.Conviction, 0.01)

	// Pair support is symmetric even though confidence is not
	assert.Equal(t, ab.Support, ba.Support)
}

func TestMarketBasketAnalysis_ProductPopularity(t *testing.T) {
	ds := newTestDataset("basket-pop", hundredBasketFixture())
	analysis, err := MarketBasketAnalysis(ds, 0.01, 0.4, 500)
	require.NoError(t, err)

	require.NotEmpty(t, analysis.ProductPopularity)
	assert.Equal(t, "Alpha", analysis.ProductPopularity[0].Product)
	assert.Equal(t, 20, analysis.ProductPopularity[0].Count)
	assert.Equal(t, "Beta", analysis.ProductPopularity[1].Product)
	assert.Equal(t, 15, analysis.ProductPopularity[1].Count)
}

func TestMarketBasketAnalysis_AffinityMatrix(t *testing.T) {
	ds := newTestDataset("basket-affinity", hundredBasketFixture())
	analysis, err := MarketBasketAnalysis(ds, 0.01, 0.4, 500)
	require.NoError(t, err)

	require.NotNil(t, analysis.AffinityMatrix)
	assert.Equal(t, 1.0, analysis.AffinityMatrix["Alpha"]["Alpha"])
	assert.InDelta(t, 0.5, analysis.AffinityMatrix["Alpha"]["Beta"], 1e-9)
	assert.InDelta(t, 10.0/15.0, analysis.AffinityMatrix["Beta"]["Alpha"], 1e-9)
	assert.Equal(t, 0.0, analysis.AffinityMatrix["Alpha"]["Filler00"])
}

func TestMarketBasketAnalysis_AffinitySkippedForLargeCatalogs(t *testing.T) {
	ds := newTestDataset("basket-cap", hundredBasketFixture())
	analysis, err := MarketBasketAnalysis(ds, 0.01, 0.4, 10)
	require.NoError(t, err)

	assert.Nil(t, analysis.AffinityMatrix)
	assert.Len(t, analysis.Rules, 2)
}

func TestCountBaskets_DeduplicatesWithinBasket(t *testing.T) {
	// Two same-day lines of one product are one occurrence; a different
	// day opens a new basket.
	ds := newTestDataset("basket-dedupe", []order{
		{customer: "A", date: "2024-01-01", product: "X", amount: 5},
		{customer: "A", date: "2024-01-01", product: "X", amount: 5},
		{customer: "A", date: "2024-01-01", product: "Y", amount: 5},
		{customer: "A", date: "2024-01-02", product: "X", amount: 5},
	})

	counts := countBaskets(ds)
	assert.Equal(t, 2, counts.totalBaskets)
	assert.Equal(t, 2, counts.productCounts["X"])
	assert.Equal(t, 1, counts.productCounts["Y"])
	assert.Equal(t, 1, counts.pairCounts[productPair{"X", "Y"}])
}

func TestRecommendProducts(t *testing.T) {
	ds := newTestDataset("basket-recs", hundredBasketFixture())

	// U011 bought Alpha alone; Beta should be suggested via Alpha→Beta
	recs, err := RecommendProducts(ds, "U011", 0.01, 0.4, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, "Beta", recs[0].Product)
	assert.InDelta(t, 0.5*3.33, recs[0].Score, 0.01)
}

func TestRecommendProducts_UnknownCustomer(t *testing.T) {
	ds := newTestDataset("basket-unknown", hundredBasketFixture())
	_, err := RecommendProducts(ds, "nobody", 0.01, 0.4, 5)
	assert.Error(t, err)
}
