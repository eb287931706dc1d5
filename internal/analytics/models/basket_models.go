package models

// AssociationRule is a directional product association. A→B and B→A are
// tracked separately: support is symmetric, confidence/lift/conviction are
// not.
type AssociationRule struct {
	Antecedent string  `json:"antecedent"`
	Consequent string  `json:"consequent"`
	Support    float64 `json:"support"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
	Conviction float64 `json:"conviction"`
}

// ProductCount pairs a product with its basket occurrence count
type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

// BasketAnalysis is the market basket engine output. AffinityMatrix is
// row-normalized: cell(A,B) = co-occurrence(A,B)/count(A), diagonal 1.0.
type BasketAnalysis struct {
	Rules             []AssociationRule             `json:"association_rules"`
	AffinityMatrix    map[string]map[string]float64 `json:"affinity_matrix,omitempty"`
	ProductPopularity []ProductCount                `json:"product_popularity"`
	TotalBaskets      int                           `json:"total_transactions"`
	UniqueProducts    int                           `json:"unique_products"`
}

// ProductRecommendation scores a candidate product for one customer
type ProductRecommendation struct {
	Product string  `json:"product"`
	Score   float64 `json:"score"` // accumulated confidence × lift
}
