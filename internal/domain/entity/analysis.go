package entity

// BalancePoint is the cluster's aggregate signed balance after all
// transactions recorded at or before Time.
type BalancePoint struct {
	Time    int64 `json:"time"`
	Balance int64 `json:"balance"`
}

// BenfordResult holds the first-digit goodness-of-fit test output. Observed
// and Expected map leading digits 1-9 to their relative frequencies.
type BenfordResult struct {
	Observed   map[int]float64 `json:"observed"`
	Expected   map[int]float64 `json:"expected"`
	ChiSquare  float64         `json:"chi_square"`
	PValue     float64         `json:"p_value"`
	SampleSize int             `json:"sample_size"`
}

// AnalysisResult is the single record produced by one analysis run, shaped
// for a downstream reporting/plotting consumer. GiniCoefficient and
// BenfordsLaw are nil when the corresponding statistic failed on a
// degenerate sample.
type AnalysisResult struct {
	Seed                 string         `json:"seed"`
	ClusterSize          int            `json:"cluster_size"`
	HistoricalBalance    []BalancePoint `json:"historical_balance"`
	GiniCoefficient      *float64       `json:"gini_coefficient,omitempty"`
	BenfordsLaw          *BenfordResult `json:"benfords_law,omitempty"`
	AddressesWithoutData int            `json:"addresses_without_data"`
}
