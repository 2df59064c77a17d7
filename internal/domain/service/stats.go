package service

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"crypto-cluster-analyzer/internal/domain/entity"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerateSample is returned when a statistic is undefined for its
// input: an empty sample, or a zero-sum sample for the Gini coefficient.
var ErrDegenerateSample = errors.New("degenerate sample")

// Gini computes the Gini coefficient over values using the rank formula
// (2*sum(rank*value))/(n*sum(value)) - (n+1)/n on the ascending-sorted
// sample. The input slice is not modified.
//
// The coefficient is classically defined over non-negative wealth; negative
// inputs (historical balances can go negative) are accepted and may push the
// result outside [0,1]. Callers get an explicit error instead of NaN when
// the sample is empty or sums to zero.
func Gini(values []float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, fmt.Errorf("gini of empty sample: %w", ErrDegenerateSample)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum, rankSum float64
	for i, v := range sorted {
		sum += v
		rankSum += float64(i+1) * v
	}
	if sum == 0 {
		return 0, fmt.Errorf("gini of zero-sum sample: %w", ErrDegenerateSample)
	}

	return 2*rankSum/(float64(n)*sum) - float64(n+1)/float64(n), nil
}

// ClusterNetFlows derives the Benford input sample: for every unique
// transaction in the index, the absolute net flow of value into the cluster.
// Transactions that net to zero are discarded.
func ClusterNetFlows(cluster *entity.Cluster, index entity.AddressTxIndex) []int64 {
	seen := make(map[string]struct{})
	var flows []int64

	for _, txs := range index {
		for _, tx := range txs {
			if _, ok := seen[tx.Hash]; ok {
				continue
			}
			seen[tx.Hash] = struct{}{}

			flow := tx.NetFlow(cluster.Contains)
			if flow == 0 {
				continue
			}
			if flow < 0 {
				flow = -flow
			}
			flows = append(flows, flow)
		}
	}

	return flows
}

// BenfordTest runs the one-sample chi-square goodness-of-fit test of the
// leading decimal digits of flows against Benford's Law. Nine categories,
// eight degrees of freedom; the statistic is computed on the relative
// frequency vectors and the p-value from the chi-squared survival function.
func BenfordTest(flows []int64) (*entity.BenfordResult, error) {
	if len(flows) == 0 {
		return nil, fmt.Errorf("benford test on empty flow sample: %w", ErrDegenerateSample)
	}

	var counts [10]int
	for _, flow := range flows {
		counts[leadingDigit(flow)]++
	}

	result := &entity.BenfordResult{
		Observed:   make(map[int]float64, 9),
		Expected:   make(map[int]float64, 9),
		SampleSize: len(flows),
	}

	n := float64(len(flows))
	for d := 1; d <= 9; d++ {
		observed := float64(counts[d]) / n
		expected := math.Log10(1 + 1/float64(d))
		result.Observed[d] = observed
		result.Expected[d] = expected
		result.ChiSquare += (observed - expected) * (observed - expected) / expected
	}

	dist := distuv.ChiSquared{K: 8}
	result.PValue = dist.Survival(result.ChiSquare)

	return result, nil
}

// leadingDigit returns the most significant decimal digit of v > 0.
func leadingDigit(v int64) int {
	for v >= 10 {
		v /= 10
	}
	return int(v)
}
