package service

import (
	"sort"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// BalanceTracker replays the cluster's transaction history into a
// time-indexed running balance. Deltas are collected per unique transaction
// across the whole cluster and merged into one chronological sequence before
// accumulation, so the series does not depend on the order addresses were
// discovered in.
type BalanceTracker struct {
	logger *logger.Logger
}

// NewBalanceTracker creates a new balance tracker
func NewBalanceTracker(logger *logger.Logger) *BalanceTracker {
	return &BalanceTracker{logger: logger.WithComponent("balance-tracker")}
}

type balanceDelta struct {
	time  int64
	delta int64
}

// ComputeHistoricalBalance returns the cluster's aggregate signed balance in
// ascending timestamp order, one point per distinct timestamp. A transaction
// appearing in several address records is counted once; its delta is the
// value paid to cluster members minus the value spent from them.
func (t *BalanceTracker) ComputeHistoricalBalance(result *entity.ClusterResult) []entity.BalancePoint {
	seen := make(map[string]struct{})
	var deltas []balanceDelta

	inCluster := result.Cluster.Contains
	for _, txs := range result.Index {
		for _, tx := range txs {
			if _, ok := seen[tx.Hash]; ok {
				continue
			}
			seen[tx.Hash] = struct{}{}
			deltas = append(deltas, balanceDelta{time: tx.Time, delta: tx.NetFlow(inCluster)})
		}
	}

	sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].time < deltas[j].time })

	var series []entity.BalancePoint
	var balance int64
	for _, d := range deltas {
		balance += d.delta
		if n := len(series); n > 0 && series[n-1].Time == d.time {
			// Several transactions at one timestamp collapse into the
			// balance after all of them.
			series[n-1].Balance = balance
			continue
		}
		series = append(series, entity.BalancePoint{Time: d.time, Balance: balance})
	}

	t.logger.Info("Historical balance computed",
		zap.String("seed", result.Seed),
		zap.Int("transactions", len(seen)),
		zap.Int("balance_points", len(series)))

	return series
}
