package service

import (
	"context"
	"errors"
	"fmt"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/domain/repository"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// ClusterBuilder discovers the closed set of addresses linked to a seed
// through shared transactions. The address graph is implicit: edges only
// become visible by fetching a node's record, so the builder runs a
// worklist traversal with the cluster itself as the visited set.
type ClusterBuilder struct {
	store  repository.RecordStore
	logger *logger.Logger
}

// NewClusterBuilder creates a new cluster builder
func NewClusterBuilder(store repository.RecordStore, logger *logger.Logger) *ClusterBuilder {
	return &ClusterBuilder{
		store:  store,
		logger: logger.WithComponent("cluster-builder"),
	}
}

// BuildCluster traverses the implicit address-transaction graph starting at
// seed. Every address is fetched at most once; addresses whose records
// cannot be retrieved stay in the cluster but are recorded as missing and
// not expanded. Returns an error only when ctx is cancelled.
func (b *ClusterBuilder) BuildCluster(ctx context.Context, seed string) (*entity.ClusterResult, error) {
	result := &entity.ClusterResult{
		Seed:    seed,
		Cluster: entity.NewCluster(),
		Index:   make(entity.AddressTxIndex),
	}

	result.Cluster.Add(seed)
	worklist := []string{seed}

	for len(worklist) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cluster traversal aborted: %w", err)
		}

		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		txs, err := b.store.FetchTransactions(ctx, current)
		if err != nil {
			if !errors.Is(err, repository.ErrRecordNotFound) {
				b.logger.Warn("Failed to fetch address record",
					zap.String("address", current),
					zap.Error(err))
			}
			// A missing address contributes no new edges.
			result.Missing = append(result.Missing, current)
			continue
		}

		for _, tx := range txs {
			if tx == nil || tx.Hash == "" {
				b.logger.Warn("Skipping malformed transaction record",
					zap.String("address", current))
				continue
			}
			result.Index[current] = append(result.Index[current], tx)

			for _, linked := range tx.LinkedAddresses() {
				if result.Cluster.Add(linked) {
					worklist = append(worklist, linked)
				}
			}
		}
	}

	b.logger.Info("Cluster traversal completed",
		zap.String("seed", seed),
		zap.Int("cluster_size", result.Cluster.Size()),
		zap.Int("missing_addresses", len(result.Missing)))

	return result, nil
}
