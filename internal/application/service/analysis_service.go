package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/domain/service"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// ClusterAnalysisService implements AnalysisService. It owns the sequencing
// of one analysis run: cluster discovery, balance replay, then the
// statistical fingerprints. All state is created per invocation and
// discarded with the result.
type ClusterAnalysisService struct {
	builder  *service.ClusterBuilder
	tracker  *service.BalanceTracker
	notifier service.ProgressNotifier
	logger   *logger.Logger
}

// NewClusterAnalysisService creates a new cluster analysis service
func NewClusterAnalysisService(
	builder *service.ClusterBuilder,
	tracker *service.BalanceTracker,
	notifier service.ProgressNotifier,
	logger *logger.Logger,
) service.AnalysisService {
	return &ClusterAnalysisService{
		builder:  builder,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger.WithComponent("analysis-service"),
	}
}

// Analyze runs the full pipeline for one seed address. Fetch-level problems
// are absorbed into the missing-data count; degenerate statistic inputs are
// returned as explicit per-statistic failures joined into one error, next to
// the otherwise-populated result.
func (s *ClusterAnalysisService) Analyze(ctx context.Context, seed string) (*entity.AnalysisResult, error) {
	s.logger.Info("Starting cluster analysis", zap.String("seed", seed))

	clusterResult, err := s.builder.BuildCluster(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to build cluster: %w", err)
	}
	s.notify(ctx, &service.ProgressEvent{
		Seed:             seed,
		Stage:            service.StageClusterDiscovered,
		ClusterSize:      clusterResult.Cluster.Size(),
		MissingAddresses: len(clusterResult.Missing),
	})

	balance := s.tracker.ComputeHistoricalBalance(clusterResult)
	s.notify(ctx, &service.ProgressEvent{
		Seed:          seed,
		Stage:         service.StageBalanceComputed,
		BalancePoints: len(balance),
	})

	result := &entity.AnalysisResult{
		Seed:                 seed,
		ClusterSize:          clusterResult.Cluster.Size(),
		HistoricalBalance:    balance,
		AddressesWithoutData: len(clusterResult.Missing),
	}

	var statErrs []error

	// Gini over historical balance snapshots, matching the source's default
	// input choice rather than net flow magnitudes.
	snapshots := make([]float64, len(balance))
	for i, point := range balance {
		snapshots[i] = float64(point.Balance)
	}
	gini, err := service.Gini(snapshots)
	if err != nil {
		s.logger.Warn("Gini coefficient unavailable", zap.String("seed", seed), zap.Error(err))
		statErrs = append(statErrs, fmt.Errorf("gini coefficient: %w", err))
	} else {
		result.GiniCoefficient = &gini
		s.logger.Info("Gini coefficient computed", zap.Float64("gini", gini))
	}

	flows := service.ClusterNetFlows(clusterResult.Cluster, clusterResult.Index)
	benford, err := service.BenfordTest(flows)
	if err != nil {
		s.logger.Warn("Benford's law test unavailable", zap.String("seed", seed), zap.Error(err))
		statErrs = append(statErrs, fmt.Errorf("benford's law: %w", err))
	} else {
		result.BenfordsLaw = benford
		s.logger.Info("Benford's law test computed",
			zap.Float64("chi_square", benford.ChiSquare),
			zap.Float64("p_value", benford.PValue))
	}

	s.notify(ctx, &service.ProgressEvent{
		Seed:           seed,
		Stage:          service.StageStatisticsComputed,
		FlowSampleSize: len(flows),
	})

	s.notify(ctx, &service.ProgressEvent{
		Seed:             seed,
		Stage:            service.StageAnalysisCompleted,
		ClusterSize:      result.ClusterSize,
		MissingAddresses: result.AddressesWithoutData,
		BalancePoints:    len(balance),
		FlowSampleSize:   len(flows),
	})

	s.logger.Info("Cluster analysis completed",
		zap.String("seed", seed),
		zap.Int("cluster_size", result.ClusterSize),
		zap.Int("addresses_without_data", result.AddressesWithoutData))

	return result, errors.Join(statErrs...)
}

func (s *ClusterAnalysisService) notify(ctx context.Context, event *service.ProgressEvent) {
	event.Timestamp = time.Now().UTC()
	s.notifier.Notify(ctx, event)
}
