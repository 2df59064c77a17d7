package service

import (
	"context"

	"crypto-cluster-analyzer/internal/domain/entity"
)

// AnalysisService defines the interface for running a full cluster analysis
type AnalysisService interface {
	// Analyze discovers the cluster around seed, replays its balance history
	// and computes the statistical fingerprints. A non-nil result is
	// returned even when one or both statistics fail on a degenerate
	// sample; those failures are reported through the returned error.
	Analyze(ctx context.Context, seed string) (*entity.AnalysisResult, error)
}
