package service

import (
	"context"
	"time"
)

// Analysis stages reported through the ProgressNotifier.
const (
	StageClusterDiscovered  = "cluster_discovered"
	StageBalanceComputed    = "balance_computed"
	StageStatisticsComputed = "statistics_computed"
	StageAnalysisCompleted  = "analysis_completed"
)

// ProgressEvent is an observational status notification emitted while an
// analysis run advances. It is not part of the analysis data contract.
type ProgressEvent struct {
	Seed             string    `json:"seed"`
	Stage            string    `json:"stage"`
	ClusterSize      int       `json:"cluster_size,omitempty"`
	MissingAddresses int       `json:"missing_addresses,omitempty"`
	BalancePoints    int       `json:"balance_points,omitempty"`
	FlowSampleSize   int       `json:"flow_sample_size,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// ProgressNotifier receives progress events from the orchestrator.
// Implementations must never fail the analysis; delivery problems are
// theirs to log and swallow.
type ProgressNotifier interface {
	Notify(ctx context.Context, event *ProgressEvent)
}
