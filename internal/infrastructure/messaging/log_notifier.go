package messaging

import (
	"context"

	"crypto-cluster-analyzer/internal/domain/service"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// LogNotifier writes progress events to the application log. Used when NATS
// publishing is disabled.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a new log-backed progress notifier
func NewLogNotifier(logger *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent("progress")}
}

// Notify logs one progress event
func (n *LogNotifier) Notify(ctx context.Context, event *service.ProgressEvent) {
	n.logger.Info("Analysis progress",
		zap.String("seed", event.Seed),
		zap.String("stage", event.Stage),
		zap.Int("cluster_size", event.ClusterSize),
		zap.Int("missing_addresses", event.MissingAddresses),
		zap.Int("balance_points", event.BalancePoints),
		zap.Int("flow_sample_size", event.FlowSampleSize))
}
