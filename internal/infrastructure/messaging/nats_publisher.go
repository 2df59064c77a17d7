package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"crypto-cluster-analyzer/internal/domain/service"
	"crypto-cluster-analyzer/internal/infrastructure/config"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSProgressPublisher publishes analysis progress events to NATS. Events
// are observational; publish failures are logged and never interrupt an
// analysis run.
type NATSProgressPublisher struct {
	conn   *nats.Conn
	config *config.NATSConfig
	logger *logger.Logger
}

// NewNATSProgressPublisher creates a new NATS progress publisher
func NewNATSProgressPublisher(cfg *config.NATSConfig, logger *logger.Logger) *NATSProgressPublisher {
	return &NATSProgressPublisher{
		config: cfg,
		logger: logger.WithComponent("nats-publisher"),
	}
}

// Connect connects to the NATS server
func (p *NATSProgressPublisher) Connect(ctx context.Context) error {
	p.logger.Info("Connecting to NATS server", zap.String("url", p.config.URL))

	opts := []nats.Option{
		nats.Name("cluster-analyzer"),
		nats.Timeout(p.config.ConnectTimeout),
		nats.ReconnectWait(p.config.ReconnectDelay),
		nats.MaxReconnects(p.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			p.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			p.logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(p.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.conn = conn
	return nil
}

// Disconnect drains and closes the NATS connection
func (p *NATSProgressPublisher) Disconnect() error {
	if p.conn != nil {
		return p.conn.Drain()
	}
	return nil
}

// Notify publishes one progress event as JSON to
// <subject_prefix>.progress.<stage>.
func (p *NATSProgressPublisher) Notify(ctx context.Context, event *service.ProgressEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode progress event", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.progress.%s", p.config.SubjectPrefix, event.Stage)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("Failed to publish progress event",
			zap.String("subject", subject),
			zap.Error(err))
	}
}
