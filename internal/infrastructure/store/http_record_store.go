package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/domain/repository"
	"crypto-cluster-analyzer/internal/infrastructure/config"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// HTTPRecordStore fetches address records from a blockchain.info-compatible
// API (GET {base_url}/rawaddr/{address}). Transient failures are retried
// with a fixed delay; a 404 is authoritative and returned as
// ErrRecordNotFound without retrying.
type HTTPRecordStore struct {
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	logger     *logger.Logger
}

// NewHTTPRecordStore creates a new HTTP-backed record store
func NewHTTPRecordStore(cfg *config.StoreConfig, logger *logger.Logger) repository.RecordStore {
	return &HTTPRecordStore{
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger.WithComponent("http-record-store"),
	}
}

// FetchTransactions retrieves the record for address, retrying transient
// failures up to the configured attempt count.
func (s *HTTPRecordStore) FetchTransactions(ctx context.Context, address string) ([]*entity.Transaction, error) {
	url := fmt.Sprintf("%s/rawaddr/%s", s.baseURL, address)

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		txs, retryable, err := s.fetchOnce(ctx, url)
		if err == nil {
			return txs, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		if attempt < s.maxRetries {
			s.logger.Warn("Record fetch failed, retrying",
				zap.String("address", address),
				zap.Int("attempt", attempt),
				zap.Duration("delay", s.retryDelay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch record for %s after %d attempts: %w", address, s.maxRetries, lastErr)
}

func (s *HTTPRecordStore) fetchOnce(ctx context.Context, url string) ([]*entity.Transaction, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, repository.ErrRecordNotFound
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var record entity.AddressRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}

	return record.Txs, false, nil
}
