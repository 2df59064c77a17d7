package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/domain/repository"
	"crypto-cluster-analyzer/internal/infrastructure/config"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// FileRecordStore serves address records from a directory of
// <address>.json files in the rawaddr wire shape.
type FileRecordStore struct {
	dir    string
	logger *logger.Logger
}

// NewFileRecordStore creates a new file-backed record store
func NewFileRecordStore(cfg *config.StoreConfig, logger *logger.Logger) repository.RecordStore {
	return &FileRecordStore{
		dir:    cfg.Dir,
		logger: logger.WithComponent("file-record-store"),
	}
}

// FetchTransactions reads and decodes the record file for address.
func (s *FileRecordStore) FetchTransactions(ctx context.Context, address string) ([]*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, address+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, repository.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read record file %s: %w", path, err)
	}

	var record entity.AddressRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("Failed to decode address record",
			zap.String("address", address),
			zap.Error(err))
		return nil, fmt.Errorf("failed to decode record for %s: %w", address, err)
	}

	return record.Txs, nil
}
