package repository

import (
	"context"
	"errors"

	"crypto-cluster-analyzer/internal/domain/entity"
)

// ErrRecordNotFound is returned when a store has no record for an address.
var ErrRecordNotFound = errors.New("address record not found")

// RecordStore defines the interface for retrieving the transactions that
// reference a given address. Implementations may be backed by local files,
// a remote HTTP API, or a graph database; the cluster builder only relies on
// this contract.
type RecordStore interface {
	// FetchTransactions returns the transactions referencing address, or
	// ErrRecordNotFound when the store has no record for it.
	FetchTransactions(ctx context.Context, address string) ([]*entity.Transaction, error)
}
