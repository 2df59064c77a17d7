package database

import (
	"context"
	"fmt"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/domain/repository"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4JRecordStore implements RecordStore against a transaction graph of
// (:Address)-[:FUNDS]->(:Transaction)-[:PAYS]->(:Address) nodes. FUNDS edges
// carry the spent prior-output value, PAYS edges the paid output value.
type Neo4JRecordStore struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JRecordStore creates a new Neo4J-backed record store
func NewNeo4JRecordStore(client *Neo4JClient, logger *logger.Logger) repository.RecordStore {
	return &Neo4JRecordStore{
		client: client,
		logger: logger.WithComponent("neo4j-record-store"),
	}
}

// FetchTransactions reconstructs the per-address transaction list for
// address from the graph. ErrRecordNotFound is returned when the address
// node does not exist.
func (r *Neo4JRecordStore) FetchTransactions(ctx context.Context, address string) ([]*entity.Transaction, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.client.Database(),
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	query := `
		MATCH (a:Address {address: $address})
		OPTIONAL MATCH (a)-[:FUNDS|PAYS]-(tx:Transaction)
		WITH a, collect(DISTINCT tx) AS txs
		UNWIND (CASE WHEN size(txs) = 0 THEN [null] ELSE txs END) AS t
		OPTIONAL MATCH (src:Address)-[f:FUNDS]->(t)
		WITH a, t, collect({addr: src.address, value: f.value}) AS inputs
		OPTIONAL MATCH (t)-[p:PAYS]->(dst:Address)
		RETURN t.hash AS hash, t.time AS time, inputs,
		       collect({addr: dst.address, value: p.value}) AS outputs
		ORDER BY time
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]interface{}{"address": address})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", address, err)
	}

	records := result.([]*neo4j.Record)
	if len(records) == 0 {
		return nil, repository.ErrRecordNotFound
	}

	var txs []*entity.Transaction
	for _, record := range records {
		tx, err := recordToTransaction(record)
		if err != nil {
			// Malformed graph rows are skipped, not fatal.
			r.logger.Warn("Skipping malformed transaction row",
				zap.String("address", address),
				zap.Error(err))
			continue
		}
		if tx != nil {
			txs = append(txs, tx)
		}
	}

	return txs, nil
}

// recordToTransaction converts one result row. A row with a null hash marks
// an address with no transactions and converts to nil.
func recordToTransaction(record *neo4j.Record) (*entity.Transaction, error) {
	values := record.Values

	hash, ok := values[0].(string)
	if !ok {
		if values[0] == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected hash value %v", values[0])
	}

	ts, ok := values[1].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected time value %v for tx %s", values[1], hash)
	}

	tx := &entity.Transaction{Hash: hash, Time: ts}

	inputs, _ := values[2].([]interface{})
	for _, raw := range inputs {
		entry, ok := raw.(map[string]interface{})
		if !ok || entry["addr"] == nil {
			continue
		}
		prev := &entity.TxOutput{}
		prev.Address, _ = entry["addr"].(string)
		prev.Value, _ = entry["value"].(int64)
		tx.Inputs = append(tx.Inputs, entity.TxInput{PrevOut: prev})
	}

	outputs, _ := values[3].([]interface{})
	for _, raw := range outputs {
		entry, ok := raw.(map[string]interface{})
		if !ok || entry["addr"] == nil {
			continue
		}
		out := entity.TxOutput{}
		out.Address, _ = entry["addr"].(string)
		out.Value, _ = entry["value"].(int64)
		tx.Outputs = append(tx.Outputs, out)
	}

	return tx, nil
}
