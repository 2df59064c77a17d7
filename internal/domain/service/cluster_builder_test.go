package service

import (
	"context"
	"testing"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/domain/repository"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecordStore serves canned per-address transaction lists and counts
// fetches per address.
type fakeRecordStore struct {
	records map[string][]*entity.Transaction
	fetches map[string]int
}

func newFakeRecordStore(records map[string][]*entity.Transaction) *fakeRecordStore {
	return &fakeRecordStore{
		records: records,
		fetches: make(map[string]int),
	}
}

func (f *fakeRecordStore) FetchTransactions(ctx context.Context, address string) ([]*entity.Transaction, error) {
	f.fetches[address]++
	txs, ok := f.records[address]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return txs, nil
}

func newTx(hash string, time int64, inputs []entity.TxInput, outputs []entity.TxOutput) *entity.Transaction {
	return &entity.Transaction{Hash: hash, Time: time, Inputs: inputs, Outputs: outputs}
}

func spend(addr string, value int64) entity.TxInput {
	return entity.TxInput{PrevOut: &entity.TxOutput{Address: addr, Value: value}}
}

func coinbase() entity.TxInput {
	return entity.TxInput{}
}

func pay(addr string, value int64) entity.TxOutput {
	return entity.TxOutput{Address: addr, Value: value}
}

func TestBuildClusterContainsSeed(t *testing.T) {
	store := newFakeRecordStore(map[string][]*entity.Transaction{
		"addr-a": {},
	})
	builder := NewClusterBuilder(store, logger.NewNop())

	result, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)

	assert.True(t, result.Cluster.Contains("addr-a"))
	assert.Equal(t, 1, result.Cluster.Size())
	assert.Empty(t, result.Missing)
}

func TestBuildClusterDiscoversLinkedAddresses(t *testing.T) {
	txAB := newTx("tx-1", 100, []entity.TxInput{spend("addr-a", 10)}, []entity.TxOutput{pay("addr-b", 10)})
	txBC := newTx("tx-2", 200, []entity.TxInput{spend("addr-b", 4)}, []entity.TxOutput{pay("addr-c", 4)})

	store := newFakeRecordStore(map[string][]*entity.Transaction{
		"addr-a": {txAB},
		"addr-b": {txAB, txBC},
		"addr-c": {txBC},
	})
	builder := NewClusterBuilder(store, logger.NewNop())

	result, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"addr-a", "addr-b", "addr-c"}, result.Cluster.Addresses())
	assert.Empty(t, result.Missing)
	assert.Len(t, result.Index["addr-b"], 2)

	// Every address was fetched exactly once.
	for addr, count := range store.fetches {
		assert.Equal(t, 1, count, "address %s fetched more than once", addr)
	}
}

func TestBuildClusterRecordsMissingAddress(t *testing.T) {
	txAB := newTx("tx-1", 100, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-a", 5), pay("addr-b", 5)})

	store := newFakeRecordStore(map[string][]*entity.Transaction{
		"addr-a": {txAB},
		// addr-b has no record.
	})
	builder := NewClusterBuilder(store, logger.NewNop())

	result, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)

	assert.True(t, result.Cluster.Contains("addr-b"), "missing addresses stay cluster members")
	assert.Equal(t, []string{"addr-b"}, result.Missing)
	assert.NotContains(t, result.Index, "addr-b")
}

func TestBuildClusterMissingSeed(t *testing.T) {
	store := newFakeRecordStore(nil)
	builder := NewClusterBuilder(store, logger.NewNop())

	result, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Cluster.Size())
	assert.Equal(t, []string{"addr-a"}, result.Missing)
	assert.Empty(t, result.Index)
}

func TestBuildClusterIdempotent(t *testing.T) {
	txAB := newTx("tx-1", 100, []entity.TxInput{spend("addr-a", 10)}, []entity.TxOutput{pay("addr-b", 10)})

	store := newFakeRecordStore(map[string][]*entity.Transaction{
		"addr-a": {txAB},
		"addr-b": {txAB},
	})
	builder := NewClusterBuilder(store, logger.NewNop())

	first, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)
	second, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)

	assert.ElementsMatch(t, first.Cluster.Addresses(), second.Cluster.Addresses())
	assert.Equal(t, first.Missing, second.Missing)
}

func TestBuildClusterSkipsMalformedTransactions(t *testing.T) {
	valid := newTx("tx-1", 100, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-a", 5)})
	noHash := newTx("", 200, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-b", 5)})

	store := newFakeRecordStore(map[string][]*entity.Transaction{
		"addr-a": {valid, noHash},
	})
	builder := NewClusterBuilder(store, logger.NewNop())

	result, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)

	assert.Len(t, result.Index["addr-a"], 1)
	assert.False(t, result.Cluster.Contains("addr-b"), "malformed transactions contribute no edges")
}

func TestBuildClusterUnattributedTransaction(t *testing.T) {
	// No resolvable address on either side; still stored under the address
	// that referenced it.
	opaque := newTx("tx-1", 100, []entity.TxInput{coinbase()}, []entity.TxOutput{{Value: 7}})

	store := newFakeRecordStore(map[string][]*entity.Transaction{
		"addr-a": {opaque},
	})
	builder := NewClusterBuilder(store, logger.NewNop())

	result, err := builder.BuildCluster(context.Background(), "addr-a")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Cluster.Size())
	assert.Len(t, result.Index["addr-a"], 1)
}

func TestBuildClusterContextCancelled(t *testing.T) {
	store := newFakeRecordStore(map[string][]*entity.Transaction{
		"addr-a": {},
	})
	builder := NewClusterBuilder(store, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := builder.BuildCluster(ctx, "addr-a")
	assert.ErrorIs(t, err, context.Canceled)
}
