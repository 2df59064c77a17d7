package service

import (
	"testing"

	"crypto-cluster-analyzer/internal/domain/entity"
	"crypto-cluster-analyzer/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

func clusterOf(addrs ...string) *entity.Cluster {
	c := entity.NewCluster()
	for _, a := range addrs {
		c.Add(a)
	}
	return c
}

func TestComputeHistoricalBalanceRunningTotal(t *testing.T) {
	funding := newTx("tx-1", 100, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-a", 10)})
	spendOut := newTx("tx-2", 200, []entity.TxInput{spend("addr-a", 4)}, []entity.TxOutput{{Value: 4}})

	result := &entity.ClusterResult{
		Seed:    "addr-a",
		Cluster: clusterOf("addr-a"),
		Index: entity.AddressTxIndex{
			"addr-a": {funding, spendOut},
		},
	}

	tracker := NewBalanceTracker(logger.NewNop())
	series := tracker.ComputeHistoricalBalance(result)

	assert.Equal(t, []entity.BalancePoint{
		{Time: 100, Balance: 10},
		{Time: 200, Balance: 6},
	}, series)
}

func TestComputeHistoricalBalanceDeduplicatesSharedTransactions(t *testing.T) {
	// One transaction paying two cluster members shows up in both address
	// records; its delta must be counted once.
	shared := newTx("tx-1", 100, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-a", 5), pay("addr-b", 5)})

	result := &entity.ClusterResult{
		Cluster: clusterOf("addr-a", "addr-b"),
		Index: entity.AddressTxIndex{
			"addr-a": {shared},
			"addr-b": {shared},
		},
	}

	tracker := NewBalanceTracker(logger.NewNop())
	series := tracker.ComputeHistoricalBalance(result)

	assert.Equal(t, []entity.BalancePoint{{Time: 100, Balance: 10}}, series)
}

func TestComputeHistoricalBalanceInternalTransferNetsZero(t *testing.T) {
	internal := newTx("tx-1", 100, []entity.TxInput{spend("addr-a", 10)}, []entity.TxOutput{pay("addr-b", 10)})

	result := &entity.ClusterResult{
		Cluster: clusterOf("addr-a", "addr-b"),
		Index: entity.AddressTxIndex{
			"addr-a": {internal},
			"addr-b": {internal},
		},
	}

	tracker := NewBalanceTracker(logger.NewNop())
	series := tracker.ComputeHistoricalBalance(result)

	// The timestamp still gets a key; the aggregate balance is unchanged.
	assert.Equal(t, []entity.BalancePoint{{Time: 100, Balance: 0}}, series)
}

func TestComputeHistoricalBalanceMergesAcrossAddresses(t *testing.T) {
	// Deltas from different address records interleave chronologically
	// regardless of map iteration order.
	fundA := newTx("tx-1", 100, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-a", 10)})
	fundB := newTx("tx-2", 300, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-b", 1)})
	spendA := newTx("tx-3", 200, []entity.TxInput{spend("addr-a", 3)}, []entity.TxOutput{{Value: 3}})

	result := &entity.ClusterResult{
		Cluster: clusterOf("addr-a", "addr-b"),
		Index: entity.AddressTxIndex{
			"addr-a": {fundA, spendA},
			"addr-b": {fundB},
		},
	}

	tracker := NewBalanceTracker(logger.NewNop())
	series := tracker.ComputeHistoricalBalance(result)

	assert.Equal(t, []entity.BalancePoint{
		{Time: 100, Balance: 10},
		{Time: 200, Balance: 7},
		{Time: 300, Balance: 8},
	}, series)
}

func TestComputeHistoricalBalanceCollapsesEqualTimestamps(t *testing.T) {
	first := newTx("tx-1", 100, []entity.TxInput{coinbase()}, []entity.TxOutput{pay("addr-a", 10)})
	second := newTx("tx-2", 100, []entity.TxInput{spend("addr-a", 4)}, []entity.TxOutput{{Value: 4}})

	result := &entity.ClusterResult{
		Cluster: clusterOf("addr-a"),
		Index: entity.AddressTxIndex{
			"addr-a": {first, second},
		},
	}

	tracker := NewBalanceTracker(logger.NewNop())
	series := tracker.ComputeHistoricalBalance(result)

	assert.Equal(t, []entity.BalancePoint{{Time: 100, Balance: 6}}, series)
}

func TestComputeHistoricalBalanceEmptyIndex(t *testing.T) {
	result := &entity.ClusterResult{
		Cluster: clusterOf("addr-a"),
		Index:   entity.AddressTxIndex{},
	}

	tracker := NewBalanceTracker(logger.NewNop())
	assert.Empty(t, tracker.ComputeHistoricalBalance(result))
}
