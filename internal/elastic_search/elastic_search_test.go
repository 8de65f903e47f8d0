package elastic_search

import (
	"context"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func newBufferIndex(t *testing.T) Index {
	t.Helper()

	i, err := New(config.Config{Network: "devnet", Index: "marketplace"})
	require.NoError(t, err)
	require.False(t, i.Enabled())

	return i
}

func TestIndexName(t *testing.T) {
	i := newBufferIndex(t)

	assert.Equal(t, "devnet.marketplace.nftaction", i.Name(NftActionIndex))
	assert.NoError(t, i.InstallMappings(context.Background()))
}

func TestAddIndexRequestDeduplicatesBySlug(t *testing.T) {
	i := newBufferIndex(t)
	action := entity.NftAction{Contract: "c", TokenId: 1, TxID: "0x1", Action: entity.MarketplaceSaleAction}

	i.AddIndexRequest(i.Name(NftActionIndex), action, NftAction)
	i.AddIndexRequest(i.Name(NftActionIndex), action, NftAction)

	assert.True(t, i.HasRequest(action))
	assert.Len(t, i.GetRequests(), 1)

	req := i.GetRequest(action.Slug())
	require.NotNil(t, req)
	assert.Equal(t, IndexRequest, req.Type)
	assert.Equal(t, NftAction, req.Action)
	assert.Nil(t, i.GetRequest("missing"))
}

func TestPersistFlushesBufferWhenDisabled(t *testing.T) {
	i := newBufferIndex(t)
	for n := uint64(1); n <= 3; n++ {
		i.AddIndexRequest(i.Name(NftActionIndex), entity.NftAction{TokenId: n, TxID: "0x1"}, NftAction)
	}

	assert.Equal(t, 3, i.Persist())
	assert.Empty(t, i.GetRequests())
	assert.Equal(t, 0, i.Persist())
}

func TestBatchPersistWaitsForThreshold(t *testing.T) {
	i := newBufferIndex(t)
	for n := 0; n < batchThreshold-1; n++ {
		i.AddIndexRequest(i.Name(NftActionIndex), entity.NftAction{TokenId: uint64(n)}, NftAction)
	}
	assert.False(t, i.BatchPersist())

	i.AddIndexRequest(i.Name(NftActionIndex), entity.NftAction{TokenId: uint64(batchThreshold)}, NftAction)
	assert.True(t, i.BatchPersist())
	assert.Empty(t, i.GetRequests())

	i.AddIndexRequest(i.Name(NftActionIndex), entity.NftAction{TokenId: 1}, NftAction)
	i.ClearRequests()
	assert.Empty(t, i.GetRequests())
}

func TestMappingsCoverEveryIndex(t *testing.T) {
	_, ok := mappings[NftActionIndex]
	assert.True(t, ok)
}
