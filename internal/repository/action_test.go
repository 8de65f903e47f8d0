package repository

import (
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/elastic_search"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const contract = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.physical-assets"

func newRepo(t *testing.T) NftActionRepository {
	t.Helper()

	elastic, err := elastic_search.New(config.Config{Network: "devnet", Index: "marketplace"})
	require.NoError(t, err)

	return NewNftActionRepository(elastic)
}

func TestGetNftActionsNewestFirst(t *testing.T) {
	repo := newRepo(t)
	repo.Add(entity.NftAction{Contract: contract, TokenId: 1, BlockNum: 1, Action: entity.MarketplaceListingAction})
	repo.Add(entity.NftAction{Contract: contract, TokenId: 1, BlockNum: 2, Action: entity.MarketplaceDelistingAction})
	repo.Add(entity.NftAction{Contract: contract, TokenId: 1, BlockNum: 3, Action: entity.MarketplaceListingAction})
	repo.Add(entity.NftAction{Contract: contract, TokenId: 2, BlockNum: 4, Action: entity.MarketplaceListingAction})

	actions, err := repo.GetNftActions(contract, 1, 2)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, uint64(3), actions[0].BlockNum)
	assert.Equal(t, uint64(2), actions[1].BlockNum)

	actions, err = repo.GetNftActions(contract, 1, 10)
	require.NoError(t, err)
	assert.Len(t, actions, 3)
}

func TestGetLatestAction(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.GetLatestAction(contract, 1)
	assert.ErrorIs(t, err, ErrNftActionNotFound)

	repo.Add(entity.NftAction{Contract: contract, TokenId: 1, BlockNum: 5, Action: entity.MarketplaceSaleAction})
	latest, err := repo.GetLatestAction(contract, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.MarketplaceSaleAction, latest.Action)
}

func TestGetNftActionsWithoutHistory(t *testing.T) {
	repo := NewNftActionRepository(nil)

	actions, err := repo.GetNftActions(contract, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
