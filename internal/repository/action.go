package repository

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/elastic_search"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"sync"
)

var (
	ErrNftActionNotFound = errors.New("nft action not found")
)

type NftActionRepository interface {
	Add(action entity.NftAction)
	GetNftActions(contract string, tokenId uint64, size int) ([]entity.NftAction, error)
	GetLatestAction(contract string, tokenId uint64) (*entity.NftAction, error)
}

type nftActionRepository struct {
	elastic elastic_search.Index

	mu      sync.RWMutex
	history map[string][]entity.NftAction
}

func NewNftActionRepository(elastic elastic_search.Index) NftActionRepository {
	return &nftActionRepository{elastic: elastic, history: make(map[string][]entity.NftAction)}
}

func (r *nftActionRepository) Add(action entity.NftAction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := historyKey(action.Contract, action.TokenId)
	r.history[key] = append(r.history[key], action)
}

// GetNftActions returns the newest size actions for a token, newest first.
// History that is no longer held in memory is read back from the index.
func (r *nftActionRepository) GetNftActions(contract string, tokenId uint64, size int) ([]entity.NftAction, error) {
	r.mu.RLock()
	held := r.history[historyKey(contract, tokenId)]
	actions := make([]entity.NftAction, 0, len(held))
	for idx := len(held) - 1; idx >= 0 && len(actions) < size; idx-- {
		actions = append(actions, held[idx])
	}
	r.mu.RUnlock()

	if len(actions) != 0 || r.elastic == nil || !r.elastic.Enabled() {
		return actions, nil
	}

	return r.searchNftActions(contract, tokenId, size)
}

func (r *nftActionRepository) GetLatestAction(contract string, tokenId uint64) (*entity.NftAction, error) {
	actions, err := r.GetNftActions(contract, tokenId, 1)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, ErrNftActionNotFound
	}

	return &actions[0], nil
}

func (r *nftActionRepository) searchNftActions(contract string, tokenId uint64, size int) ([]entity.NftAction, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract", contract),
		elastic.NewTermQuery("tokenId", tokenId),
	)

	results, err := search(context.Background(), r.elastic.Client().
		Search(r.elastic.Name(elastic_search.NftActionIndex)).
		Query(query).
		Sort("blockNum", false).
		Size(size))
	if err != nil {
		return nil, err
	}

	actions := make([]entity.NftAction, 0, len(results.Hits.Hits))
	for _, hit := range results.Hits.Hits {
		var action entity.NftAction
		if err := json.Unmarshal(hit.Source, &action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return actions, nil
}

func historyKey(contract string, tokenId uint64) string {
	return entity.ListingKey{Contract: entity.Principal(contract), TokenId: tokenId}.String()
}
