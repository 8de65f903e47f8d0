package indexer

import (
	"encoding/json"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/elastic_search"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/event"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/messenger"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/repository"
	"go.uber.org/zap"
)

// MarketplaceIndexer records every committed action: history, search index
// and, for sales, a queue notification.
type MarketplaceIndexer interface {
	Subscribe(events *event.Manager)
	IndexAction(action entity.NftAction) error
}

type marketplaceIndexer struct {
	elastic    elastic_search.Index
	actionRepo repository.NftActionRepository
	messenger  messenger.MessageService
}

func NewMarketplaceIndexer(
	elastic elastic_search.Index,
	actionRepo repository.NftActionRepository,
	messenger messenger.MessageService,
) MarketplaceIndexer {
	return marketplaceIndexer{elastic, actionRepo, messenger}
}

func (i marketplaceIndexer) Subscribe(events *event.Manager) {
	for _, t := range event.ActionEvents {
		events.AddEventListener(t, i.indexFromEvent)
	}
}

func (i marketplaceIndexer) indexFromEvent(msg interface{}) {
	action, ok := msg.(entity.NftAction)
	if !ok {
		zap.L().Error("Indexer: Unexpected event payload")
		return
	}

	if err := i.IndexAction(action); err != nil {
		zap.L().With(zap.String("txId", action.TxID), zap.Error(err)).Error("Indexer: Failed to index action")
	}
}

func (i marketplaceIndexer) IndexAction(action entity.NftAction) error {
	zap.L().With(
		zap.String("txId", action.TxID),
		zap.String("contract", action.Contract),
		zap.Uint64("tokenId", action.TokenId),
		zap.String("action", string(action.Action)),
	).Debug("Indexer: Action")

	i.actionRepo.Add(action)
	i.elastic.AddIndexRequest(i.elastic.Name(elastic_search.NftActionIndex), action, elastic_search.NftAction)
	i.elastic.BatchPersist()

	if action.Action == entity.MarketplaceSaleAction {
		return i.notifySale(action)
	}

	return nil
}

func (i marketplaceIndexer) notifySale(action entity.NftAction) error {
	if i.messenger == nil || !i.messenger.Enabled(messenger.MarketplaceSale) {
		return nil
	}

	body, err := json.Marshal(entity.MarketplaceSale{
		Marketplace: action.Marketplace,
		TxID:        action.TxID,
		BlockNum:    action.BlockNum,
		Contract:    entity.Principal(action.Contract),
		TokenId:     action.TokenId,
		Buyer:       entity.Principal(action.To),
		Seller:      entity.Principal(action.From),
		Cost:        action.Cost,
		Fee:         action.Fee,
	})
	if err != nil {
		return err
	}

	return i.messenger.SendMessage(messenger.MarketplaceSale, body)
}
