package event

import "github.com/ZilDuck/stacks-asset-marketplace/internal/entity"

type Type string

const (
	AssetMintedEvent        Type = "AssetMintedEvent"
	AssetUpdatedEvent       Type = "AssetUpdatedEvent"
	NftTransferredEvent     Type = "NftTransferredEvent"
	NftListedEvent          Type = "NftListedEvent"
	NftDelistedEvent        Type = "NftDelistedEvent"
	NftSoldEvent            Type = "NftSoldEvent"
	PlatformFeeUpdatedEvent Type = "PlatformFeeUpdatedEvent"
)

// ActionEvents is every event type that carries a committed entity.NftAction.
var ActionEvents = []Type{
	AssetMintedEvent,
	AssetUpdatedEvent,
	NftTransferredEvent,
	NftListedEvent,
	NftDelistedEvent,
	NftSoldEvent,
	PlatformFeeUpdatedEvent,
}

func ForAction(action entity.NftAction) Type {
	switch action.Action {
	case entity.AssetMintAction:
		return AssetMintedEvent
	case entity.AssetLocationAction, entity.AssetListingAction:
		return AssetUpdatedEvent
	case entity.MarketplaceListingAction:
		return NftListedEvent
	case entity.MarketplaceDelistingAction:
		return NftDelistedEvent
	case entity.MarketplaceSaleAction:
		return NftSoldEvent
	case entity.PlatformFeeAction:
		return PlatformFeeUpdatedEvent
	}

	return NftTransferredEvent
}
