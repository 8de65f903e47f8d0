package entity

import (
	"crypto/md5"
	"fmt"
)

type Entity interface {
	Slug() string
}

type NftAction struct {
	Contract    string     `json:"contract"`
	TokenId     uint64     `json:"tokenId"`
	TxID        string     `json:"txId"`
	BlockNum    uint64     `json:"blockNum"`
	Action      ActionType `json:"action"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Marketplace string     `json:"marketplace,omitempty"`
	Cost        uint64     `json:"cost,omitempty"`
	Fee         uint64     `json:"fee,omitempty"`
	Location    string     `json:"location,omitempty"`
}

type ActionType string

const (
	AssetMintAction            ActionType = "mint-asset"
	AssetLocationAction        ActionType = "update-location"
	AssetListingAction         ActionType = "list-asset"
	TransferAction             ActionType = "transfer"
	MarketplaceSaleAction      ActionType = "sale"
	MarketplaceListingAction   ActionType = "listing"
	MarketplaceDelistingAction ActionType = "delisting"
	PlatformFeeAction          ActionType = "fee-update"
)

func (n NftAction) Slug() string {
	return CreateNftActionSlug(n.TokenId, n.Contract, n.TxID, string(n.Action))
}

func CreateNftActionSlug(tokenId uint64, contract, txId, action string) string {
	data := []byte(fmt.Sprintf("nftaction-%d-%s-%s-%s", tokenId, contract, txId, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}

func (n NftAction) IsAssetAction() bool {
	switch n.Action {
	case AssetMintAction, AssetLocationAction, AssetListingAction:
		return true
	}

	return false
}
