package entity

import (
	"fmt"
	"github.com/gosimple/slug"
)

const (
	BasisPoints     uint64 = 10000
	MarketplaceName string = "stacks-marketplace"
	DefaultMinPrice uint64 = 1000
	DefaultMaxPrice uint64 = 1000000000000
	DefaultFee      uint64 = 250
	DefaultMaxFee   uint64 = 1000
)

type ListingKey struct {
	Contract Principal
	TokenId  uint64
}

func (k ListingKey) String() string {
	return fmt.Sprintf("%s/%d", k.Contract, k.TokenId)
}

type Listing struct {
	Contract Principal `json:"contract"`
	TokenId  uint64    `json:"tokenId"`
	Seller   Principal `json:"seller"`
	Price    uint64    `json:"price"`
	ListedAt uint64    `json:"listedAt"`
}

func (l Listing) Key() ListingKey {
	return ListingKey{l.Contract, l.TokenId}
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.TokenId, string(l.Contract))
}

func CreateListingSlug(tokenId uint64, contract string) string {
	return slug.Make(fmt.Sprintf("listing-%d-%s", tokenId, contract))
}

func (l Listing) Value() Value {
	return Tuple(map[string]Value{
		"seller": PrincipalValue(l.Seller),
		"price":  Uint(l.Price),
	})
}

// PlatformFee returns floor(price * bps / 10000).
func PlatformFee(price, bps uint64) uint64 {
	return price * bps / BasisPoints
}

type MarketplaceSale struct {
	Marketplace string    `json:"marketplace"`
	TxID        string    `json:"txId"`
	BlockNum    uint64    `json:"blockNum"`
	Contract    Principal `json:"contract"`
	TokenId     uint64    `json:"tokenId"`
	Buyer       Principal `json:"buyer"`
	Seller      Principal `json:"seller"`
	Cost        uint64    `json:"cost"`
	Fee         uint64    `json:"fee"`
}
