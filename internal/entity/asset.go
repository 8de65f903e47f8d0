package entity

import (
	"fmt"
	"github.com/gosimple/slug"
)

// Asset is a physical item registered on chain.
type Asset struct {
	Id       uint64    `json:"id"`
	Owner    Principal `json:"owner"`
	Metadata string    `json:"metadata"`
	Location string    `json:"location"`
	Price    uint64    `json:"price"`
	Listed   bool      `json:"listed"`
	MintedAt uint64    `json:"mintedAt"`
}

func (a Asset) Slug() string {
	return CreateAssetSlug(a.Id)
}

func CreateAssetSlug(id uint64) string {
	return slug.Make(fmt.Sprintf("asset-%d", id))
}

func (a Asset) Value() Value {
	return Tuple(map[string]Value{
		"owner":    PrincipalValue(a.Owner),
		"metadata": String(a.Metadata),
		"location": String(a.Location),
		"price":    Uint(a.Price),
		"listed":   Bool(a.Listed),
	})
}
