// Package registry is the physical-asset authentication contract: it mints
// asset records and lets their owners move and list them.
package registry

import (
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"go.uber.org/zap"
)

type Registry struct {
	assets      map[uint64]*entity.Asset
	lastAssetId uint64
}

func NewRegistry() *Registry {
	return &Registry{assets: make(map[uint64]*entity.Asset)}
}

func (r *Registry) Mint(ctx entity.CallContext, metadata, location string) uint64 {
	r.lastAssetId++
	asset := &entity.Asset{
		Id:       r.lastAssetId,
		Owner:    ctx.Sender,
		Metadata: metadata,
		Location: location,
		MintedAt: ctx.BlockHeight,
	}
	r.assets[asset.Id] = asset
	ctx.OnRollback(func() {
		delete(r.assets, asset.Id)
		r.lastAssetId--
	})

	ctx.Record(entity.NftAction{
		Contract: string(ctx.Contract),
		TokenId:  asset.Id,
		Action:   entity.AssetMintAction,
		To:       string(asset.Owner),
		Location: location,
	})
	ctx.Logger().With(zap.Uint64("assetId", asset.Id)).Info("Registry: Minted asset")

	return asset.Id
}

func (r *Registry) UpdateLocation(ctx entity.CallContext, assetId uint64, location string) error {
	asset, err := r.owned(ctx, assetId)
	if err != nil {
		return err
	}

	previous := asset.Location
	asset.Location = location
	ctx.OnRollback(func() {
		asset.Location = previous
	})

	ctx.Record(entity.NftAction{
		Contract: string(ctx.Contract),
		TokenId:  asset.Id,
		Action:   entity.AssetLocationAction,
		From:     string(asset.Owner),
		Location: location,
	})

	return nil
}

func (r *Registry) ListAsset(ctx entity.CallContext, assetId, price uint64) error {
	asset, err := r.owned(ctx, assetId)
	if err != nil {
		return err
	}
	if price == 0 {
		return entity.ErrInvalidPrice
	}

	previous := *asset
	asset.Price = price
	asset.Listed = true
	ctx.OnRollback(func() {
		*asset = previous
	})

	ctx.Record(entity.NftAction{
		Contract: string(ctx.Contract),
		TokenId:  asset.Id,
		Action:   entity.AssetListingAction,
		From:     string(asset.Owner),
		Cost:     price,
	})

	return nil
}

func (r *Registry) GetAsset(assetId uint64) (entity.Asset, error) {
	asset, ok := r.assets[assetId]
	if !ok {
		return entity.Asset{}, fmt.Errorf("%w: asset %d", entity.ErrNotFound, assetId)
	}

	return *asset, nil
}

func (r *Registry) LastAssetId() uint64 {
	return r.lastAssetId
}

// owned returns the asset when the caller owns it.
func (r *Registry) owned(ctx entity.CallContext, assetId uint64) (*entity.Asset, error) {
	asset, ok := r.assets[assetId]
	if !ok {
		return nil, fmt.Errorf("%w: asset %d", entity.ErrNotFound, assetId)
	}
	if err := entity.Authorize(asset.Owner, ctx.Sender, entity.ErrNotAuthorized); err != nil {
		return nil, err
	}

	return asset, nil
}
