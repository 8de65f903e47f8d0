package registry

import (
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
)

const (
	MintAsset      = "mint-asset"
	UpdateLocation = "update-location"
	ListAsset      = "list-asset"
	GetAsset       = "get-asset"
	GetLastAssetId = "get-last-asset-id"
)

func (r *Registry) Call(ctx entity.CallContext, operation string, args entity.Args) entity.Result {
	switch operation {
	case MintAsset:
		if err := args.Expect(2); err != nil {
			return entity.Failure(err)
		}
		metadata, err := args.String(0)
		if err != nil {
			return entity.Failure(err)
		}
		location, err := args.String(1)
		if err != nil {
			return entity.Failure(err)
		}
		return entity.Ok(entity.Uint(r.Mint(ctx, metadata, location)))

	case UpdateLocation:
		if err := args.Expect(2); err != nil {
			return entity.Failure(err)
		}
		assetId, err := args.Uint(0)
		if err != nil {
			return entity.Failure(err)
		}
		location, err := args.String(1)
		if err != nil {
			return entity.Failure(err)
		}
		if err := r.UpdateLocation(ctx, assetId, location); err != nil {
			return entity.Failure(err)
		}
		return entity.OkEmpty()

	case ListAsset:
		if err := args.Expect(2); err != nil {
			return entity.Failure(err)
		}
		assetId, err := args.Uint(0)
		if err != nil {
			return entity.Failure(err)
		}
		price, err := args.Uint(1)
		if err != nil {
			return entity.Failure(err)
		}
		if err := r.ListAsset(ctx, assetId, price); err != nil {
			return entity.Failure(err)
		}
		return entity.OkEmpty()

	case GetAsset:
		assetId, err := args.Uint(0)
		if err != nil {
			return entity.Failure(err)
		}
		asset, err := r.GetAsset(assetId)
		if err != nil {
			return entity.Failure(err)
		}
		return entity.Ok(asset.Value())

	case GetLastAssetId:
		return entity.Ok(entity.Uint(r.LastAssetId()))
	}

	return entity.Failure(fmt.Errorf("%w: %s", entity.ErrUnknownOperation, operation))
}
