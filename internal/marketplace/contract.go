package marketplace

import (
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
)

const (
	ListNft        = "list-nft"
	UnlistNft      = "unlist-nft"
	BuyNft         = "buy-nft"
	SetPlatformFee = "set-platform-fee"
	GetListing     = "get-listing"
	GetPlatformFee = "get-platform-fee"
)

func (m *Marketplace) Call(ctx entity.CallContext, operation string, args entity.Args) entity.Result {
	switch operation {
	case ListNft:
		if err := args.Expect(3); err != nil {
			return entity.Failure(err)
		}
		contract, tokenId, err := nft(args)
		if err != nil {
			return entity.Failure(err)
		}
		price, err := args.Uint(2)
		if err != nil {
			return entity.Failure(err)
		}
		if err := m.List(ctx, contract, tokenId, price); err != nil {
			return entity.Failure(err)
		}
		return entity.OkEmpty()

	case UnlistNft:
		if err := args.Expect(2); err != nil {
			return entity.Failure(err)
		}
		contract, tokenId, err := nft(args)
		if err != nil {
			return entity.Failure(err)
		}
		if err := m.Unlist(ctx, contract, tokenId); err != nil {
			return entity.Failure(err)
		}
		return entity.OkEmpty()

	case BuyNft:
		if err := args.Expect(3); err != nil {
			return entity.Failure(err)
		}
		contract, tokenId, err := nft(args)
		if err != nil {
			return entity.Failure(err)
		}
		price, err := args.Uint(2)
		if err != nil {
			return entity.Failure(err)
		}
		if err := m.Buy(ctx, contract, tokenId, price); err != nil {
			return entity.Failure(err)
		}
		return entity.OkEmpty()

	case SetPlatformFee:
		if err := args.Expect(1); err != nil {
			return entity.Failure(err)
		}
		fee, err := args.Uint(0)
		if err != nil {
			return entity.Failure(err)
		}
		if err := m.SetFee(ctx, fee); err != nil {
			return entity.Failure(err)
		}
		return entity.OkEmpty()

	case GetListing:
		contract, tokenId, err := nft(args)
		if err != nil {
			return entity.Failure(err)
		}
		listing, err := m.GetListing(contract, tokenId)
		if err != nil {
			return entity.Ok(entity.None())
		}
		return entity.Ok(listing.Value())

	case GetPlatformFee:
		return entity.Ok(entity.Uint(m.Fee()))
	}

	return entity.Failure(fmt.Errorf("%w: %s", entity.ErrUnknownOperation, operation))
}

func nft(args entity.Args) (entity.Principal, uint64, error) {
	contract, err := args.Principal(0)
	if err != nil {
		return "", 0, err
	}
	tokenId, err := args.Uint(1)
	if err != nil {
		return "", 0, err
	}

	return contract, tokenId, nil
}
