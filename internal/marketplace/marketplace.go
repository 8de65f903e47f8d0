// Package marketplace is the NFT marketplace contract. Listed tokens are held
// in custody by the marketplace principal until they are unlisted or sold.
package marketplace

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"go.uber.org/zap"
	"sort"
)

// Tokens is the NFT contract collaborator.
type Tokens interface {
	GetOwner(ctx entity.CallContext, contract entity.Principal, tokenId uint64) (entity.Principal, error)
	Transfer(ctx entity.CallContext, contract entity.Principal, tokenId uint64, from, to entity.Principal) error
}

// Currency is the native STX transfer primitive.
type Currency interface {
	Transfer(ctx entity.CallContext, amount uint64, from, to entity.Principal) error
}

type Params struct {
	Holding       entity.Principal
	PlatformOwner entity.Principal
	MinPrice      uint64
	MaxPrice      uint64
	Fee           uint64
	MaxFee        uint64
}

func (p Params) Validate() error {
	if err := p.Holding.Validate(); err != nil {
		return fmt.Errorf("holding: %w", err)
	}
	if err := p.PlatformOwner.Validate(); err != nil {
		return fmt.Errorf("platform owner: %w", err)
	}
	if p.MinPrice == 0 || p.MinPrice > p.MaxPrice {
		return fmt.Errorf("invalid price bounds [%d, %d]", p.MinPrice, p.MaxPrice)
	}
	if p.MaxPrice > ^uint64(0)/entity.BasisPoints {
		return errors.New("max price overflows fee computation")
	}
	if p.MaxFee >= entity.BasisPoints || p.Fee > p.MaxFee {
		return fmt.Errorf("invalid fee %d with max %d", p.Fee, p.MaxFee)
	}

	return nil
}

type Marketplace struct {
	params   Params
	fee      uint64
	listings map[entity.ListingKey]*entity.Listing
	tokens   Tokens
	currency Currency
}

func NewMarketplace(params Params, tokens Tokens, currency Currency) (*Marketplace, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Marketplace{
		params:   params,
		fee:      params.Fee,
		listings: make(map[entity.ListingKey]*entity.Listing),
		tokens:   tokens,
		currency: currency,
	}, nil
}

func (m *Marketplace) List(ctx entity.CallContext, contract entity.Principal, tokenId, price uint64) error {
	owner, err := m.tokens.GetOwner(ctx, contract, tokenId)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrNotOwner, err)
	}
	if err := entity.Authorize(owner, ctx.Sender, entity.ErrNotOwner); err != nil {
		return err
	}
	if price < m.params.MinPrice || price > m.params.MaxPrice {
		return entity.ErrInvalidPrice
	}

	if err := m.tokens.Transfer(ctx, contract, tokenId, ctx.Sender, m.params.Holding); err != nil {
		return fmt.Errorf("%w: custody: %v", entity.ErrTransferFailed, err)
	}

	listing := &entity.Listing{
		Contract: contract,
		TokenId:  tokenId,
		Seller:   ctx.Sender,
		Price:    price,
		ListedAt: ctx.BlockHeight,
	}
	m.listings[listing.Key()] = listing
	ctx.OnRollback(func() {
		delete(m.listings, listing.Key())
	})

	ctx.Record(m.action(listing, entity.MarketplaceListingAction, string(listing.Seller), string(m.params.Holding), 0))
	ctx.Logger().With(
		zap.String("nft", listing.Key().String()),
		zap.Uint64("price", price),
	).Info("Marketplace listing")

	return nil
}

func (m *Marketplace) Unlist(ctx entity.CallContext, contract entity.Principal, tokenId uint64) error {
	listing, err := m.GetListing(contract, tokenId)
	if err != nil {
		return err
	}
	if err := entity.Authorize(listing.Seller, ctx.Sender, entity.ErrNotOwner); err != nil {
		return err
	}

	if err := m.tokens.Transfer(ctx, contract, tokenId, m.params.Holding, listing.Seller); err != nil {
		return fmt.Errorf("%w: custody: %v", entity.ErrTransferFailed, err)
	}
	m.remove(ctx, listing)

	ctx.Record(m.action(&listing, entity.MarketplaceDelistingAction, string(m.params.Holding), string(listing.Seller), 0))
	ctx.Logger().With(zap.String("nft", listing.Key().String())).Info("Marketplace delisting")

	return nil
}

// Buy settles a listing in a fixed order: seller payment, platform fee, token
// custody, listing removal. The first failing step ends the call.
func (m *Marketplace) Buy(ctx entity.CallContext, contract entity.Principal, tokenId, offered uint64) error {
	listing, err := m.GetListing(contract, tokenId)
	if err != nil {
		return err
	}
	if offered != listing.Price {
		return entity.ErrWrongPrice
	}

	buyer := ctx.Sender
	fee := entity.PlatformFee(listing.Price, m.fee)

	if err := m.currency.Transfer(ctx, listing.Price-fee, buyer, listing.Seller); err != nil {
		return fmt.Errorf("%w: seller payment: %v", entity.ErrTransferFailed, err)
	}
	if fee > 0 {
		if err := m.currency.Transfer(ctx, fee, buyer, m.params.PlatformOwner); err != nil {
			return fmt.Errorf("%w: platform fee: %v", entity.ErrTransferFailed, err)
		}
	}
	if err := m.tokens.Transfer(ctx, contract, tokenId, m.params.Holding, buyer); err != nil {
		return fmt.Errorf("%w: custody: %v", entity.ErrTransferFailed, err)
	}
	m.remove(ctx, listing)

	ctx.Record(m.action(&listing, entity.MarketplaceSaleAction, string(listing.Seller), string(buyer), fee))
	ctx.Logger().With(
		zap.String("nft", listing.Key().String()),
		zap.String("from", string(listing.Seller)),
		zap.String("to", string(buyer)),
		zap.Uint64("cost", listing.Price),
		zap.Uint64("fee", fee),
	).Info("Marketplace trade")

	return nil
}

func (m *Marketplace) SetFee(ctx entity.CallContext, fee uint64) error {
	if err := entity.Authorize(m.params.PlatformOwner, ctx.Sender, entity.ErrNotOwner); err != nil {
		return err
	}
	if fee > m.params.MaxFee {
		return entity.ErrInvalidFee
	}

	previous := m.fee
	m.fee = fee
	ctx.OnRollback(func() {
		m.fee = previous
	})

	ctx.Record(entity.NftAction{
		Contract:    string(ctx.Contract),
		Action:      entity.PlatformFeeAction,
		From:        string(ctx.Sender),
		Marketplace: entity.MarketplaceName,
		Fee:         fee,
	})
	ctx.Logger().With(zap.Uint64("previous", previous), zap.Uint64("fee", fee)).Info("Marketplace fee updated")

	return nil
}

func (m *Marketplace) Fee() uint64 {
	return m.fee
}

func (m *Marketplace) Params() Params {
	return m.params
}

func (m *Marketplace) GetListing(contract entity.Principal, tokenId uint64) (entity.Listing, error) {
	listing, ok := m.listings[entity.ListingKey{Contract: contract, TokenId: tokenId}]
	if !ok {
		return entity.Listing{}, fmt.Errorf("%w: listing %s/%d", entity.ErrNotFound, contract, tokenId)
	}

	return *listing, nil
}

func (m *Marketplace) Listings() []entity.Listing {
	listings := make([]entity.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		listings = append(listings, *l)
	}
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].Contract != listings[j].Contract {
			return listings[i].Contract < listings[j].Contract
		}
		return listings[i].TokenId < listings[j].TokenId
	})

	return listings
}

func (m *Marketplace) remove(ctx entity.CallContext, listing entity.Listing) {
	delete(m.listings, listing.Key())
	ctx.OnRollback(func() {
		m.listings[listing.Key()] = &listing
	})
}

func (m *Marketplace) action(l *entity.Listing, t entity.ActionType, from, to string, fee uint64) entity.NftAction {
	return entity.NftAction{
		Contract:    string(l.Contract),
		TokenId:     l.TokenId,
		Action:      t,
		From:        from,
		To:          to,
		Marketplace: entity.MarketplaceName,
		Cost:        l.Price,
		Fee:         fee,
	}
}
