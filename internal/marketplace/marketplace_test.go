package marketplace

import (
	"errors"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const (
	deployer = entity.Principal("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	seller   = entity.Principal("ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5")
	buyer    = entity.Principal("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")
	stranger = entity.Principal("ST2JHG361ZXG51QTKY2NQCVBPPRRE2KZB1HR05NNC")
)

var (
	holding = deployer.Contract("nft-marketplace")
	nfts    = deployer.Contract("physical-assets")
)

type tokens struct {
	owners    map[uint64]entity.Principal
	transfers int
	fail      error
}

func (f *tokens) GetOwner(_ entity.CallContext, contract entity.Principal, tokenId uint64) (entity.Principal, error) {
	owner, ok := f.owners[tokenId]
	if contract != nfts || !ok {
		return "", errors.New("no such token")
	}
	return owner, nil
}

func (f *tokens) Transfer(ctx entity.CallContext, _ entity.Principal, tokenId uint64, from, to entity.Principal) error {
	if f.fail != nil {
		return f.fail
	}
	if f.owners[tokenId] != from {
		return errors.New("not the holder")
	}
	f.owners[tokenId] = to
	f.transfers++
	ctx.OnRollback(func() {
		f.owners[tokenId] = from
		f.transfers--
	})
	return nil
}

type currency struct {
	balances map[entity.Principal]uint64
	failTo   entity.Principal
}

func (f *currency) Transfer(ctx entity.CallContext, amount uint64, from, to entity.Principal) error {
	if to == f.failTo || f.balances[from] < amount {
		return errors.New("stx transfer failed")
	}
	f.balances[from] -= amount
	f.balances[to] += amount
	ctx.OnRollback(func() {
		f.balances[to] -= amount
		f.balances[from] += amount
	})
	return nil
}

type tx struct {
	undo    []func()
	actions []entity.NftAction
}

func (j *tx) OnRollback(undo func()) { j.undo = append(j.undo, undo) }

func (j *tx) Record(action entity.NftAction) { j.actions = append(j.actions, action) }

func (j *tx) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

type fixture struct {
	market   *Marketplace
	tokens   *tokens
	currency *currency
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		tokens:   &tokens{owners: map[uint64]entity.Principal{1: seller, 2: seller}},
		currency: &currency{balances: map[entity.Principal]uint64{buyer: 10000}},
	}
	m, err := NewMarketplace(Params{
		Holding:       holding,
		PlatformOwner: deployer,
		MinPrice:      entity.DefaultMinPrice,
		MaxPrice:      entity.DefaultMaxPrice,
		Fee:           entity.DefaultFee,
		MaxFee:        entity.DefaultMaxFee,
	}, f.tokens, f.currency)
	require.NoError(t, err)
	f.market = m

	return f
}

func call(sender entity.Principal) (entity.CallContext, *tx) {
	j := &tx{}
	return entity.CallContext{Sender: sender, Contract: holding, TxID: "0x1", BlockHeight: 10, Journal: j}, j
}

func TestListTakesCustody(t *testing.T) {
	f := newFixture(t)
	ctx, j := call(seller)

	require.NoError(t, f.market.List(ctx, nfts, 1, 5000))

	listing, err := f.market.GetListing(nfts, 1)
	require.NoError(t, err)
	assert.Equal(t, seller, listing.Seller)
	assert.Equal(t, uint64(5000), listing.Price)
	assert.Equal(t, uint64(10), listing.ListedAt)
	assert.Equal(t, holding, f.tokens.owners[1])
	require.Len(t, j.actions, 1)
	assert.Equal(t, entity.MarketplaceListingAction, j.actions[0].Action)
}

func TestListRejectsPriceBelowMinimum(t *testing.T) {
	f := newFixture(t)
	ctx, _ := call(seller)

	err := f.market.List(ctx, nfts, 1, 999)
	assert.Equal(t, entity.ErrInvalidPrice, err)

	assert.NoError(t, f.market.List(ctx, nfts, 2, 1000))
	_, err = f.market.GetListing(nfts, 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, seller, f.tokens.owners[1])
}

func TestListRejectsPriceAboveMaximum(t *testing.T) {
	f := newFixture(t)
	ctx, _ := call(seller)

	assert.Equal(t, entity.ErrInvalidPrice, f.market.List(ctx, nfts, 1, entity.DefaultMaxPrice+1))
}

func TestListRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx, _ := call(stranger)

	assert.Equal(t, entity.ErrNotOwner, f.market.List(ctx, nfts, 1, 5000))
	assert.ErrorIs(t, f.market.List(ctx, nfts, 99, 5000), entity.ErrNotOwner)
	assert.Empty(t, f.market.Listings())
}

func TestListFailsWhenCustodyTransferFails(t *testing.T) {
	f := newFixture(t)
	f.tokens.fail = errors.New("post-condition")
	ctx, _ := call(seller)

	assert.ErrorIs(t, f.market.List(ctx, nfts, 1, 5000), entity.ErrTransferFailed)
	assert.Empty(t, f.market.Listings())
}

func TestUnlistRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx, _ := call(seller)
	require.NoError(t, f.market.List(ctx, nfts, 1, 5000))

	other, _ := call(stranger)
	assert.Equal(t, entity.ErrNotOwner, f.market.Unlist(other, nfts, 1))

	ctx, j := call(seller)
	require.NoError(t, f.market.Unlist(ctx, nfts, 1))

	assert.Equal(t, seller, f.tokens.owners[1])
	_, err := f.market.GetListing(nfts, 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, entity.MarketplaceDelistingAction, j.actions[0].Action)

	assert.ErrorIs(t, f.market.Unlist(ctx, nfts, 1), entity.ErrNotFound)
}

// TestBuySettlesWithFee tests a 5000 micro-STX sale at 250 basis points.
func TestBuySettlesWithFee(t *testing.T) {
	f := newFixture(t)
	ctx, _ := call(seller)
	require.NoError(t, f.market.List(ctx, nfts, 1, 5000))

	ctx, j := call(buyer)
	require.NoError(t, f.market.Buy(ctx, nfts, 1, 5000))

	assert.Equal(t, uint64(4875), f.currency.balances[seller])
	assert.Equal(t, uint64(125), f.currency.balances[deployer])
	assert.Equal(t, uint64(5000), f.currency.balances[buyer])
	assert.Equal(t, buyer, f.tokens.owners[1])
	_, err := f.market.GetListing(nfts, 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	require.Len(t, j.actions, 1)
	sale := j.actions[0]
	assert.Equal(t, entity.MarketplaceSaleAction, sale.Action)
	assert.Equal(t, string(seller), sale.From)
	assert.Equal(t, string(buyer), sale.To)
	assert.Equal(t, uint64(5000), sale.Cost)
	assert.Equal(t, uint64(125), sale.Fee)
}

func TestBuyRejectsWrongPrice(t *testing.T) {
	f := newFixture(t)
	ctx, _ := call(seller)
	require.NoError(t, f.market.List(ctx, nfts, 1, 5000))

	ctx, _ = call(buyer)
	assert.Equal(t, entity.ErrWrongPrice, f.market.Buy(ctx, nfts, 1, 4999))
	assert.ErrorIs(t, f.market.Buy(ctx, nfts, 2, 5000), entity.ErrNotFound)
	assert.Equal(t, uint64(10000), f.currency.balances[buyer])
}

// TestBuyFeeFailureLeavesListing tests that a failing fee payment stops the
// sale before the token moves and that rollback restores the seller payment.
func TestBuyFeeFailureLeavesListing(t *testing.T) {
	f := newFixture(t)
	ctx, _ := call(seller)
	require.NoError(t, f.market.List(ctx, nfts, 1, 5000))
	f.currency.failTo = deployer

	ctx, j := call(buyer)
	err := f.market.Buy(ctx, nfts, 1, 5000)
	assert.ErrorIs(t, err, entity.ErrTransferFailed)
	assert.Contains(t, err.Error(), "platform fee")

	_, err = f.market.GetListing(nfts, 1)
	assert.NoError(t, err)
	assert.Equal(t, holding, f.tokens.owners[1])
	assert.Empty(t, j.actions)

	j.rollback()
	assert.Equal(t, uint64(10000), f.currency.balances[buyer])
	assert.Equal(t, uint64(0), f.currency.balances[seller])
}

func TestBuyWithZeroFeeSkipsFeeTransfer(t *testing.T) {
	f := newFixture(t)
	owner, _ := call(deployer)
	require.NoError(t, f.market.SetFee(owner, 0))
	f.currency.failTo = deployer

	ctx, _ := call(seller)
	require.NoError(t, f.market.List(ctx, nfts, 1, 5000))
	ctx, _ = call(buyer)
	require.NoError(t, f.market.Buy(ctx, nfts, 1, 5000))

	assert.Equal(t, uint64(5000), f.currency.balances[seller])
}

func TestSetFee(t *testing.T) {
	f := newFixture(t)

	other, _ := call(stranger)
	assert.Equal(t, entity.ErrNotOwner, f.market.SetFee(other, 100))

	owner, j := call(deployer)
	assert.Equal(t, entity.ErrInvalidFee, f.market.SetFee(owner, entity.DefaultMaxFee+1))
	assert.Equal(t, entity.DefaultFee, f.market.Fee())

	require.NoError(t, f.market.SetFee(owner, 500))
	assert.Equal(t, uint64(500), f.market.Fee())
	assert.Equal(t, entity.PlatformFeeAction, j.actions[0].Action)

	j.rollback()
	assert.Equal(t, entity.DefaultFee, f.market.Fee())
}

func TestParamsValidate(t *testing.T) {
	valid := Params{Holding: holding, PlatformOwner: deployer, MinPrice: 1000, MaxPrice: 2000, Fee: 250, MaxFee: 1000}
	assert.NoError(t, valid.Validate())

	tests := map[string]func(p *Params){
		"holding":     func(p *Params) { p.Holding = "nobody" },
		"owner":       func(p *Params) { p.PlatformOwner = "" },
		"zero min":    func(p *Params) { p.MinPrice = 0 },
		"min > max":   func(p *Params) { p.MinPrice = 3000 },
		"overflow":    func(p *Params) { p.MaxPrice = ^uint64(0) },
		"fee > max":   func(p *Params) { p.Fee = 2000 },
		"max too big": func(p *Params) { p.MaxFee = entity.BasisPoints },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestCallDispatch(t *testing.T) {
	f := newFixture(t)

	ctx, _ := call(seller)
	r := f.market.Call(ctx, ListNft, entity.Args{entity.PrincipalValue(nfts), entity.Uint(1), entity.Uint(5000)})
	require.True(t, r.Ok)

	r = f.market.Call(ctx, GetListing, entity.Args{entity.PrincipalValue(nfts), entity.Uint(1)})
	require.True(t, r.Ok)
	assert.Equal(t, entity.Uint(5000), r.Value.Tuple["price"])

	r = f.market.Call(ctx, GetListing, entity.Args{entity.PrincipalValue(nfts), entity.Uint(2)})
	assert.Equal(t, entity.None(), *r.Value)

	r = f.market.Call(ctx, GetPlatformFee, nil)
	assert.Equal(t, entity.Uint(entity.DefaultFee), *r.Value)

	r = f.market.Call(ctx, BuyNft, entity.Args{entity.PrincipalValue(nfts), entity.Uint(1)})
	assert.Equal(t, entity.ErrInvalidArgs, r.Error)

	r = f.market.Call(ctx, "withdraw", nil)
	assert.Equal(t, entity.ErrUnknownOperation, r.Error)
}
