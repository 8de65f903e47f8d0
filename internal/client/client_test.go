package client

import (
	"errors"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/api"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/chain"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/marketplace"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/registry"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const (
	deployer = entity.Principal("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	seller   = entity.Principal("ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5")
	buyer    = entity.Principal("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")
)

var (
	registryContract    = deployer.Contract("asset-registry")
	marketplaceContract = deployer.Contract("nft-marketplace")
	collection          = deployer.Contract("physical-assets")
)

func newTestClient(t *testing.T) (*Client, *chain.Host) {
	t.Helper()

	host := chain.NewHost(chain.NewStxLedger(), chain.NewCollections(), nil)
	_, err := host.DeployCollection(collection)
	require.NoError(t, err)

	r := registry.NewRegistry()
	require.NoError(t, host.Deploy(registryContract, r))

	m, err := marketplace.NewMarketplace(marketplace.Params{
		Holding:       marketplaceContract,
		PlatformOwner: deployer,
		MinPrice:      entity.DefaultMinPrice,
		MaxPrice:      entity.DefaultMaxPrice,
		Fee:           entity.DefaultFee,
		MaxFee:        entity.DefaultMaxFee,
	}, host.Collections(), host.Stx())
	require.NoError(t, err)
	require.NoError(t, host.Deploy(marketplaceContract, m))

	server := httptest.NewServer(api.NewServer(host, r, m, repository.NewNftActionRepository(nil), time.Minute).Router())
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/", time.Second, 0)
	require.NoError(t, err)

	return c, host
}

// TestClientSale tests a full listing and sale over HTTP.
func TestClientSale(t *testing.T) {
	c, host := newTestClient(t)
	host.Faucet(buyer, 5000)

	receipt, err := c.Call(collection, "mint", deployer, entity.PrincipalValue(seller))
	require.NoError(t, err)
	require.True(t, receipt.Result.Ok)

	receipt, err = c.Call(marketplaceContract, marketplace.ListNft, seller, entity.PrincipalValue(collection), entity.Uint(1), entity.Uint(5000))
	require.NoError(t, err)
	require.True(t, receipt.Result.Ok, receipt.Result.Reason)

	listing, err := c.GetListing(collection, 1)
	require.NoError(t, err)
	assert.Equal(t, seller, listing.Seller)

	listings, err := c.GetListings()
	require.NoError(t, err)
	assert.Len(t, listings, 1)

	receipt, err = c.Call(marketplaceContract, marketplace.BuyNft, buyer, entity.PrincipalValue(collection), entity.Uint(1), entity.Uint(4000))
	require.NoError(t, err)
	assert.Equal(t, entity.ErrWrongPrice, receipt.Result.Error)

	receipt, err = c.Call(marketplaceContract, marketplace.BuyNft, buyer, entity.PrincipalValue(collection), entity.Uint(1), entity.Uint(5000))
	require.NoError(t, err)
	require.True(t, receipt.Result.Ok, receipt.Result.Reason)
	assert.Equal(t, uint64(4875), host.Balance(seller))

	_, err = c.GetListing(collection, 1)
	var httpErr HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	owner, err := c.Read(collection, "get-owner", buyer, entity.Uint(1))
	require.NoError(t, err)
	assert.Equal(t, entity.PrincipalValue(buyer), *owner.Value)
}

func TestClientAssetAndFee(t *testing.T) {
	c, _ := newTestClient(t)

	receipt, err := c.Call(registryContract, registry.MintAsset, seller, entity.String("ipfs://gold"), entity.String("vault-a"))
	require.NoError(t, err)
	require.True(t, receipt.Result.Ok)

	asset, err := c.GetAsset(1)
	require.NoError(t, err)
	assert.Equal(t, "vault-a", asset.Location)

	fee, err := c.GetFee()
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultFee, fee.Fee)
	assert.Equal(t, entity.DefaultMaxFee, fee.MaxFee)

	actions, err := c.GetActions(registryContract, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestNewClientRequiresUrl(t *testing.T) {
	_, err := NewClient("", time.Second, 0)
	assert.Error(t, err)
}
