package registry

import (
	"github.com/ZilDuck/stacks-asset-marketplace/internal/chain"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const (
	deployer = entity.Principal("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	alice    = entity.Principal("ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5")
	bob      = entity.Principal("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")
)

var contract = deployer.Contract("asset-registry")

func setup(t *testing.T) (*chain.Host, *Registry) {
	t.Helper()

	host := chain.NewHost(chain.NewStxLedger(), chain.NewCollections(), nil)
	r := NewRegistry()
	require.NoError(t, host.Deploy(contract, r))

	return host, r
}

func mint(t *testing.T, host *chain.Host, sender entity.Principal, metadata, location string) uint64 {
	t.Helper()

	receipt := host.Call(contract, MintAsset, entity.Args{entity.String(metadata), entity.String(location)}, sender)
	require.True(t, receipt.Result.Ok, receipt.Result.Error)
	id, err := receipt.Result.Value.Uint64()
	require.NoError(t, err)

	return id
}

// TestMintAssignsIncreasingIds tests that ids start at 1 and the minter owns
// the asset.
func TestMintAssignsIncreasingIds(t *testing.T) {
	host, r := setup(t)

	assert.Equal(t, uint64(1), mint(t, host, alice, "ipfs://gold", "vault-a"))
	assert.Equal(t, uint64(2), mint(t, host, bob, "ipfs://silver", "vault-b"))

	asset, err := r.GetAsset(2)
	require.NoError(t, err)
	assert.Equal(t, bob, asset.Owner)
	assert.Equal(t, "ipfs://silver", asset.Metadata)
	assert.Equal(t, "vault-b", asset.Location)
	assert.False(t, asset.Listed)
	assert.Equal(t, uint64(2), r.LastAssetId())
}

func TestUpdateLocation(t *testing.T) {
	host, r := setup(t)
	id := mint(t, host, alice, "ipfs://gold", "vault-a")

	receipt := host.Call(contract, UpdateLocation, entity.Args{entity.Uint(id), entity.String("vault-c")}, bob)
	assert.Equal(t, entity.ErrNotAuthorized, receipt.Result.Error)
	assert.Equal(t, uint(100), receipt.Result.Code)

	receipt = host.Call(contract, UpdateLocation, entity.Args{entity.Uint(id), entity.String("vault-c")}, alice)
	require.True(t, receipt.Result.Ok)

	asset, _ := r.GetAsset(id)
	assert.Equal(t, "vault-c", asset.Location)
}

func TestListAsset(t *testing.T) {
	host, r := setup(t)
	id := mint(t, host, alice, "ipfs://gold", "vault-a")

	receipt := host.Call(contract, ListAsset, entity.Args{entity.Uint(id), entity.Uint(5000)}, bob)
	assert.Equal(t, entity.ErrNotAuthorized, receipt.Result.Error)

	receipt = host.Call(contract, ListAsset, entity.Args{entity.Uint(id), entity.Uint(0)}, alice)
	assert.Equal(t, entity.ErrInvalidPrice, receipt.Result.Error)

	receipt = host.Call(contract, ListAsset, entity.Args{entity.Uint(id), entity.Uint(5000)}, alice)
	require.True(t, receipt.Result.Ok)

	asset, _ := r.GetAsset(id)
	assert.True(t, asset.Listed)
	assert.Equal(t, uint64(5000), asset.Price)
	assert.Equal(t, alice, asset.Owner)
}

func TestUnknownAsset(t *testing.T) {
	host, _ := setup(t)

	receipt := host.Call(contract, UpdateLocation, entity.Args{entity.Uint(42), entity.String("x")}, alice)
	assert.Equal(t, entity.ErrNotFound, receipt.Result.Error)

	receipt = host.Call(contract, ListAsset, entity.Args{entity.Uint(42), entity.Uint(5000)}, alice)
	assert.Equal(t, entity.ErrNotFound, receipt.Result.Error)

	result := host.Read(contract, GetAsset, entity.Args{entity.Uint(42)}, alice)
	assert.Equal(t, entity.ErrNotFound, result.Error)
}

func TestInvalidArguments(t *testing.T) {
	host, r := setup(t)

	receipt := host.Call(contract, MintAsset, entity.Args{entity.String("ipfs://gold")}, alice)
	assert.Equal(t, entity.ErrInvalidArgs, receipt.Result.Error)

	receipt = host.Call(contract, MintAsset, entity.Args{entity.Uint(1), entity.String("vault")}, alice)
	assert.Equal(t, entity.ErrInvalidArgs, receipt.Result.Error)

	receipt = host.Call(contract, "burn-asset", nil, alice)
	assert.Equal(t, entity.ErrUnknownOperation, receipt.Result.Error)

	assert.Equal(t, uint64(0), r.LastAssetId())
}

// TestMintRollback tests that a rolled back mint releases its id.
func TestMintRollback(t *testing.T) {
	host, r := setup(t)

	result := host.Read(contract, MintAsset, entity.Args{entity.String("ipfs://gold"), entity.String("vault-a")}, alice)
	require.True(t, result.Ok)

	assert.Equal(t, uint64(0), r.LastAssetId())
	_, err := r.GetAsset(1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, uint64(1), mint(t, host, alice, "ipfs://gold", "vault-a"))
}

func TestGetAsset(t *testing.T) {
	host, _ := setup(t)
	id := mint(t, host, alice, "ipfs://gold", "vault-a")

	result := host.Read(contract, GetAsset, entity.Args{entity.Uint(id)}, bob)
	require.True(t, result.Ok)
	assert.Equal(t, entity.PrincipalValue(alice), result.Value.Tuple["owner"])
	assert.Equal(t, entity.String("vault-a"), result.Value.Tuple["location"])

	last := host.Read(contract, GetLastAssetId, nil, bob)
	assert.Equal(t, entity.Uint(1), *last.Value)
}
