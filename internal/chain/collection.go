package chain

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"go.uber.org/zap"
)

var (
	ErrCollectionNotFound = errors.New("nft collection not found")
	ErrTokenNotFound      = errors.New("token not found")
	ErrNotTokenOwner      = errors.New("sender does not own token")
)

// Collection is a SIP-009 style non-fungible token contract.
type Collection struct {
	contract    entity.Principal
	owners      map[uint64]entity.Principal
	lastTokenId uint64
}

func NewCollection(contract entity.Principal) *Collection {
	return &Collection{contract: contract, owners: make(map[uint64]entity.Principal)}
}

func (c *Collection) Principal() entity.Principal {
	return c.contract
}

func (c *Collection) GetOwner(tokenId uint64) (entity.Principal, error) {
	owner, ok := c.owners[tokenId]
	if !ok {
		return "", fmt.Errorf("%w: %s/%d", ErrTokenNotFound, c.contract, tokenId)
	}

	return owner, nil
}

func (c *Collection) Mint(ctx entity.CallContext, recipient entity.Principal) uint64 {
	c.lastTokenId++
	tokenId := c.lastTokenId
	c.owners[tokenId] = recipient
	ctx.OnRollback(func() {
		delete(c.owners, tokenId)
		c.lastTokenId--
	})

	return tokenId
}

func (c *Collection) Transfer(ctx entity.CallContext, tokenId uint64, from, to entity.Principal) error {
	owner, err := c.GetOwner(tokenId)
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("%w: %s/%d is held by %s", ErrNotTokenOwner, c.contract, tokenId, owner)
	}

	c.owners[tokenId] = to
	ctx.OnRollback(func() {
		c.owners[tokenId] = from
	})

	ctx.Record(entity.NftAction{
		Contract: string(c.contract),
		TokenId:  tokenId,
		Action:   entity.TransferAction,
		From:     string(from),
		To:       string(to),
	})

	return nil
}

// Call exposes the collection through the host call interface.
func (c *Collection) Call(ctx entity.CallContext, operation string, args entity.Args) entity.Result {
	switch operation {
	case "get-last-token-id":
		return entity.Ok(entity.Uint(c.lastTokenId))

	case "get-owner":
		tokenId, err := args.Uint(0)
		if err != nil {
			return entity.Failure(err)
		}
		owner, err := c.GetOwner(tokenId)
		if err != nil {
			return entity.Ok(entity.None())
		}
		return entity.Ok(entity.PrincipalValue(owner))

	case "mint":
		recipient, err := args.Principal(0)
		if err != nil {
			return entity.Failure(err)
		}
		if err := entity.Authorize(c.contract.Address(), ctx.Sender, entity.ErrNotAuthorized); err != nil {
			return entity.Failure(err)
		}
		tokenId := c.Mint(ctx, recipient)
		ctx.Logger().With(zap.Uint64("tokenId", tokenId)).Info("Collection: Minted token")
		return entity.Ok(entity.Uint(tokenId))

	case "transfer":
		if err := args.Expect(3); err != nil {
			return entity.Failure(err)
		}
		tokenId, err := args.Uint(0)
		if err != nil {
			return entity.Failure(err)
		}
		sender, err := args.Principal(1)
		if err != nil {
			return entity.Failure(err)
		}
		recipient, err := args.Principal(2)
		if err != nil {
			return entity.Failure(err)
		}
		if err := entity.Authorize(sender, ctx.Sender, entity.ErrNotOwner); err != nil {
			return entity.Failure(err)
		}
		if err := c.Transfer(ctx, tokenId, sender, recipient); err != nil {
			return entity.Failure(fmt.Errorf("%w: %v", entity.ErrNotOwner, err))
		}
		return entity.OkEmpty()
	}

	return entity.Failure(fmt.Errorf("%w: %s", entity.ErrUnknownOperation, operation))
}

// Collections resolves token contracts by principal. It is the token
// collaborator the marketplace talks to.
type Collections struct {
	byContract map[entity.Principal]*Collection
}

func NewCollections() *Collections {
	return &Collections{byContract: make(map[entity.Principal]*Collection)}
}

func (c *Collections) Add(collection *Collection) {
	c.byContract[collection.Principal()] = collection
}

func (c *Collections) Get(contract entity.Principal) (*Collection, error) {
	collection, ok := c.byContract[contract]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, contract)
	}

	return collection, nil
}

func (c *Collections) GetOwner(_ entity.CallContext, contract entity.Principal, tokenId uint64) (entity.Principal, error) {
	collection, err := c.Get(contract)
	if err != nil {
		return "", err
	}

	return collection.GetOwner(tokenId)
}

func (c *Collections) Transfer(ctx entity.CallContext, contract entity.Principal, tokenId uint64, from, to entity.Principal) error {
	collection, err := c.Get(contract)
	if err != nil {
		return err
	}

	return collection.Transfer(ctx, tokenId, from, to)
}
