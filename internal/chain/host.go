package chain

import (
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/event"
	"github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
	"sync"
)

// Receipt is the outcome of one transaction.
type Receipt struct {
	TxID        string           `json:"txId"`
	BlockHeight uint64           `json:"blockHeight"`
	Contract    entity.Principal `json:"contract"`
	Operation   string           `json:"operation"`
	Sender      entity.Principal `json:"sender"`
	Result      entity.Result    `json:"result"`
}

// Host plays the blockchain VM. Calls are executed one at a time; each is
// committed or rolled back as a whole before the next begins.
type Host struct {
	mu          sync.Mutex
	emitting    sync.Mutex
	contracts   map[entity.Principal]entity.Contract
	stx         *StxLedger
	collections *Collections
	events      *event.Manager
	blockHeight uint64
	receipts    []Receipt
}

func NewHost(stx *StxLedger, collections *Collections, events *event.Manager) *Host {
	return &Host{
		contracts:   make(map[entity.Principal]entity.Contract),
		stx:         stx,
		collections: collections,
		events:      events,
	}
}

func (h *Host) Stx() *StxLedger {
	return h.stx
}

func (h *Host) Collections() *Collections {
	return h.collections
}

func (h *Host) Deploy(principal entity.Principal, contract entity.Contract) error {
	if !principal.IsContract() {
		return fmt.Errorf("cannot deploy to standard principal %s", principal)
	}
	if err := principal.Validate(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.contracts[principal]; exists {
		return fmt.Errorf("contract %s already deployed", principal)
	}
	h.contracts[principal] = contract
	if collection, ok := contract.(*Collection); ok {
		h.collections.Add(collection)
	}

	zap.L().With(zap.String("contract", string(principal))).Info("Host: Deployed contract")

	return nil
}

// DeployCollection deploys a fresh NFT collection at principal.
func (h *Host) DeployCollection(principal entity.Principal) (*Collection, error) {
	collection := NewCollection(principal)
	if err := h.Deploy(principal, collection); err != nil {
		return nil, err
	}

	return collection, nil
}

// Faucet credits micro-STX outside of any transaction.
func (h *Host) Faucet(p entity.Principal, amount uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stx.Mint(p, amount)
}

func (h *Host) Balance(p entity.Principal) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.stx.Balance(p)
}

func (h *Host) GetOwner(contract entity.Principal, tokenId uint64) (entity.Principal, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.collections.GetOwner(entity.CallContext{}, contract, tokenId)
}

func (h *Host) BlockHeight() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.blockHeight
}

func (h *Host) Receipts() []Receipt {
	h.mu.Lock()
	defer h.mu.Unlock()

	receipts := make([]Receipt, len(h.receipts))
	copy(receipts, h.receipts)

	return receipts
}

// Call runs operation on contract as sender inside its own transaction.
func (h *Host) Call(contract entity.Principal, operation string, args entity.Args, sender entity.Principal) Receipt {
	h.mu.Lock()

	h.blockHeight++
	tx := &journal{}
	ctx := entity.CallContext{
		Sender:      sender,
		Contract:    contract,
		TxID:        newTxID(),
		BlockHeight: h.blockHeight,
		Journal:     tx,
	}

	result := h.execute(ctx, operation, args)
	if !result.Ok {
		tx.rollback()
	}

	receipt := Receipt{
		TxID:        ctx.TxID,
		BlockHeight: ctx.BlockHeight,
		Contract:    contract,
		Operation:   operation,
		Sender:      sender,
		Result:      result,
	}
	h.receipts = append(h.receipts, receipt)
	actions := tx.actions

	// Events leave in commit order even though listeners run unlocked.
	h.emitting.Lock()
	defer h.emitting.Unlock()
	h.mu.Unlock()

	logger := ctx.Logger().With(zap.String("operation", operation), zap.Uint64("block", ctx.BlockHeight))
	if result.Ok {
		logger.Info("Host: Committed")
	} else {
		logger.With(zap.String("error", string(result.Error)), zap.String("reason", result.Reason)).Info("Host: Rolled back")
	}

	if h.events != nil {
		for _, action := range actions {
			h.events.EmitEvent(event.ForAction(action), action)
		}
	}

	return receipt
}

// Read evaluates a read-only operation at the current height. Any effect the
// operation has is rolled back, and no block or receipt is produced.
func (h *Host) Read(contract entity.Principal, operation string, args entity.Args, sender entity.Principal) entity.Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx := &journal{}
	ctx := entity.CallContext{
		Sender:      sender,
		Contract:    contract,
		BlockHeight: h.blockHeight,
		Journal:     tx,
	}
	result := h.execute(ctx, operation, args)
	tx.rollback()

	return result
}

// View runs fn while no call is executing.
func (h *Host) View(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fn()
}

func (h *Host) execute(ctx entity.CallContext, operation string, args entity.Args) (result entity.Result) {
	if err := ctx.Sender.Validate(); err != nil {
		return entity.Failure(fmt.Errorf("%w: sender: %v", entity.ErrInvalidArgs, err))
	}
	if ctx.Sender.IsContract() {
		return entity.Failure(fmt.Errorf("%w: sender %s is a contract principal", entity.ErrInvalidArgs, ctx.Sender))
	}

	c, ok := h.contracts[ctx.Contract]
	if !ok {
		return entity.Failure(fmt.Errorf("%w: contract %s", entity.ErrNotFound, ctx.Contract))
	}

	defer func() {
		if r := recover(); r != nil {
			ctx.Logger().With(zap.Any("panic", r)).Error("Host: Contract panicked")
			result = entity.Failure(fmt.Errorf("%w: %v", entity.ErrRuntime, r))
		}
	}()

	return c.Call(ctx, operation, args)
}

func newTxID() string {
	u, err := uuid.NewV4()
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Host: Failed to generate tx id")
		return ""
	}

	return "0x" + u.String()
}
