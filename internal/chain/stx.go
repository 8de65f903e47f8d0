package chain

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"go.uber.org/zap"
)

var (
	ErrZeroAmount          = errors.New("stx transfer amount must be positive")
	ErrSelfTransfer        = errors.New("stx sender and recipient are the same")
	ErrInsufficientBalance = errors.New("insufficient stx balance")
)

// StxLedger holds native balances in micro-STX.
type StxLedger struct {
	balances map[entity.Principal]uint64
}

func NewStxLedger() *StxLedger {
	return &StxLedger{balances: make(map[entity.Principal]uint64)}
}

func (l *StxLedger) Balance(p entity.Principal) uint64 {
	return l.balances[p]
}

func (l *StxLedger) Mint(p entity.Principal, amount uint64) {
	l.balances[p] += amount
}

func (l *StxLedger) Transfer(ctx entity.CallContext, amount uint64, from, to entity.Principal) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if from == to {
		return ErrSelfTransfer
	}
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, l.balances[from], amount)
	}

	l.balances[from] -= amount
	l.balances[to] += amount
	ctx.OnRollback(func() {
		l.balances[to] -= amount
		l.balances[from] += amount
	})

	zap.L().With(
		zap.String("txId", ctx.TxID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Uint64("amount", amount),
	).Debug("StxLedger: Transfer")

	return nil
}
