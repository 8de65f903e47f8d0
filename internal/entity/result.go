package entity

import "go.uber.org/zap"

// Result is what every contract call returns: either ok with an optional
// value, or a tagged error. Callers inspect Ok, never a panic.
type Result struct {
	Ok     bool      `json:"ok"`
	Value  *Value    `json:"result,omitempty"`
	Error  ErrorKind `json:"error,omitempty"`
	Code   uint      `json:"code,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

func Ok(v Value) Result {
	return Result{Ok: true, Value: &v}
}

func OkEmpty() Result {
	return Result{Ok: true, Value: &Value{Type: BoolType, Value: "true"}}
}

func Failure(err error) Result {
	kind := KindOf(err)
	r := Result{Error: kind, Code: kind.Code()}
	if err.Error() != string(kind) {
		r.Reason = err.Error()
	}

	return r
}

// Journal collects the side effects of the call in progress so the host can
// undo them on failure and publish them on commit.
type Journal interface {
	OnRollback(undo func())
	Record(action NftAction)
}

type CallContext struct {
	Sender      Principal
	Contract    Principal
	TxID        string
	BlockHeight uint64
	Journal     Journal
}

func (c CallContext) OnRollback(undo func()) {
	if c.Journal != nil {
		c.Journal.OnRollback(undo)
	}
}

func (c CallContext) Record(action NftAction) {
	action.TxID = c.TxID
	action.BlockNum = c.BlockHeight
	if c.Journal != nil {
		c.Journal.Record(action)
	}
}

func (c CallContext) Logger() *zap.Logger {
	return zap.L().With(
		zap.String("txId", c.TxID),
		zap.String("sender", string(c.Sender)),
		zap.String("contract", string(c.Contract)),
	)
}

// Contract is anything that can be deployed on the host and called.
type Contract interface {
	Call(ctx CallContext, operation string, args Args) Result
}
