package scenario

import (
	"encoding/json"
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/chain"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"go.uber.org/zap"
	"io"
	"strings"
)

// A Scenario is a scripted sequence of calls replayed against a fresh host.
type Scenario struct {
	Faucet map[entity.Principal]uint64 `json:"faucet"`
	Calls  []Call                      `json:"calls"`
}

type Call struct {
	Contract  string           `json:"contract"`
	Operation string           `json:"operation"`
	Sender    entity.Principal `json:"sender"`
	Arguments entity.Args      `json:"arguments"`

	// Expect, when set, is the error kind the call must fail with.
	Expect entity.ErrorKind `json:"expect,omitempty"`
}

type Outcome struct {
	Receipts []chain.Receipt             `json:"receipts"`
	Balances map[entity.Principal]uint64 `json:"balances"`
	Failures []string                    `json:"failures,omitempty"`
}

func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &s, nil
}

// Run funds the faucet accounts and replays every call in order. Bare
// contract names are resolved against the deployer.
func Run(host *chain.Host, deployer entity.Principal, s Scenario) Outcome {
	for principal, amount := range s.Faucet {
		host.Faucet(principal, amount)
	}

	outcome := Outcome{
		Receipts: make([]chain.Receipt, 0, len(s.Calls)),
		Balances: make(map[entity.Principal]uint64),
	}
	for idx, call := range s.Calls {
		contract := resolve(deployer, call.Contract)
		receipt := host.Call(contract, call.Operation, call.Arguments, call.Sender)
		outcome.Receipts = append(outcome.Receipts, receipt)

		if failure := check(idx, call, receipt.Result); failure != "" {
			zap.L().With(zap.Int("call", idx), zap.String("operation", call.Operation)).Warn("Scenario: Unexpected result")
			outcome.Failures = append(outcome.Failures, failure)
		}
	}

	for principal := range s.Faucet {
		outcome.Balances[principal] = host.Balance(principal)
	}
	for _, call := range s.Calls {
		outcome.Balances[call.Sender] = host.Balance(call.Sender)
	}

	return outcome
}

func (o Outcome) Passed() bool {
	return len(o.Failures) == 0
}

func resolve(deployer entity.Principal, contract string) entity.Principal {
	if strings.Contains(contract, ".") {
		return entity.Principal(contract)
	}

	return deployer.Contract(contract)
}

func check(idx int, call Call, result entity.Result) string {
	switch {
	case call.Expect == "" && !result.Ok:
		return fmt.Sprintf("call %d %s: expected ok, got %s", idx, call.Operation, result.Error)
	case call.Expect != "" && result.Ok:
		return fmt.Sprintf("call %d %s: expected %s, got ok", idx, call.Operation, call.Expect)
	case call.Expect != "" && result.Error != call.Expect:
		return fmt.Sprintf("call %d %s: expected %s, got %s", idx, call.Operation, call.Expect, result.Error)
	}

	return ""
}
