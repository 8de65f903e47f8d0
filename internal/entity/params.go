package entity

import (
	"fmt"
	"strconv"
	"strings"
)

type ValueType string

const (
	UintType      ValueType = "uint"
	StringType    ValueType = "string-ascii"
	PrincipalType ValueType = "principal"
	BoolType      ValueType = "bool"
	NoneType      ValueType = "none"
	TupleType     ValueType = "tuple"
)

// Value is a typed call argument or result. Numbers travel as decimal
// strings so micro-STX amounts never pass through a float.
type Value struct {
	Type  ValueType `json:"type"`
	Value string    `json:"value,omitempty"`

	Tuple map[string]Value `json:"tuple,omitempty"`
}

func Uint(v uint64) Value {
	return Value{Type: UintType, Value: strconv.FormatUint(v, 10)}
}

func String(v string) Value {
	return Value{Type: StringType, Value: v}
}

func PrincipalValue(p Principal) Value {
	return Value{Type: PrincipalType, Value: string(p)}
}

func Bool(v bool) Value {
	return Value{Type: BoolType, Value: strconv.FormatBool(v)}
}

func None() Value {
	return Value{Type: NoneType}
}

func Tuple(fields map[string]Value) Value {
	return Value{Type: TupleType, Tuple: fields}
}

// ParseValue reads the type:value form used on the command line, e.g.
// uint:5000 or principal:ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.
func ParseValue(raw string) (Value, error) {
	t, v, _ := strings.Cut(raw, ":")
	switch ValueType(t) {
	case UintType, "u":
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s", ErrInvalidArgs, raw)
		}
		return Uint(n), nil
	case StringType, "string":
		return String(v), nil
	case PrincipalType:
		p, err := ParsePrincipal(v)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
		return PrincipalValue(p), nil
	case BoolType:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s", ErrInvalidArgs, raw)
		}
		return Bool(b), nil
	case NoneType:
		return None(), nil
	}

	return Value{}, fmt.Errorf("%w: unknown value type %q", ErrInvalidArgs, t)
}

func (v Value) Uint64() (uint64, error) {
	if v.Type != UintType {
		return 0, fmt.Errorf("expected %s, got %s", UintType, v.Type)
	}

	return strconv.ParseUint(v.Value, 10, 64)
}

func (v Value) Principal() (Principal, error) {
	if v.Type != PrincipalType {
		return "", fmt.Errorf("expected %s, got %s", PrincipalType, v.Type)
	}

	return ParsePrincipal(v.Value)
}

func (v Value) String() string {
	return v.Value
}

// Args are the positional arguments of a contract call.
type Args []Value

func (a Args) get(idx int, t ValueType) (Value, error) {
	if idx >= len(a) {
		return Value{}, fmt.Errorf("%w: missing argument %d", ErrInvalidArgs, idx)
	}
	if a[idx].Type != t {
		return Value{}, fmt.Errorf("%w: argument %d: expected %s, got %s", ErrInvalidArgs, idx, t, a[idx].Type)
	}

	return a[idx], nil
}

func (a Args) Uint(idx int) (uint64, error) {
	v, err := a.get(idx, UintType)
	if err != nil {
		return 0, err
	}

	value, err := v.Uint64()
	if err != nil {
		return 0, fmt.Errorf("%w: argument %d: %v", ErrInvalidArgs, idx, err)
	}

	return value, nil
}

func (a Args) String(idx int) (string, error) {
	v, err := a.get(idx, StringType)
	if err != nil {
		return "", err
	}

	return v.Value, nil
}

func (a Args) Principal(idx int) (Principal, error) {
	v, err := a.get(idx, PrincipalType)
	if err != nil {
		return "", err
	}

	p, err := v.Principal()
	if err != nil {
		return "", fmt.Errorf("%w: argument %d: %v", ErrInvalidArgs, idx, err)
	}

	return p, nil
}

// Expect fails unless exactly n arguments were supplied.
func (a Args) Expect(n int) error {
	if len(a) != n {
		return fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidArgs, n, len(a))
	}

	return nil
}
