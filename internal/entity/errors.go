package entity

import "errors"

// ErrorKind is the tagged error value returned across the call boundary.
type ErrorKind string

const (
	ErrNotAuthorized    ErrorKind = "not authorized"
	ErrNotOwner         ErrorKind = "not owner"
	ErrInvalidPrice     ErrorKind = "invalid price"
	ErrInvalidFee       ErrorKind = "invalid fee"
	ErrWrongPrice       ErrorKind = "wrong price"
	ErrNotFound         ErrorKind = "not found"
	ErrTransferFailed   ErrorKind = "transfer failed"
	ErrInvalidArgs      ErrorKind = "invalid arguments"
	ErrUnknownOperation ErrorKind = "unknown operation"
	ErrRuntime          ErrorKind = "runtime error"
)

var errorCodes = map[ErrorKind]uint{
	ErrNotAuthorized:    100,
	ErrNotOwner:         101,
	ErrInvalidPrice:     102,
	ErrInvalidFee:       103,
	ErrWrongPrice:       104,
	ErrNotFound:         105,
	ErrTransferFailed:   106,
	ErrInvalidArgs:      107,
	ErrUnknownOperation: 108,
	ErrRuntime:          109,
}

func (k ErrorKind) Error() string {
	return string(k)
}

// Code is the uint a Clarity contract would return in (err uN).
func (k ErrorKind) Code() uint {
	if code, ok := errorCodes[k]; ok {
		return code
	}

	return errorCodes[ErrRuntime]
}

// KindOf extracts the ErrorKind from a (possibly wrapped) error. Errors that
// carry no kind are reported as runtime errors.
func KindOf(err error) ErrorKind {
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}

	return ErrRuntime
}
