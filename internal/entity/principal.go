package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// Principal is a Stacks address, either a standard principal (ST1...) or a
// contract principal (ST1....contract-name).
type Principal string

var (
	standardPrincipal = regexp.MustCompile(`^S[PTMN][0-9A-HJKMNP-TV-Z]{38,39}$`)
	contractName      = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]|[-_])*$`)
)

const maxContractNameLength = 40

func ParsePrincipal(s string) (Principal, error) {
	p := Principal(s)
	if err := p.Validate(); err != nil {
		return "", err
	}

	return p, nil
}

func (p Principal) Validate() error {
	address, name, isContract := strings.Cut(string(p), ".")
	if !standardPrincipal.MatchString(address) {
		return fmt.Errorf("invalid principal %q", string(p))
	}
	if isContract && (len(name) > maxContractNameLength || !contractName.MatchString(name)) {
		return fmt.Errorf("invalid contract name %q", name)
	}

	return nil
}

func (p Principal) IsContract() bool {
	return strings.Contains(string(p), ".")
}

// Address returns the standard principal that deployed a contract principal.
func (p Principal) Address() Principal {
	address, _, _ := strings.Cut(string(p), ".")
	return Principal(address)
}

func (p Principal) Contract(name string) Principal {
	return Principal(fmt.Sprintf("%s.%s", p.Address(), name))
}

func (p Principal) String() string {
	return string(p)
}

// Authorize is the guard shared by every mutating operation: the caller must
// be the required identity, otherwise kind is returned.
func Authorize(required, caller Principal, kind ErrorKind) error {
	if required != caller {
		return kind
	}

	return nil
}
