package address

import (
	"encoding/hex"
	"strings"

	domainErr "github.com/Spok95/subpass/internal/domain/errors"
)

// Address identifies an account: 20 bytes rendered as lowercase 0x-hex.
type Address string

// Zero is the mint origin. It never holds balances and never receives transfers.
const Zero Address = "0x0000000000000000000000000000000000000000"

// Parse normalises s into an Address.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if len(s) != 42 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return "", domainErr.ErrInvalidAddress
	}
	body := strings.ToLower(s[2:])
	if _, err := hex.DecodeString(body); err != nil {
		return "", domainErr.ErrInvalidAddress
	}
	return Address("0x" + body), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic("address: invalid literal " + s)
	}
	return a
}

func (a Address) String() string { return string(a) }

// IsZero reports whether a is the zero address or unset.
func (a Address) IsZero() bool { return a == "" || a == Zero }
