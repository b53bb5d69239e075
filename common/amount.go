package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	WNCGDecimals = 18
	NCGDecimals  = 2
)

var (
	ErrInvalidNCGAmount = errors.New("invalid NCG amount")

	// base units of wNCG per 0.01 NCG
	ncgUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(WNCGDecimals-NCGDecimals), nil)
	// base units of wNCG per 1 NCG
	wncgOne = new(big.Int).Exp(big.NewInt(10), big.NewInt(WNCGDecimals), nil)
)

// ParseNCGAmount converts a decimal NCG amount such as "12.34"
// into wNCG base units.
func ParseNCGAmount(s string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNCGAmount, s)
	}

	r.Mul(r, new(big.Rat).SetInt(wncgOne))
	if !r.IsInt() {
		return nil, fmt.Errorf("%w: too many decimals in %q", ErrInvalidNCGAmount, s)
	}

	return new(big.Int).Set(r.Num()), nil
}

// FormatNCGAmount converts wNCG base units into a 2-decimal NCG amount.
// Anything below 0.01 NCG is truncated.
func FormatNCGAmount(amount *big.Int) string {
	if amount == nil || amount.Sign() <= 0 {
		return "0.00"
	}

	cents := new(big.Int).Quo(amount, ncgUnit)
	whole, frac := new(big.Int).QuoRem(cents, big.NewInt(100), new(big.Int))
	return fmt.Sprintf("%s.%02d", whole.String(), frac.Int64())
}

// IsNCGDust reports whether the amount is worth nothing on nine chronicles.
func IsNCGDust(amount *big.Int) bool {
	return amount == nil || amount.Cmp(ncgUnit) < 0
}
