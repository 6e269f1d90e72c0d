// Package utils contains various common utils separate by utility types
package utils

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const etherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// FormatEther renders a wei amount as a decimal ether string with trailing
// zeros trimmed, e.g. 1500000000000000000 -> "1.5"
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, etherDecimals)
}

// FormatUnits renders an integer amount with the given number of decimals
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)
	str := abs.String()
	if decimals > 0 {
		if len(str) <= decimals {
			str = strings.Repeat("0", decimals-len(str)+1) + str
		}
		whole := str[:len(str)-decimals]
		frac := strings.TrimRight(str[len(str)-decimals:], "0")
		str = whole
		if frac != "" {
			str = whole + "." + frac
		}
	}
	if neg {
		return "-" + str
	}
	return str
}

// ParseEther parses a decimal ether string into wei
func ParseEther(ether string) (*big.Int, error) {
	return ParseUnits(ether, etherDecimals)
}

// ParseUnits parses a decimal string into an integer amount with the given
// number of decimals. More fractional digits than decimals is an error.
func ParseUnits(value string, decimals int) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("empty amount")
	}
	parts := strings.SplitN(value, ".", 2)
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) > decimals {
		return nil, errors.Errorf("too many decimal places in %v", value)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	amount, ok := new(big.Int).SetString(digits, 10)
	if !ok || amount.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %v", value)
	}
	return amount, nil
}

// WeiPerEther returns a copy of 10^18
func WeiPerEther() *big.Int {
	return new(big.Int).Set(weiPerEther)
}
