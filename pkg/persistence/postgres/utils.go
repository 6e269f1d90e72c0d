// Package postgres contains the table definitions and db models for the
// postgresql persister
package postgres // import "github.com/joincivil/wavs-rewards-client/pkg/persistence/postgres"

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// BigIntToString converts a big.Int to its base 10 string, nil becomes "0"
func BigIntToString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}

// StringToBigInt converts a base 10 NUMERIC value back to a big.Int. Values
// scanned from NUMERIC columns may carry a fractional part of zeros.
func StringToBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	if idx := strings.Index(value, "."); idx >= 0 {
		if strings.Trim(value[idx+1:], "0") != "" {
			return nil, errors.Errorf("non integer amount %v", value)
		}
		value = value[:idx]
	}
	result, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %v", value)
	}
	return result, nil
}
