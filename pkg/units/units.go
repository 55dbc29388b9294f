// Package units converts between raw on-chain integer amounts and human
// decimal values using a per-asset decimal count.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/uhyunpark/spark/pkg/decimal"
)

var (
	ErrPrecisionLoss   = errors.New("precision loss")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownAsset    = errors.New("unknown asset")

	// ErrInvalidDecimals is returned for decimal counts outside [0, decimal.MaxDecimals].
	ErrInvalidDecimals = decimal.ErrInvalidDecimals
)

// Asset describes how many fractional digits an asset's raw amounts imply.
type Asset struct {
	Symbol   string
	Decimals int
}

// DefaultAssets covers the assets the UI ships with. Callers may pass any
// Asset; this table is only a convenience for lookups by symbol.
var DefaultAssets = map[string]Asset{
	"ETH":  {Symbol: "ETH", Decimals: 18},
	"WETH": {Symbol: "WETH", Decimals: 18},
	"DAI":  {Symbol: "DAI", Decimals: 18},
	"USDC": {Symbol: "USDC", Decimals: 6},
	"USDT": {Symbol: "USDT", Decimals: 6},
	"WBTC": {Symbol: "WBTC", Decimals: 8},
	"BTC":  {Symbol: "BTC", Decimals: 8},
}

// Lookup returns the default descriptor for symbol (case-insensitive).
func Lookup(symbol string) (Asset, error) {
	a, ok := DefaultAssets[strings.ToUpper(symbol)]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return a, nil
}

// Converter converts raw amounts. The zero value is permissive: ToRaw
// silently truncates digits beyond the asset's decimals. Strict makes that
// truncation an ErrPrecisionLoss failure instead.
type Converter struct {
	Strict bool
}

func checkDecimals(decimals int) error {
	if decimals < 0 || decimals > decimal.MaxDecimals {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidDecimals, decimals, decimal.MaxDecimals)
	}
	return nil
}

// ToHuman returns raw / 10^decimals.
func (c Converter) ToHuman(raw *big.Int, decimals int) (decimal.Value, error) {
	return decimal.FromScaledInteger(raw, decimals)
}

// ToRaw returns v × 10^decimals truncated toward zero.
func (c Converter) ToRaw(v decimal.Value, decimals int) (*big.Int, error) {
	if err := checkDecimals(decimals); err != nil {
		return nil, err
	}
	scaled := v.Shift(decimals)
	if c.Strict && !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d fractional digits", ErrPrecisionLoss, v, decimals)
	}
	return scaled.BigInt(), nil
}

// ToHuman converts a raw amount of a.
func (a Asset) ToHuman(raw *big.Int) (decimal.Value, error) {
	return Converter{}.ToHuman(raw, a.Decimals)
}

// ToRaw converts v to raw units of a.
func (a Asset) ToRaw(v decimal.Value, strict bool) (*big.Int, error) {
	return Converter{Strict: strict}.ToRaw(v, a.Decimals)
}

// Unit returns one whole unit of a in raw units (10^Decimals).
func (a Asset) Unit() *big.Int {
	return math.BigPow(10, int64(a.Decimals))
}

// ParseQuantity decodes a raw amount as delivered by RPC collaborators:
// either a 0x-prefixed hex quantity or a base 10 integer string.
func ParseQuantity(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := hexutil.DecodeBig(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidQuantity, s, err)
		}
		return v, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return v, nil
}
