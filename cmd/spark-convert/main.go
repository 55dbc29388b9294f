// Command spark-convert converts between raw on-chain amounts and human
// decimal values and prints how the UI would display the result.
//
//	spark-convert -symbol USDC -raw 100000001
//	spark-convert -symbol ETH -human 0.0000001234
//	spark-convert -decimals 2 -human 1,255 -strict
package main

import (
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/uhyunpark/spark/params"
	"github.com/uhyunpark/spark/pkg/decimal"
	"github.com/uhyunpark/spark/pkg/format"
	"github.com/uhyunpark/spark/pkg/units"
)

func main() {
	raw := flag.String("raw", "", "raw integer amount (base 10 or 0x hex)")
	human := flag.String("human", "", "human decimal amount")
	symbol := flag.String("symbol", "", "asset symbol (ETH, USDC, ...)")
	decimals := flag.Int("decimals", -1, "decimal count; overrides the asset table")
	digits := flag.Int("digits", 0, "significant digits for display (0 = default)")
	strict := flag.Bool("strict", false, "fail instead of truncating extra fractional digits")
	flag.Parse()

	if err := run(os.Stdout, *raw, *human, *symbol, *decimals, *digits, *strict); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, rawIn, humanIn, symbol string, decimals, digits int, strict bool) error {
	asset := units.Asset{Symbol: strings.ToUpper(symbol), Decimals: decimals}
	if decimals < 0 {
		a, err := units.Lookup(symbol)
		if err != nil {
			return fmt.Errorf("%w (pass -decimals)", err)
		}
		asset = a
	}

	var (
		raw *big.Int
		v   decimal.Value
		err error
	)
	switch {
	case rawIn != "" && humanIn != "":
		return fmt.Errorf("-raw and -human are mutually exclusive")
	case rawIn != "":
		if raw, err = units.ParseQuantity(rawIn); err != nil {
			return err
		}
		if v, err = asset.ToHuman(raw); err != nil {
			return err
		}
	case humanIn != "":
		if v, err = decimal.Parse(strings.ReplaceAll(strings.TrimSpace(humanIn), ",", ".")); err != nil {
			return err
		}
		if raw, err = asset.ToRaw(v, strict); err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of -raw or -human is required")
	}

	cfg := params.LoadFromEnv("")
	f := format.New(cfg.Format)

	fmt.Fprintf(w, "Asset:    %s (%d decimals)\n", asset.Symbol, asset.Decimals)
	fmt.Fprintf(w, "Raw:      %s\n", raw)
	fmt.Fprintf(w, "Human:    %s\n", v)
	fmt.Fprintf(w, "Display:  %s\n", f.Amount(v, asset.Symbol, digits))
	return nil
}
