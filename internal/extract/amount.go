// Package extract derives transfer details from heterogeneous extrinsic
// payloads: scaling raw fixed-point amounts to readable values, decoding
// address parameters, and picking amount and parties out of whichever
// response shape the explorer returned.
package extract

import (
	"encoding/json"
	"math/big"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// AmountUnavailable is reported when an extrinsic carries no readable
// transfer amount.
const AmountUnavailable = "N/A (Not a simple transfer)"

// Polkadot defaults: 10^10 Planck per DOT.
const (
	DefaultDecimals = 10
	DefaultSymbol   = "DOT"
)

// printer renders amounts with English grouping separators ("12,467.0000").
var printer = message.NewPrinter(language.English)

// FormatAmount scales a raw fixed-point magnitude by 10^decimals and
// renders it with four fixed fraction digits, thousands separators, and
// the unit symbol. Raw may be a string or a JSON number. Non-numeric
// input yields AmountUnavailable rather than an error so a bad row never
// stops batch processing.
func FormatAmount(raw any, decimals int, symbol string) string {
	v, ok := scaleAmount(raw, decimals)
	if !ok {
		return AmountUnavailable
	}
	return printer.Sprintf("%v %s",
		number.Decimal(v, number.MinFractionDigits(4), number.MaxFractionDigits(4)),
		symbol)
}

// FormatAmountTrimmed is FormatAmount without trailing zeros ("1.5 DOT"
// instead of "1.5000 DOT").
func FormatAmountTrimmed(raw any, decimals int, symbol string) string {
	v, ok := scaleAmount(raw, decimals)
	if !ok {
		return AmountUnavailable
	}
	return printer.Sprintf("%v %s",
		number.Decimal(v, number.MaxFractionDigits(4)),
		symbol)
}

// scaleAmount divides the raw magnitude by 10^decimals. The division is
// done in big.Float so large Planck values survive the scaling; the
// result is narrowed to float64 only for display.
func scaleAmount(raw any, decimals int) (float64, bool) {
	f, ok := toBigFloat(raw)
	if !ok {
		return 0, false
	}
	if decimals < 0 {
		decimals = 0
	}

	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Float).Quo(f, new(big.Float).SetInt(exp))

	v, _ := scaled.Float64()
	return v, true
}

func toBigFloat(raw any) (*big.Float, bool) {
	switch t := raw.(type) {
	case string:
		if t == "" {
			return nil, false
		}
		f, ok := new(big.Float).SetString(t)
		return f, ok
	case json.Number:
		f, ok := new(big.Float).SetString(t.String())
		return f, ok
	case float64:
		return new(big.Float).SetFloat64(t), true
	case int:
		return new(big.Float).SetInt64(int64(t)), true
	case int64:
		return new(big.Float).SetInt64(t), true
	default:
		return nil, false
	}
}
