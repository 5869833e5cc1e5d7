package extract

import "polkafetch/internal/subscan"

// Summary holds the transfer details pulled out of one extrinsic.
type Summary struct {
	Amount string // formatted amount, or AmountUnavailable
	From   string
	To     string
	Sender string // the extrinsic signer, always account_id
}

// Summarize applies the fallback chain to an extrinsic payload.
//
// The direct transfer object wins when present: Subscan has already
// digested the call into amount/from/to, including the asset's own
// decimals and symbol. Without it, the ordered call params are scanned
// for a "value" argument (the raw amount, scaled with the chain
// defaults) and a "dest" argument (the destination address), with the
// sender standing in as "from". An extrinsic matching neither shape
// reports the amount as unavailable.
func Summarize(ex *subscan.Extrinsic) Summary {
	s := Summary{
		Amount: AmountUnavailable,
		Sender: ex.AccountID,
	}

	if t := ex.Transfer; t != nil {
		decimals := t.Decimals
		if decimals <= 0 {
			decimals = DefaultDecimals
		}
		symbol := t.Symbol
		if symbol == "" {
			symbol = DefaultSymbol
		}

		s.Amount = FormatAmount(t.Amount, decimals, symbol)
		s.From = t.From
		s.To = t.To
		if s.From == "" {
			s.From = ex.AccountID
		}
		return s
	}

	s.From = ex.AccountID
	var valueSeen, destSeen bool
	for _, p := range ex.Params {
		switch p.Name {
		case "value":
			if !valueSeen {
				valueSeen = true
				s.Amount = FormatAmount(p.Value, DefaultDecimals, DefaultSymbol)
			}
		case "dest":
			if !destSeen {
				destSeen = true
				s.To = AddressString(p.Value)
			}
		}
	}

	return s
}
