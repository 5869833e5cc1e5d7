package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportFileName is the download name for exported results.
const ExportFileName = "polkadot_data_captured.csv"

// exportHeader is the column order of the exported CSV.
var exportHeader = []string{
	"Tx Hash",
	"Status",
	"Sender",
	"From",
	"To",
	"Transfer Amount",
	"Estimated Fee",
	"Used Fee",
}

// WriteResultsCSV writes a fetch result as CSV, one row per input hash,
// in the original input order.
func WriteResultsCSV(w io.Writer, result *FetchResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range result.Records {
		row := []string{
			rec.TxHash,
			rec.Status,
			rec.Sender,
			rec.From,
			rec.To,
			rec.TransferAmount,
			rec.EstimatedFee,
			rec.UsedFee,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
