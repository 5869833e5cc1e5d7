package subscan

import "encoding/json"

// envelope is the top-level Subscan API response.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Extrinsic is the data payload returned by /api/scan/extrinsic.
// Only the fields this application reads are modeled; the payload
// carries many more.
type Extrinsic struct {
	// Fee and FeeUsed are raw Planck magnitudes as decimal strings.
	Fee     string `json:"fee"`
	FeeUsed string `json:"fee_used"`

	// Transfer is Subscan's pre-digested summary of a simple balance
	// transfer. Absent for anything that is not a plain transfer call.
	Transfer *Transfer `json:"transfer"`

	// Params are the raw call arguments, in call order.
	Params []CallParam `json:"params"`

	// AccountID is the extrinsic signer.
	AccountID string `json:"account_id"`
}

// Transfer describes a simple balance transfer.
type Transfer struct {
	Amount   string `json:"amount"`
	From     string `json:"from"`
	To       string `json:"to"`
	Decimals int    `json:"decimals"`
	Symbol   string `json:"symbol"`
}

// CallParam is one named call argument. Value is left loosely typed:
// depending on the call it decodes to a string, a number, or a
// structured object such as the MultiAddress form {"Id": "..."}.
type CallParam struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Status classifies an extrinsic lookup.
type Status int

const (
	// StatusFound means the API returned extrinsic data.
	StatusFound Status = iota
	// StatusNotFound means the API answered successfully but knows no
	// extrinsic with that hash (empty data payload).
	StatusNotFound
	// StatusAPIError means the API reported a failure message.
	StatusAPIError
)

// Lookup is the classified outcome of one extrinsic query.
type Lookup struct {
	Status    Status
	Message   string     // API failure message when Status is StatusAPIError
	Extrinsic *Extrinsic // non-nil only when Status is StatusFound
	Cached    bool       // true when served from the response cache
}
