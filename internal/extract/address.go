package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AddressString renders a decoded address parameter as text.
//
// Polkadot call arguments encode destinations either as a bare SS58
// string or as the MultiAddress union, which decodes to an object with
// an "Id" field. Structured values return the identity field; plain
// strings return themselves; numbers render as their literal text;
// anything else falls back to compact JSON.
func AddressString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if id, ok := t["Id"].(string); ok {
			return id
		}
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
