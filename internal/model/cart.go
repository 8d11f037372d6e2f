package model

import "encoding/json"

// CartSubmission is the raw add-to-cart payload. No schema is enforced.
type CartSubmission json.RawMessage

// MarshalJSON emits the submission verbatim, or {} when empty.
func (c CartSubmission) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("{}"), nil
	}
	return json.RawMessage(c).MarshalJSON()
}
