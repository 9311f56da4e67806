package schema

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Encoder maps validated items plus a schema description string into the
// final attestation bytes. The on-chain ABI encoder is an external
// collaborator behind this interface; callers guarantee items is non-empty
// and already validated.
type Encoder interface {
	Encode(items []Item, schema string) ([]byte, error)
}

// CanonicalEncoder renders items as RFC 8785 canonical JSON. It gives
// local runs a deterministic byte representation of the validated output
// without reimplementing the registry's binary layout.
type CanonicalEncoder struct{}

type encodedPayload struct {
	Schema string `json:"schema"`
	Items  []Item `json:"items"`
}

// Encode implements Encoder.
func (CanonicalEncoder) Encode(items []Item, schema string) ([]byte, error) {
	if len(items) == 0 {
		return nil, &EncodingError{Schema: schema, Err: fmt.Errorf("no items to encode")}
	}
	raw, err := json.Marshal(encodedPayload{Schema: schema, Items: items})
	if err != nil {
		return nil, &EncodingError{Schema: schema, Err: err}
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, &EncodingError{Schema: schema, Err: err}
	}
	return canonical, nil
}
