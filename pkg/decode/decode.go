// Package decode converts loosely typed JSON values into typed structs.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromMap round-trips data through JSON into T. It is used after a generic
// document has been validated and needs to be bound to a concrete type.
func FromMap[T any](data map[string]any) (T, error) {
	var result T
	b, err := json.Marshal(data)
	if err != nil {
		return result, fmt.Errorf("encode map: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("decode %T: %w", result, err)
	}
	return result, nil
}

// Document unmarshals raw JSON into a generic value suitable for schema validation.
// Numbers are preserved as json.Number.
func Document(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
