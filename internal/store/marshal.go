package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// marshalMachine converts a machine document to canonical JSON TEXT for
// storage and computes its content hash.
//
// Null members (unset slices and maps) are dropped before canonicalization,
// since canonical JSON forbids null; decoders read an absent member as
// empty. The kind member is always present.
func marshalMachine(m *ir.Machine) (body, hash string, err error) {
	if m == nil || m.Document == nil {
		return "", "", fmt.Errorf("marshal machine: no document")
	}
	kind := m.Kind()

	data, err := json.Marshal(m.Document)
	if err != nil {
		return "", "", fmt.Errorf("marshal machine: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return "", "", fmt.Errorf("marshal machine: %w", err)
	}
	obj["kind"] = string(kind)

	canonical, err := ir.MarshalCanonical(dropNulls(obj))
	if err != nil {
		return "", "", fmt.Errorf("marshal machine: %w", err)
	}
	hash, err = ir.DocumentHash(kind, canonical)
	if err != nil {
		return "", "", fmt.Errorf("marshal machine: %w", err)
	}
	return string(canonical), hash, nil
}

// dropNulls removes null object members at any depth.
func dropNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, x := range val {
			if x == nil {
				delete(val, k)
				continue
			}
			val[k] = dropNulls(x)
		}
		return val
	case []any:
		for i, x := range val {
			val[i] = dropNulls(x)
		}
		return val
	default:
		return v
	}
}
