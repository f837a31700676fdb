package store

import (
	"encoding/json"
	"fmt"
)

// The helpers below serve backends that keep each document as a JSON blob.

// EncodeDoc marshals doc and extracts its id.
func EncodeDoc[T any](doc T) ([]byte, int64, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("encode document: %w", err)
	}
	var head struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, 0, fmt.Errorf("read document id: %w", err)
	}
	return raw, head.ID, nil
}

// DecodeDoc unmarshals a stored document.
func DecodeDoc[T any](raw []byte) (T, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// MergeDoc sets fields on the stored document raw and returns the new
// encoding together with its decoded form. A field value that does not fit
// the document type fails with ErrValidation.
func MergeDoc[T any](raw []byte, fields map[string]any) ([]byte, T, error) {
	var zero T
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, zero, fmt.Errorf("decode document: %w", err)
	}
	for k, v := range fields {
		m[k] = v
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return nil, zero, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	var doc T
	if err := json.Unmarshal(merged, &doc); err != nil {
		return nil, zero, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// Re-encode from the typed value so the stored form stays canonical.
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, zero, fmt.Errorf("encode document: %w", err)
	}
	return out, doc, nil
}
