package record

import (
	"bytes"
	"encoding/json"

	"github.com/tphakala/mediaseed/internal/errors"
)

// Encode serializes records as one JSON array, indented when pretty is set.
// Records are written with HTML escaping disabled so URLs survive verbatim.
func Encode(records []*MediaRecord, pretty bool) ([]byte, error) {
	if records == nil {
		records = []*MediaRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return nil, errors.New(err).
			Component("record").
			Category(errors.CategoryGeneration).
			Context("operation", "encode_records").
			Build()
	}
	return buf.Bytes(), nil
}

// Marshal serializes one record as compact JSON without a trailing newline,
// the form sent as a bulk document source.
func Marshal(r *MediaRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, errors.New(err).
			Component("record").
			Category(errors.CategoryGeneration).
			Context("operation", "marshal_record").
			Context("media_id", r.Media.ID).
			Build()
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
