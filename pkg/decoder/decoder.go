package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrTrailingData = errors.New("unexpected data after the JSON value")

// DecodeStrict reads a single JSON value from r into T. Keys T does not
// declare and anything after the value are errors. An empty body decodes to
// the zero T.
func DecodeStrict[T any](r io.Reader) (T, error) {
	var out T

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		return out, fmt.Errorf("failed to decode: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return out, ErrTrailingData
	}

	return out, nil
}
