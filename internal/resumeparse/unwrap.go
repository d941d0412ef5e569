package resumeparse

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses a resume parser response body and unwraps it to the
// top-level field mapping. Numbers are kept as json.Number so numeric values
// keep their literal text.
func Decode(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &MalformedResponseError{Message: "empty body"}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedResponseError{Message: "invalid JSON", Cause: err}
	}
	if dec.More() {
		return nil, &MalformedResponseError{Message: "trailing data after JSON value"}
	}

	return Unwrap(v)
}

// Unwrap returns the field mapping carried by a decoded response. The
// parser returns either a bare object or an array holding one object.
func Unwrap(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		if len(t) == 0 {
			return nil, &MalformedResponseError{Message: "empty array"}
		}
		m, ok := t[0].(map[string]any)
		if !ok {
			return nil, &MalformedResponseError{Message: fmt.Sprintf("array element is %s, want object", kindOf(t[0]))}
		}
		return m, nil
	default:
		return nil, &MalformedResponseError{Message: fmt.Sprintf("top-level value is %s, want object or array", kindOf(v))}
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
