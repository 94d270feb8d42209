package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HendryAvila/liftcoach/internal/catalog"
)

// errNotObject is returned by Decode for valid JSON that is not an object.
var errNotObject = errors.New("protocol: message is not a JSON object")

// Request is one decoded client message. Fields are kept raw and decoded on
// demand by the action that needs them.
type Request struct {
	Action string
	fields map[string]json.RawMessage
}

// Decode parses one framed line.
func Decode(line []byte) (*Request, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		if json.Valid(line) {
			return nil, errNotObject
		}
		return nil, fmt.Errorf("protocol: invalid json")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, fmt.Errorf("protocol: %w", err)
	}
	return &Request{Action: actionName(fields["action"]), fields: fields}, nil
}

// NewRequest builds a Request from already-decoded arguments, as delivered
// by the MCP surface.
func NewRequest(action string, args map[string]any) (*Request, error) {
	fields := make(map[string]json.RawMessage, len(args)+1)
	for k, v := range args {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode argument %q: %w", k, err)
		}
		fields[k] = raw
	}
	fields["action"], _ = json.Marshal(action)
	return &Request{Action: action, fields: fields}, nil
}

// actionName renders the action field. Strings are used as-is, other JSON
// values by their literal text, and an absent action reads as null.
func actionName(raw json.RawMessage) string {
	if isNull(raw) {
		return "null"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Has reports whether key is present and not null.
func (r *Request) Has(key string) bool {
	return !isNull(r.fields[key])
}

// Blank reports whether key holds no usable value: absent, null, false,
// zero, an empty string or an empty array or object.
func (r *Request) Blank(key string) bool {
	if !r.Has(key) {
		return true
	}
	var v any
	if err := json.Unmarshal(r.fields[key], &v); err != nil {
		return true
	}
	switch v := v.(type) {
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// ID decodes key as a string-or-number identifier. Absent is the zero ID.
func (r *Request) ID(key string) (catalog.ID, error) {
	var id catalog.ID
	if !r.Has(key) {
		return id, nil
	}
	if err := json.Unmarshal(r.fields[key], &id); err != nil {
		return id, fieldError(key)
	}
	return id, nil
}

// String decodes key as text. Numbers and booleans are rendered as their
// JSON literal; absent, null and composite values give "".
func (r *Request) String(key string) string {
	raw := r.fields[key]
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	switch raw[0] {
	case '{', '[':
		return ""
	}
	return string(raw)
}

// Float decodes key as a number, accepting numeric strings. Absent and null
// give def.
func (r *Request) Float(key string, def float64) (float64, error) {
	if !r.Has(key) {
		return def, nil
	}
	raw := r.fields[key]
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, fieldError(key)
}

// Int decodes key as a number truncated toward zero.
func (r *Request) Int(key string, def int) (int, error) {
	if !r.Has(key) {
		return def, nil
	}
	f, err := r.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fieldError(key)
	}
	return int(f), nil
}

// FieldError reports a request field that could not be interpreted.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return "invalid " + e.Field }

func fieldError(key string) error { return &FieldError{Field: key} }
