package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an identifier that clients send either as a JSON string or as a
// JSON number. Exercises and users are both keyed by it.
//
// Two numeric IDs with the same value are equal (1 and 1.0), while a number
// and a string are never equal ("1" and 1 are different keys).
type ID struct {
	text    string
	numeric bool
	present bool
}

// StringID returns an ID that encodes as a JSON string.
func StringID(s string) ID {
	return ID{text: s, present: true}
}

// IntID returns an ID that encodes as a JSON number.
func IntID(n int) ID {
	return ID{text: strconv.Itoa(n), numeric: true, present: true}
}

// ParseKey reverses Key.
func ParseKey(key string) (ID, error) {
	switch {
	case key == "":
		return ID{}, nil
	case strings.HasPrefix(key, "n:"):
		return ID{text: key[2:], numeric: true, present: true}, nil
	case strings.HasPrefix(key, "s:"):
		return ID{text: key[2:], present: true}, nil
	}
	return ID{}, fmt.Errorf("catalog: malformed id key %q", key)
}

// Key returns a string usable as a map key. Absent IDs map to "".
func (id ID) Key() string {
	if !id.present {
		return ""
	}
	if id.numeric {
		return "n:" + id.text
	}
	return "s:" + id.text
}

// String returns the textual form of the id without type information.
func (id ID) String() string { return id.text }

// IsNumeric reports whether the id arrived as a JSON number.
func (id ID) IsNumeric() bool { return id.numeric }

// IsZero reports whether the id is absent, null, the empty string or 0.
// Clients use these values to mean "no id".
func (id ID) IsZero() bool {
	if !id.present {
		return true
	}
	if id.numeric {
		return id.text == "0"
	}
	return id.text == ""
}

// Equal reports whether two ids name the same key.
func (id ID) Equal(other ID) bool { return id.Key() == other.Key() }

// MarshalJSON encodes the id in the form it was received.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.present {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("catalog: id must be a string or a number, got %s", data)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("catalog: id %s: %w", data, err)
	}
	*id = ID{text: strconv.FormatFloat(f, 'f', -1, 64), numeric: true, present: true}
	return nil
}
