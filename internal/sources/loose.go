package sources

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// The loose types decode whatever a field holds and fall back to the zero
// value instead of failing, so one malformed field never fails a record.

// looseString accepts a JSON string or number and ignores anything else.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err == nil {
			*s = looseString(str)
		}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = looseString(num.String())
	}
	return nil
}

// looseInt accepts a JSON number or a numeric string. Fractions are truncated.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	var s looseString
	_ = s.UnmarshalJSON(data)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseInt(string(s), 10, 64); err == nil {
		*n = looseInt(v)
		return nil
	}
	if v, err := strconv.ParseFloat(string(s), 64); err == nil {
		*n = looseInt(v)
	}
	return nil
}

// looseBool accepts a JSON bool or the strings "true" and "false".
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = looseBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.ParseBool(s); err == nil {
			*b = looseBool(parsed)
		}
	}
	return nil
}

// isNull reports whether a raw JSON value is null.
func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
