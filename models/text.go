package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a string field produced by the model. It accepts every JSON kind
// so that one odd field never loses the batch: numbers and booleans keep their
// literal spelling, objects and arrays keep their compact JSON.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	*t = Text(literal(data))
	return nil
}

// literal returns a JSON string's contents, or any other value as compact JSON
func literal(data []byte) string {
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

// String returns the underlying string
func (t Text) String() string {
	return string(t)
}

// Value dereferences an optional text field, returning "" when absent
func Value(t *Text) string {
	if t == nil {
		return ""
	}
	return string(*t)
}

// Ptr returns a pointer to a Text holding s
func Ptr(s string) *Text {
	t := Text(s)
	return &t
}

// TextList is an ordered list of strings. Any non-array value decodes as a
// single-element list.
type TextList []Text

// UnmarshalJSON implements json.Unmarshaler
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '[' {
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var single Text
	if err := single.UnmarshalJSON(data); err != nil {
		return err
	}
	*l = TextList{single}
	return nil
}

// Strings returns the list as plain strings
func (l TextList) Strings() []string {
	out := make([]string, len(l))
	for i, t := range l {
		out[i] = string(t)
	}
	return out
}

// Score is a 0-100 number produced by the model. Numeric strings such as
// "82" or "82%" are accepted; anything else, objects and arrays included,
// decodes to zero.
type Score float64

// UnmarshalJSON implements json.Unmarshaler
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			*s = 0
			return nil
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = Score(parsed)
	case '{', '[':
		*s = 0
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			*s = 0
			return nil
		}
		*s = Score(f)
	}
	return nil
}

// Float returns the score as a float64
func (s Score) Float() float64 {
	return float64(s)
}
