package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var jsonNull = []byte("null")

func isNull(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), jsonNull)
}

// opaqueString renders a passthrough JSON value for display. JSON strings are
// unquoted, everything else is shown as compact JSON.
func opaqueString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func cloneRaw(data []byte) json.RawMessage {
	return append(json.RawMessage(nil), bytes.TrimSpace(data)...)
}

// Timestamp is a time field whose upstream shape varies between schema
// revisions. It holds either a parsed RFC 3339 time or the raw JSON value.
type Timestamp struct {
	Time time.Time
	Raw  json.RawMessage
}

// NewTimestamp returns a structured Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// IsZero reports whether the timestamp carries no value at all.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && len(t.Raw) == 0
}

// Structured reports whether the value parsed as a strict timestamp.
func (t Timestamp) Structured() bool {
	return !t.Time.IsZero()
}

// String returns the RFC 3339 form, the passthrough text, or "".
func (t Timestamp) String() string {
	if t.Structured() {
		return t.Time.UTC().Format(time.RFC3339)
	}
	return opaqueString(t.Raw)
}

// UnmarshalJSON never fails: anything that is not an RFC 3339 string is kept
// as an opaque value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, perr := time.Parse(time.RFC3339Nano, s); perr == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Raw = cloneRaw(data)
	return nil
}

// MarshalJSON writes the value back in the shape it arrived in.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Structured() {
		return json.Marshal(t.Time)
	}
	if len(t.Raw) == 0 {
		return jsonNull, nil
	}
	return t.Raw, nil
}

// ID is the upstream record identifier: a string, a number, a Mongo-style
// {"$oid": "..."} object, or an opaque value.
type ID struct {
	Value string
	Raw   json.RawMessage
}

// String returns the identifier for display.
func (id ID) String() string {
	if id.Value != "" {
		return id.Value
	}
	return opaqueString(id.Raw)
}

// UnmarshalJSON never fails on shape mismatches.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID{}
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id.Value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		id.Value = n.String()
		return nil
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &oid); err == nil && oid.OID != "" {
		id.Value = oid.OID
		return nil
	}
	id.Raw = cloneRaw(data)
	return nil
}

// MarshalJSON writes the identifier as a string when one was recovered.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.Value != "" {
		return json.Marshal(id.Value)
	}
	if len(id.Raw) == 0 {
		return jsonNull, nil
	}
	return id.Raw, nil
}

// Person is the submitting user. Older records carry a plain string, newer
// ones an object with name and email.
type Person struct {
	Name  string
	Email string
	Raw   json.RawMessage
}

// String returns the best display name available.
func (p Person) String() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return opaqueString(p.Raw)
}

// UnmarshalJSON never fails on shape mismatches.
func (p *Person) UnmarshalJSON(data []byte) error {
	*p = Person{}
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Name = s
		return nil
	}
	var obj struct {
		Name     string `json:"name"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && (obj.Name != "" || obj.FullName != "" || obj.Email != "") {
		p.Name = obj.Name
		if p.Name == "" {
			p.Name = obj.FullName
		}
		p.Email = obj.Email
		return nil
	}
	p.Raw = cloneRaw(data)
	return nil
}

// MarshalJSON writes the person back as a string when only a name is known.
func (p Person) MarshalJSON() ([]byte, error) {
	switch {
	case p.Email != "":
		return json.Marshal(struct {
			Name  string `json:"name,omitempty"`
			Email string `json:"email"`
		}{p.Name, p.Email})
	case p.Name != "":
		return json.Marshal(p.Name)
	case len(p.Raw) > 0:
		return p.Raw, nil
	default:
		return jsonNull, nil
	}
}

// Amount is a money value. Numbers and numeric strings (commas allowed) are
// parsed; any other value is kept as opaque text that displays as provided
// and counts as zero in arithmetic.
type Amount struct {
	Value float64
	Raw   json.RawMessage
}

// NewAmount returns a numeric Amount.
func NewAmount(v float64) Amount {
	return Amount{Value: v}
}

// Numeric reports whether the value parsed as a number.
func (a Amount) Numeric() bool {
	return len(a.Raw) == 0
}

// Float returns the numeric value, or 0 for opaque text.
func (a Amount) Float() float64 {
	if !a.Numeric() {
		return 0
	}
	return a.Value
}

// String returns the number in its shortest form or the passthrough text.
func (a Amount) String() string {
	if !a.Numeric() {
		return opaqueString(a.Raw)
	}
	return strconv.FormatFloat(a.Value, 'f', -1, 64)
}

// UnmarshalJSON never fails on shape mismatches. Empty strings and null are
// zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	if isNull(data) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		a.Value = f
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			return nil
		}
		if f, perr := strconv.ParseFloat(s, 64); perr == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			a.Value = f
			return nil
		}
	}
	a.Raw = cloneRaw(data)
	return nil
}

// MarshalJSON writes numbers as numbers and opaque values as they arrived.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Numeric() {
		return a.Raw, nil
	}
	return json.Marshal(a.Value)
}

// StringList is a list field that some records send as a single string.
type StringList []string

// UnmarshalJSON accepts an array (non-string elements are stringified), a
// single string, or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.TrimSpace(s) != "" {
			*l = StringList{s}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("string list: expected array or string, got %s", string(data))
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if v := opaqueString(item); v != "" {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}
