package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NullFloat64 is an optional measurement. The zero value is a missing measurement.
type NullFloat64 struct {
	Value    float64
	HasValue bool
}

// Float returns a present measurement.
func Float(v float64) NullFloat64 {
	return NullFloat64{Value: v, HasValue: true}
}

// Null is a missing measurement.
var Null = NullFloat64{}

// Get returns the value and whether it is present.
func (n NullFloat64) Get() (float64, bool) {
	return n.Value, n.HasValue
}

// Ptr returns nil for a missing measurement, for database and JSON encoders.
func (n NullFloat64) Ptr() *float64 {
	if !n.HasValue {
		return nil
	}
	v := n.Value
	return &v
}

// NullFloat64FromPtr is the inverse of Ptr.
func NullFloat64FromPtr(p *float64) NullFloat64 {
	if p == nil {
		return Null
	}
	return Float(*p)
}

// String formats a present value with at least one decimal ("1.0", "15.378")
// and a missing value as the empty string.
func (n NullFloat64) String() string {
	if !n.HasValue {
		return ""
	}
	s := strconv.FormatFloat(n.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.HasValue {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullFloat64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Null
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// Scan implements sql.Scanner. NULL scans as a missing measurement.
func (n *NullFloat64) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = Null
	case float64:
		*n = Float(v)
	case int64:
		*n = Float(float64(v))
	case []byte:
		return n.scanString(string(v))
	case string:
		return n.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into NullFloat64", src)
	}
	return nil
}

func (n *NullFloat64) scanString(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cannot scan %q into NullFloat64: %w", s, err)
	}
	*n = Float(v)
	return nil
}
