package models

// SkipReason classifies why a source line was left out of a dataset.
type SkipReason int

const (
	// SkipFieldCount: the line does not have the schema's number of fields.
	SkipFieldCount SkipReason = iota
	// SkipBlankTime: the timestamp field is blank.
	SkipBlankTime
	// SkipBadTime: the timestamp does not match TimeLayout.
	SkipBadTime
	// SkipInvalidValue: a measurement failed record validation.
	SkipInvalidValue
)

// SkipReasons lists every reason in declaration order.
var SkipReasons = []SkipReason{SkipFieldCount, SkipBlankTime, SkipBadTime, SkipInvalidValue}

func (r SkipReason) String() string {
	switch r {
	case SkipFieldCount:
		return "field_count"
	case SkipBlankTime:
		return "blank_time"
	case SkipBadTime:
		return "bad_time"
	case SkipInvalidValue:
		return "invalid_value"
	default:
		return "unknown"
	}
}

func (r SkipReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
