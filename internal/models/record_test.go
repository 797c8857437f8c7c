package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewWeatherRecord_Validation(t *testing.T) {
	ts := time.Date(2024, 7, 1, 11, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		wind      NullFloat64
		temp      NullFloat64
		sun       NullFloat64
		humid     NullFloat64
		wantField string
	}{
		{"negative wind speed", Float(-0.1), Float(5), Float(50), Float(25), "wind_speed"},
		{"negative irradiance", Float(1), Float(5), Float(-0.1), Float(25), "irradiance"},
		{"negative humidity", Float(1), Float(5), Float(50), Float(-0.1), "humidity"},
		{"negative temperature is valid", Float(1), Float(-12.5), Float(50), Float(25), ""},
		{"zero values are valid", Float(0), Float(0), Float(0), Float(0), ""},
		{"all missing is valid", Null, Null, Null, Null, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NewWeatherRecord(ts, tt.wind, tt.temp, tt.sun, tt.humid)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("NewWeatherRecord() error = %v", err)
				}
				if !rec.Time.Equal(ts) {
					t.Errorf("Time = %v, want %v", rec.Time, ts)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %v, want %v", verr.Field, tt.wantField)
			}
			if verr.Value != "-0.1" {
				t.Errorf("Value = %v, want -0.1", verr.Value)
			}
		})
	}
}

func TestWeatherRecord_String(t *testing.T) {
	ts := time.Date(2024, 7, 1, 11, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record WeatherRecord
		want   string
	}{
		{"all fields present", WeatherRecord{ts, Float(1), Float(5), Float(50), Float(25)}, "01/07/2024 11:30,1.0,5.0,50.0,25.0"},
		{"no wind speed", WeatherRecord{ts, Null, Float(5), Float(50), Float(25)}, "01/07/2024 11:30,,5.0,50.0,25.0"},
		{"no temperature", WeatherRecord{ts, Float(1), Null, Float(50), Float(25)}, "01/07/2024 11:30,1.0,,50.0,25.0"},
		{"no irradiance", WeatherRecord{ts, Float(1), Float(5), Null, Float(25)}, "01/07/2024 11:30,1.0,5.0,,25.0"},
		{"no humidity", WeatherRecord{ts, Float(1), Float(5), Float(50), Null}, "01/07/2024 11:30,1.0,5.0,50.0,"},
		{"decimals kept", WeatherRecord{ts, Float(7.38), Float(-15.378), Float(174.9), Float(75.8)}, "01/07/2024 11:30,7.38,-15.378,174.9,75.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNullFloat64(t *testing.T) {
	if v, ok := Null.Get(); ok || v != 0 {
		t.Errorf("Null.Get() = %v, %v", v, ok)
	}
	if Null.Ptr() != nil {
		t.Error("Null.Ptr() should be nil")
	}
	if p := Float(2.5).Ptr(); p == nil || *p != 2.5 {
		t.Errorf("Float(2.5).Ptr() = %v", p)
	}
	if got := NullFloat64FromPtr(nil); got != Null {
		t.Errorf("NullFloat64FromPtr(nil) = %v", got)
	}

	b, err := json.Marshal([]NullFloat64{Null, Float(1.3)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `[null,1.3]` {
		t.Errorf("Marshal() = %s, want [null,1.3]", b)
	}

	var back []NullFloat64
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != 2 || back[0] != Null || back[1] != Float(1.3) {
		t.Errorf("Unmarshal() = %v", back)
	}

	var bad NullFloat64
	if err := bad.UnmarshalJSON([]byte(`"bad"`)); err == nil {
		t.Error("UnmarshalJSON(\"bad\") should fail")
	}
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2019-07-01")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d != NewDate(2019, time.July, 1) {
		t.Errorf("ParseDate() = %v", d)
	}
	if !d.Contains(time.Date(2019, 7, 1, 23, 59, 0, 0, time.UTC)) {
		t.Error("date should contain 23:59 on the same day")
	}
	if d.Contains(time.Date(2019, 7, 2, 0, 0, 0, 0, time.UTC)) {
		t.Error("date should not contain midnight of the next day")
	}
	if _, err := ParseDate("01/07/2019"); err == nil {
		t.Error("ParseDate should reject non ISO dates")
	}

	b, _ := json.Marshal(d)
	if string(b) != `"2019-07-01"` {
		t.Errorf("Marshal() = %s", b)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "humidity",
		Value:   "-1.0",
		Message: "humidity cannot be negative",
	}

	if err.Error() != "humidity cannot be negative" {
		t.Errorf("Error() = %v, want %v", err.Error(), "humidity cannot be negative")
	}

	if err.IsTransient() {
		t.Error("ValidationError should not be transient")
	}
}

func TestSkipReason_String(t *testing.T) {
	want := []string{"field_count", "blank_time", "bad_time", "invalid_value"}
	for i, r := range SkipReasons {
		if r.String() != want[i] {
			t.Errorf("SkipReason(%d).String() = %v, want %v", i, r, want[i])
		}
	}
	if SkipReason(99).String() != "unknown" {
		t.Error("unknown reasons should print as unknown")
	}
}
