package parse

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mvern/trafficlens/internal/model"
)

func surveyDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return date
}

func TestParseRow(t *testing.T) {
	target := surveyDate(t, "01-01-2024")

	rec, ok, err := ParseRow([]string{"01-01-2024", "08:30", "J1", "Truck", "80", "heavy rain", "true"}, target)
	if err != nil {
		t.Fatalf("ParseRow failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected row in scope")
	}
	if rec.Hour != 8 {
		t.Fatalf("expected hour 8, got %d", rec.Hour)
	}
	if rec.Junction != "J1" {
		t.Fatalf("unexpected junction %q", rec.Junction)
	}
	if rec.Vehicle != model.VehicleTruck {
		t.Fatalf("expected truck, got %v", rec.Vehicle)
	}
	if rec.Speed == nil || *rec.Speed != 80 {
		t.Fatalf("unexpected speed %v", rec.Speed)
	}
	if rec.Weather != model.WeatherRain {
		t.Fatalf("expected rain, got %v", rec.Weather)
	}
	if !rec.Electric {
		t.Fatalf("expected electric flag")
	}
}

func TestParseRowDateFilter(t *testing.T) {
	target := surveyDate(t, "01-01-2024")
	_, ok, err := ParseRow([]string{"02-01-2024", "09:00", "J1", "car", "30", "clear"}, target)
	if err != nil {
		t.Fatalf("out-of-scope row must not be an error: %v", err)
	}
	if ok {
		t.Fatalf("expected row filtered out")
	}
}

func TestParseRowOptionalFieldsDegrade(t *testing.T) {
	target := surveyDate(t, "01-01-2024")
	rec, ok, err := ParseRow([]string{"01-01-2024", "10:00", "J2", "hovercraft", "fast", "sleet"}, target)
	if err != nil || !ok {
		t.Fatalf("row with bad optional fields must survive: ok=%v err=%v", ok, err)
	}
	if rec.Vehicle != model.VehicleOther {
		t.Fatalf("expected other, got %v", rec.Vehicle)
	}
	if rec.Speed != nil {
		t.Fatalf("expected unknown speed, got %v", *rec.Speed)
	}
	if rec.Weather != model.WeatherUnknown {
		t.Fatalf("expected unknown weather, got %v", rec.Weather)
	}
	if rec.Electric {
		t.Fatalf("missing electric column must default to false")
	}
}

func TestParseRowClassifiedFailures(t *testing.T) {
	target := surveyDate(t, "01-01-2024")
	tests := []struct {
		name   string
		fields []string
		want   error
	}{
		{"too few fields", []string{"01-01-2024", "08:00", "J1"}, ErrMalformedRow},
		{"bad date", []string{"2024/01/01", "08:00", "J1", "car", "45", "clear"}, ErrInvalidDate},
		{"bad time", []string{"01-01-2024", "25:00", "J1", "car", "45", "clear"}, ErrInvalidTime},
		{"empty junction", []string{"01-01-2024", "08:00", "  ", "car", "45", "clear"}, ErrMissingJunction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseRow(tc.fields, target)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReadRecords(t *testing.T) {
	input := strings.Join([]string{
		"date,time,junction,vehicle_type,speed,weather",
		"01-01-2024,08:00,J1,car,45,clear",
		"01-01-2024,08:00,J1,truck,80,rain",
		"02-01-2024,09:00,J1,car,30,clear",
		"01-01-2024,xx:00,J1,car,30,clear",
		"01-01-2024,09:15,J2,bicycle,,clear",
	}, "\n")

	records, counts, err := ReadRecords(strings.NewReader(input), surveyDate(t, "01-01-2024"))
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if counts.Read != 5 {
		t.Fatalf("expected 5 rows read, got %d", counts.Read)
	}
	if counts.Malformed != 1 {
		t.Fatalf("expected 1 malformed row, got %d", counts.Malformed)
	}
	if counts.FilteredOut != 1 {
		t.Fatalf("expected 1 filtered row, got %d", counts.FilteredOut)
	}
	if counts.Valid() != 3 || len(records) != 3 {
		t.Fatalf("expected 3 valid records, got %d (counts: %+v)", len(records), counts)
	}
	if records[2].Speed != nil {
		t.Fatalf("expected unknown speed on empty field")
	}
}

func TestReadRecordsEmptyInput(t *testing.T) {
	records, counts, err := ReadRecords(strings.NewReader(""), surveyDate(t, "01-01-2024"))
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(records) != 0 || counts.Read != 0 {
		t.Fatalf("expected no records, got %d (counts: %+v)", len(records), counts)
	}
}
