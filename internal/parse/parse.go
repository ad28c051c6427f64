// Package parse reads and validates traffic survey CSV rows.
package parse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mvern/trafficlens/internal/model"
)

// DateLayout is the survey date format (DD-MM-YYYY).
const DateLayout = "02-01-2006"

const timeLayout = "15:04"

// Column order of a survey row.
const (
	colDate = iota
	colTime
	colJunction
	colVehicleType
	colSpeed
	colWeather
	colElectric

	minFields = 6
)

// Classified row failures. A failed row is dropped and counted; the run
// itself carries on.
var (
	ErrMalformedRow    = errors.New("malformed row")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTime     = errors.New("invalid time")
	ErrMissingJunction = errors.New("missing junction")
)

// Counts tracks what happened to the raw rows of one pass.
type Counts struct {
	Read        int
	Malformed   int
	FilteredOut int
}

// Valid returns the number of rows that produced a Record.
func (c Counts) Valid() int {
	return c.Read - c.Malformed - c.FilteredOut
}

// ParseRow turns one CSV row into a Record. Rows whose date does not match
// the target date are not an error: ok is false and err is nil. Optional
// fields (speed, weather, vehicle type, electric flag) degrade to sentinel
// values instead of failing the row.
func ParseRow(fields []string, target time.Time) (model.Record, bool, error) {
	if len(fields) < minFields {
		return model.Record{}, false, fmt.Errorf("%w: got %d fields, want at least %d", ErrMalformedRow, len(fields), minFields)
	}

	date, err := time.Parse(DateLayout, strings.TrimSpace(fields[colDate]))
	if err != nil {
		return model.Record{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, fields[colDate])
	}
	if !sameDay(date, target) {
		return model.Record{}, false, nil
	}

	clock, err := time.Parse(timeLayout, strings.TrimSpace(fields[colTime]))
	if err != nil {
		return model.Record{}, false, fmt.Errorf("%w: %q", ErrInvalidTime, fields[colTime])
	}

	junction := strings.TrimSpace(fields[colJunction])
	if junction == "" {
		return model.Record{}, false, ErrMissingJunction
	}

	rec := model.Record{
		Date:     date,
		Hour:     clock.Hour(),
		Junction: junction,
		Vehicle:  model.ParseVehicleType(fields[colVehicleType]),
		Speed:    parseSpeed(fields[colSpeed]),
		Weather:  model.ParseWeather(fields[colWeather]),
	}
	if len(fields) > colElectric {
		rec.Electric = strings.EqualFold(strings.TrimSpace(fields[colElectric]), "true")
	}
	return rec, true, nil
}

// ReadRecords scans the whole input and returns the Records matching the
// target date along with row counts. Per-row failures never abort the scan;
// only a read error on the underlying source is fatal.
func ReadRecords(r io.Reader, target time.Time) ([]model.Record, Counts, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []model.Record
	var counts Counts
	first := true
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				counts.Read++
				counts.Malformed++
				continue
			}
			return nil, counts, fmt.Errorf("failed to read input: %w", err)
		}
		if first {
			first = false
			if isHeader(fields) {
				continue
			}
		}
		counts.Read++
		rec, ok, err := ParseRow(fields, target)
		if err != nil {
			counts.Malformed++
			continue
		}
		if !ok {
			counts.FilteredOut++
			continue
		}
		records = append(records, rec)
	}
	return records, counts, nil
}

func isHeader(fields []string) bool {
	return len(fields) > 0 && strings.EqualFold(strings.TrimSpace(fields[0]), "date")
}

func parseSpeed(field string) *float64 {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	speed, err := strconv.ParseFloat(field, 64)
	if err != nil || speed < 0 {
		return nil
	}
	return &speed
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
