// Package generate builds synthetic survey CSV data for demos and testing.
package generate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"

	"github.com/mvern/trafficlens/internal/parse"
)

// Header is the column header of a generated survey file.
var Header = []string{"date", "time", "junction", "vehicle_type", "speed", "weather", "electric"}

var (
	vehicleTokens = []string{"car", "car", "car", "truck", "bicycle", "motorcycle", "scooter", "bus", "van"}
	weatherTokens = []string{"clear", "clear", "light rain", "heavy rain", "fog", "snow"}
)

// Generator produces randomized survey rows.
type Generator struct {
	f faker.Faker
}

// New returns a Generator with a deterministic seed.
func New(seed int64) *Generator {
	return &Generator{f: faker.NewWithSeed(rand.NewSource(seed))}
}

// Rows generates n survey rows for the given date spread across the
// junctions. Roughly one row in twenty has an empty speed field, matching
// the gaps real survey exports show.
func (g *Generator) Rows(date time.Time, junctions []string, n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		hour := g.f.IntBetween(0, 23)
		minute := g.f.IntBetween(0, 59)
		speed := fmt.Sprintf("%d", g.f.IntBetween(10, 90))
		if g.f.IntBetween(1, 20) == 1 {
			speed = ""
		}
		electric := "false"
		if g.f.Bool() {
			electric = "true"
		}
		rows = append(rows, []string{
			date.Format(parse.DateLayout),
			fmt.Sprintf("%02d:%02d", hour, minute),
			g.f.RandomStringElement(junctions),
			g.f.RandomStringElement(vehicleTokens),
			speed,
			g.f.RandomStringElement(weatherTokens),
			electric,
		})
	}
	return rows
}

// WriteCSV writes the header and rows as CSV.
func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
