package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mvern/trafficlens/internal/aggregate"
	"github.com/mvern/trafficlens/internal/model"
	"github.com/mvern/trafficlens/internal/parse"
)

func scenarioSummary(t *testing.T) (aggregate.Summary, parse.Counts) {
	t.Helper()
	date, err := time.Parse(parse.DateLayout, "01-01-2024")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	cfg := model.RunConfig{
		Date:      date,
		InputPath: "traffic_data.csv",
		Threshold: 60,
		JunctionA: "J1",
		JunctionB: "J2",
	}
	st := aggregate.NewState(cfg.Threshold)
	speed := func(v float64) *float64 { return &v }
	st.Add(model.Record{Hour: 8, Junction: "J1", Vehicle: model.VehicleCar, Speed: speed(45), Weather: model.WeatherClear})
	st.Add(model.Record{Hour: 8, Junction: "J1", Vehicle: model.VehicleTruck, Speed: speed(80), Weather: model.WeatherRain})
	return st.Snapshot(cfg), parse.Counts{Read: 3, FilteredOut: 1}
}

func TestRenderSummary(t *testing.T) {
	sum, counts := scenarioSummary(t)
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sum, counts); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Data file analyzed: traffic_data.csv",
		"Survey date: 01-01-2024",
		"The total number of vehicles recorded on the selected date: 2",
		"The percentage of all recorded vehicles that are trucks: 50.00%",
		"The total number of vehicles exceeding the speed limit of 60: 1",
		"The busiest traffic hour at J1: between 08:00 and 09:00",
		"The busiest traffic hour at J2: no data",
		"The total number of hours with rain on the selected date: 1",
		"Rows read: 3 (malformed: 0, other dates: 1)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report, got:\n%s", want, out)
		}
	}
}

func TestRenderSummaryNoData(t *testing.T) {
	date, _ := time.Parse(parse.DateLayout, "01-01-2024")
	cfg := model.RunConfig{Date: date, InputPath: "empty.csv", Threshold: 60, JunctionA: "J1", JunctionB: "J2"}
	sum := aggregate.NewState(cfg.Threshold).Snapshot(cfg)

	var buf bytes.Buffer
	if err := RenderSummary(&buf, sum, parse.Counts{}); err != nil {
		t.Fatalf("RenderSummary failed on empty run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "The total number of vehicles recorded on the selected date: 0") {
		t.Fatalf("expected zero total, got:\n%s", out)
	}
	if !strings.Contains(out, "The percentage of all recorded vehicles that are trucks: no data") {
		t.Fatalf("expected no-data truck pct, got:\n%s", out)
	}
	if strings.Count(out, "no data") < 3 {
		t.Fatalf("expected no-data peaks for both junctions, got:\n%s", out)
	}
}

func TestRenderSummaryDeterministic(t *testing.T) {
	sum, counts := scenarioSummary(t)
	var first, second bytes.Buffer
	if err := RenderSummary(&first, sum, counts); err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	if err := RenderSummary(&second, sum, counts); err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("report output must be deterministic")
	}
}

func TestWriteFile(t *testing.T) {
	sum, counts := scenarioSummary(t)
	path := filepath.Join(t.TempDir(), "out", "results.txt")
	if err := WriteFile(path, sum, counts); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "Data file analyzed: traffic_data.csv") {
		t.Fatalf("unexpected report content:\n%s", data)
	}

	// A second run overwrites the previous report.
	if err := WriteFile(path, sum, counts); err != nil {
		t.Fatalf("second WriteFile failed: %v", err)
	}
}
