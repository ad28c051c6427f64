// Package report renders the survey summary as text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mvern/trafficlens/internal/aggregate"
	"github.com/mvern/trafficlens/internal/model"
	"github.com/mvern/trafficlens/internal/parse"
)

// NoData marks metrics that are undefined on an empty run.
const NoData = "no data"

const banner = "**************************************************"

// RenderSummary writes the full analysis report. Output is deterministic for
// a given summary: maps are walked in fixed enum order.
func RenderSummary(w io.Writer, sum aggregate.Summary, counts parse.Counts) error {
	lines := summaryLines(sum, counts)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func summaryLines(sum aggregate.Summary, counts parse.Counts) []string {
	cfg := sum.Config
	lines := []string{
		banner,
		fmt.Sprintf("Data file analyzed: %s", cfg.InputPath),
		fmt.Sprintf("Survey date: %s", cfg.Date.Format(parse.DateLayout)),
		banner,
		"",
		fmt.Sprintf("The total number of vehicles recorded on the selected date: %d", sum.Total),
	}

	typeRows := make([][]string, 0, len(model.VehicleTypes))
	for _, vt := range model.VehicleTypes {
		typeRows = append(typeRows, []string{vt.String(), fmt.Sprintf("%d", sum.ByVehicle[vt])})
	}
	lines = append(lines, formatTable([]string{"Type", "Count"}, typeRows, map[int]bool{1: true})...)

	lines = append(lines,
		"",
		fmt.Sprintf("The percentage of all recorded vehicles that are trucks: %s", pctOrNoData(sum.TruckPct)),
		fmt.Sprintf("The total count of electric vehicles recorded: %d", sum.Electric),
		fmt.Sprintf("The average number of bicycles recorded per hour: %d", sum.AvgBikes),
		fmt.Sprintf("The total number of vehicles exceeding the speed limit of %g: %d", cfg.Threshold, sum.Violations),
		"",
	)

	for _, js := range sum.Junctions {
		lines = append(lines, junctionLines(js)...)
	}

	lines = append(lines, "", "Weather conditions:")
	weatherRows := make([][]string, 0, len(model.WeatherConditions))
	for _, cond := range model.WeatherConditions {
		weatherRows = append(weatherRows, []string{cond.String(), fmt.Sprintf("%d", sum.Weather[cond])})
	}
	lines = append(lines, formatTable([]string{"Condition", "Count"}, weatherRows, map[int]bool{1: true})...)

	lines = append(lines,
		"",
		fmt.Sprintf("The total number of hours with rain on the selected date: %d", sum.RainHours),
		"",
		fmt.Sprintf("Rows read: %d (malformed: %d, other dates: %d)", counts.Read, counts.Malformed, counts.FilteredOut),
		banner,
	)
	return lines
}

func junctionLines(js aggregate.JunctionSummary) []string {
	lines := []string{
		fmt.Sprintf("The total number of vehicles recorded at %s: %d (%s of all traffic)", js.Name, js.Total, pctOrNoData(js.Share)),
	}
	if js.Peak == nil {
		lines = append(lines, fmt.Sprintf("The busiest traffic hour at %s: %s", js.Name, NoData))
		return lines
	}
	lines = append(lines,
		fmt.Sprintf("The highest number of vehicles recorded in a single hour at %s: %d", js.Name, js.Peak.Count),
		fmt.Sprintf("The busiest traffic hour at %s: between %02d:00 and %02d:00", js.Name, js.Peak.Hour, js.Peak.Hour+1),
	)
	return lines
}

func pctOrNoData(pct *float64) string {
	if pct == nil {
		return NoData
	}
	return fmt.Sprintf("%.2f%%", *pct)
}

// WriteFile writes the report to path, overwriting any previous run. The
// write goes through a temp file and a rename so a failed run never leaves a
// truncated report behind.
func WriteFile(path string, sum aggregate.Summary, counts parse.Counts) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "results-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp report: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := RenderSummary(writer, sum, counts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
