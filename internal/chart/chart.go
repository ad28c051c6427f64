// Package chart shapes hourly traffic series and renders the comparison histogram.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mvern/trafficlens/internal/aggregate"
)

const (
	defaultHistHeight = 12
	barChar           = '█'
	axisSeparator     = " │ "
	colorReset        = "\x1b[0m"
)

type ansiColor struct {
	name string
	code string
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
}

// Series is one junction's hourly traffic volume, ascending hour, all 24
// hours present.
type Series struct {
	Name   string
	Counts [aggregate.HoursPerDay]int
}

// Total sums the series counts.
func (s Series) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Max returns the largest hourly count.
func (s Series) Max() int {
	maxCount := 0
	for _, n := range s.Counts {
		if n > maxCount {
			maxCount = n
		}
	}
	return maxCount
}

// HourlySeries adapts the aggregate state for one junction into a renderable
// series. Junctions with no traffic yield an all-zero series.
func HourlySeries(st *aggregate.State, junction string) Series {
	return Series{Name: junction, Counts: st.HourlyCounts(junction)}
}

// RenderHistogram draws a grouped-bar histogram of hourly volumes, one bar
// per series per hour, on a shared linear scale. All-zero input still renders
// the full 24-hour axis.
func RenderHistogram(w io.Writer, title string, series []Series, height int, forceColor bool) error {
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultHistHeight
	}

	maxCount := 0
	for _, s := range series {
		if m := s.Max(); m > maxCount {
			maxCount = m
		}
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := makeAxisLabels(maxCount, height)
	axisWidth := 0
	for _, label := range axisLabels {
		if len(label) > axisWidth {
			axisWidth = len(label)
		}
	}
	groupWidth := len(series) + 1

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, s := range series {
		if _, err := fmt.Fprintf(w, "%s: total=%d max/hour=%d\n", s.Name, s.Total(), s.Max()); err != nil {
			return err
		}
	}

	heights := make([][aggregate.HoursPerDay]int, len(series))
	for i, s := range series {
		for hour, count := range s.Counts {
			heights[i][hour] = barHeight(count, maxCount, height)
		}
	}

	for row := height; row >= 1; row-- {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%*s%s", axisWidth, axisLabels[height-row], axisSeparator))
		for hour := 0; hour < aggregate.HoursPerDay; hour++ {
			for i := range series {
				if heights[i][hour] >= row {
					writeBarCell(&b, i, useColor)
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteByte(' ')
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, hourAxis(axisWidth, groupWidth)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	return nil
}

func barHeight(count, maxCount, height int) int {
	if count <= 0 || maxCount <= 0 {
		return 0
	}
	cells := int(math.Round(float64(count) / float64(maxCount) * float64(height)))
	if cells < 1 {
		cells = 1
	}
	if cells > height {
		cells = height
	}
	return cells
}

func writeBarCell(b *strings.Builder, seriesIdx int, useColor bool) {
	if useColor {
		b.WriteString(colorPalette[seriesIdx%len(colorPalette)].code)
		b.WriteRune(barChar)
		b.WriteString(colorReset)
		return
	}
	b.WriteRune(barChar)
}

// makeAxisLabels builds top-to-bottom left-axis labels: max at the top, the
// midpoint halfway down, blanks elsewhere.
func makeAxisLabels(maxCount, height int) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = strconv.Itoa(maxCount)
	if height > 2 {
		labels[height/2] = strconv.Itoa((maxCount + 1) / 2)
	}
	if height > 1 {
		labels[height-1] = "1"
		if maxCount == 0 {
			labels[height-1] = "0"
		}
	}
	return labels
}

func hourAxis(axisWidth, groupWidth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", axisWidth))
	b.WriteString(axisSeparator)
	for hour := 0; hour < aggregate.HoursPerDay; hour++ {
		label := fmt.Sprintf("%02d", hour)
		if len(label) > groupWidth {
			label = label[:groupWidth]
		}
		b.WriteString(label)
		b.WriteString(strings.Repeat(" ", groupWidth-len(label)))
	}
	return strings.TrimRight(b.String(), " ")
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s", barChar, s.Name)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
