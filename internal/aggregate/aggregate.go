// Package aggregate accumulates survey statistics over one pass of records.
package aggregate

import (
	"math"
	"sort"

	"github.com/mvern/trafficlens/internal/model"
)

// HoursPerDay is the size of every hourly bucket array.
const HoursPerDay = 24

// State is the mutable accumulator for a single run. Counters only grow;
// Snapshot derives the read-only summary once the pass is done.
type State struct {
	threshold float64

	total      int
	byVehicle  map[model.VehicleType]int
	hourly     map[string]*[HoursPerDay]int
	violations int
	weather    map[model.Weather]int
	electric   int
	rainHours  map[int]struct{}
	bikeHours  map[int]struct{}
}

// NewState returns an empty accumulator. Records with a known speed strictly
// above threshold count as violations.
func NewState(threshold float64) *State {
	return &State{
		threshold: threshold,
		byVehicle: map[model.VehicleType]int{},
		hourly:    map[string]*[HoursPerDay]int{},
		weather:   map[model.Weather]int{},
		rainHours: map[int]struct{}{},
		bikeHours: map[int]struct{}{},
	}
}

// Add folds one record into the accumulator.
func (s *State) Add(rec model.Record) {
	s.total++
	s.byVehicle[rec.Vehicle]++

	buckets, ok := s.hourly[rec.Junction]
	if !ok {
		buckets = &[HoursPerDay]int{}
		s.hourly[rec.Junction] = buckets
	}
	if rec.Hour >= 0 && rec.Hour < HoursPerDay {
		buckets[rec.Hour]++
	}

	if rec.Speed != nil && *rec.Speed > s.threshold {
		s.violations++
	}
	s.weather[rec.Weather]++
	if rec.Weather == model.WeatherRain {
		s.rainHours[rec.Hour] = struct{}{}
	}
	if rec.Vehicle == model.VehicleBike {
		s.bikeHours[rec.Hour] = struct{}{}
	}
	if rec.Electric {
		s.electric++
	}
}

// Total returns the number of records folded in so far.
func (s *State) Total() int {
	return s.total
}

// HourlyCounts returns the per-hour bucket array for a junction. Junctions
// never seen yield an all-zero array.
func (s *State) HourlyCounts(junction string) [HoursPerDay]int {
	if buckets, ok := s.hourly[junction]; ok {
		return *buckets
	}
	return [HoursPerDay]int{}
}

// Junctions returns every junction seen, sorted by name.
func (s *State) Junctions() []string {
	names := make([]string, 0, len(s.hourly))
	for name := range s.hourly {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HourCount is a peak-hour result: the bucket hour and its count.
type HourCount struct {
	Hour  int
	Count int
}

// JunctionSummary summarizes one junction. Peak and Share are nil when the
// junction saw no traffic.
type JunctionSummary struct {
	Name  string
	Total int
	Peak  *HourCount
	Share *float64
}

// Summary is the read-only snapshot handed to the formatter and the chart.
// TruckPct is nil when no records survived filtering.
type Summary struct {
	Config     model.RunConfig
	Total      int
	ByVehicle  map[model.VehicleType]int
	Electric   int
	TruckPct   *float64
	Violations int
	Weather    map[model.Weather]int
	RainHours  int
	AvgBikes   int
	Junctions  []JunctionSummary
}

// Snapshot computes the summary for the two junctions named by cfg. The state
// is not modified; an empty state yields a defined no-data summary.
func (s *State) Snapshot(cfg model.RunConfig) Summary {
	sum := Summary{
		Config:     cfg,
		Total:      s.total,
		ByVehicle:  map[model.VehicleType]int{},
		Electric:   s.electric,
		Violations: s.violations,
		Weather:    map[model.Weather]int{},
		RainHours:  len(s.rainHours),
	}
	for vt, n := range s.byVehicle {
		sum.ByVehicle[vt] = n
	}
	for w, n := range s.weather {
		sum.Weather[w] = n
	}
	if s.total > 0 {
		pct := round2(float64(s.byVehicle[model.VehicleTruck]) / float64(s.total) * 100)
		sum.TruckPct = &pct
	}
	if len(s.bikeHours) > 0 {
		sum.AvgBikes = int(math.Round(float64(s.byVehicle[model.VehicleBike]) / float64(len(s.bikeHours))))
	}
	for _, name := range []string{cfg.JunctionA, cfg.JunctionB} {
		sum.Junctions = append(sum.Junctions, s.summarizeJunction(name))
	}
	return sum
}

func (s *State) summarizeJunction(name string) JunctionSummary {
	buckets := s.HourlyCounts(name)
	js := JunctionSummary{Name: name}
	for _, n := range buckets {
		js.Total += n
	}
	if js.Total == 0 {
		return js
	}
	// Strict comparison keeps the earliest hour on ties.
	peak := HourCount{Hour: 0, Count: buckets[0]}
	for hour := 1; hour < HoursPerDay; hour++ {
		if buckets[hour] > peak.Count {
			peak = HourCount{Hour: hour, Count: buckets[hour]}
		}
	}
	js.Peak = &peak
	if s.total > 0 {
		share := round2(float64(js.Total) / float64(s.total) * 100)
		js.Share = &share
	}
	return js
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
