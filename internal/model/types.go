// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// VehicleType classifies one observed vehicle.
type VehicleType int

// Known vehicle classes. Unrecognized tokens map to VehicleOther.
const (
	VehicleCar VehicleType = iota
	VehicleTruck
	VehicleBike
	VehicleOther
)

// VehicleTypes lists all classes in report order.
var VehicleTypes = []VehicleType{VehicleCar, VehicleTruck, VehicleBike, VehicleOther}

// String returns the report label for the class.
func (v VehicleType) String() string {
	switch v {
	case VehicleCar:
		return "car"
	case VehicleTruck:
		return "truck"
	case VehicleBike:
		return "bike"
	default:
		return "other"
	}
}

// ParseVehicleType classifies a raw token. Case and surrounding whitespace
// are ignored; two-wheelers collapse into the bike class.
func ParseVehicleType(token string) VehicleType {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "car":
		return VehicleCar
	case "truck", "lorry":
		return VehicleTruck
	case "bike", "bicycle", "cycle", "motorcycle", "scooter":
		return VehicleBike
	default:
		return VehicleOther
	}
}

// Weather classifies the recorded weather condition.
type Weather int

// Known conditions. Unrecognized tokens map to WeatherUnknown.
const (
	WeatherUnknown Weather = iota
	WeatherClear
	WeatherRain
	WeatherSnow
	WeatherFog
)

// WeatherConditions lists all conditions in report order.
var WeatherConditions = []Weather{WeatherClear, WeatherRain, WeatherSnow, WeatherFog, WeatherUnknown}

// String returns the report label for the condition.
func (w Weather) String() string {
	switch w {
	case WeatherClear:
		return "clear"
	case WeatherRain:
		return "rain"
	case WeatherSnow:
		return "snow"
	case WeatherFog:
		return "fog"
	default:
		return "unknown"
	}
}

// ParseWeather classifies a raw token. Any token containing "rain"
// (light rain, heavy rain) counts as rain.
func ParseWeather(token string) Weather {
	token = strings.ToLower(strings.TrimSpace(token))
	switch token {
	case "clear", "sunny", "dry":
		return WeatherClear
	case "snow":
		return WeatherSnow
	case "fog", "mist":
		return WeatherFog
	}
	if strings.Contains(token, "rain") || token == "drizzle" {
		return WeatherRain
	}
	return WeatherUnknown
}

// Record is one parsed, validated traffic observation. Speed is nil when the
// field was missing or unparseable.
type Record struct {
	Date     time.Time
	Hour     int
	Junction string
	Vehicle  VehicleType
	Speed    *float64
	Weather  Weather
	Electric bool
}

// RunConfig carries the parameters of a single analysis run.
type RunConfig struct {
	Date       time.Time
	InputPath  string
	ReportPath string
	Threshold  float64
	JunctionA  string
	JunctionB  string
}
