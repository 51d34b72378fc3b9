// Package agronomy defines the vocabulary shared by the recommendation engine
// and its presenters: the seven measured features, the measurement set that
// carries their values, and the closed set of crops the engine can recommend.
package agronomy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Features
// ---------------------------------------------------------------------------

// Feature identifies one of the seven measured inputs.
type Feature int

const (
	Nitrogen Feature = iota
	Phosphorus
	Potassium
	Temperature
	Humidity
	PH
	Rainfall
)

// Features lists every feature in vocabulary order. The order is load-bearing:
// it breaks ties wherever features are ranked.
var Features = []Feature{Nitrogen, Phosphorus, Potassium, Temperature, Humidity, PH, Rainfall}

var featureKeys = [...]string{"nitrogen", "phosphorus", "potassium", "temperature", "humidity", "ph", "rainfall"}
var featureLabels = [...]string{"Nitrogen", "Phosphorus", "Potassium", "Temp", "Humidity", "pH", "Rainfall"}
var featureUnits = [...]string{"", "", "", "°C", "%", "", "mm"}

func (f Feature) valid() bool { return f >= Nitrogen && f <= Rainfall }

// Key is the lower-case identifier used by input widgets, flags and config keys.
func (f Feature) Key() string {
	if !f.valid() {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureKeys[f]
}

// Label is the short display name used in charts ("Temp", "pH").
func (f Feature) Label() string {
	if !f.valid() {
		return f.Key()
	}
	return featureLabels[f]
}

// Unit is the display unit appended to values ("mm", "%"); may be empty.
func (f Feature) Unit() string {
	if !f.valid() {
		return ""
	}
	return featureUnits[f]
}

func (f Feature) String() string { return f.Key() }

// ParseFeature resolves a feature key (case-insensitive).
func ParseFeature(key string) (Feature, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, k := range featureKeys {
		if k == key {
			return Feature(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Measurement set
// ---------------------------------------------------------------------------

// MeasurementSet holds the seven numeric inputs. Soil nutrients are in
// arbitrary non-negative units, temperature in °C, humidity in percent,
// rainfall in mm. It is a plain value: copies never alias.
type MeasurementSet struct {
	Nitrogen    float64 `yaml:"nitrogen" mapstructure:"nitrogen" csv:"N"`
	Phosphorus  float64 `yaml:"phosphorus" mapstructure:"phosphorus" csv:"P"`
	Potassium   float64 `yaml:"potassium" mapstructure:"potassium" csv:"K"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" csv:"temperature"`
	Humidity    float64 `yaml:"humidity" mapstructure:"humidity" csv:"humidity"`
	PH          float64 `yaml:"ph" mapstructure:"ph" csv:"ph"`
	Rainfall    float64 `yaml:"rainfall" mapstructure:"rainfall" csv:"rainfall"`
}

// DefaultMeasurements is the sample field the interactive surface starts with.
func DefaultMeasurements() MeasurementSet {
	return MeasurementSet{
		Nitrogen:    90,
		Phosphorus:  42,
		Potassium:   43,
		Temperature: 20.8,
		Humidity:    82.0,
		PH:          6.5,
		Rainfall:    202.9,
	}
}

// Get returns the value of f. Unknown features read as 0.
func (m MeasurementSet) Get(f Feature) float64 {
	switch f {
	case Nitrogen:
		return m.Nitrogen
	case Phosphorus:
		return m.Phosphorus
	case Potassium:
		return m.Potassium
	case Temperature:
		return m.Temperature
	case Humidity:
		return m.Humidity
	case PH:
		return m.PH
	case Rainfall:
		return m.Rainfall
	default:
		return 0
	}
}

// With returns a copy of m with f set to v. Non-finite values are stored as 0
// so a MeasurementSet never holds NaN or ±Inf.
func (m MeasurementSet) With(f Feature, v float64) MeasurementSet {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	switch f {
	case Nitrogen:
		m.Nitrogen = v
	case Phosphorus:
		m.Phosphorus = v
	case Potassium:
		m.Potassium = v
	case Temperature:
		m.Temperature = v
	case Humidity:
		m.Humidity = v
	case PH:
		m.PH = v
	case Rainfall:
		m.Rainfall = v
	}
	return m
}

// Sanitized returns m with every non-finite field replaced by 0.
func (m MeasurementSet) Sanitized() MeasurementSet {
	for _, f := range Features {
		m = m.With(f, m.Get(f))
	}
	return m
}

// FormatValue renders v the way input widgets show it: shortest
// representation, no trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseValue converts raw widget text into a measurement value. It accepts the
// longest leading numeric prefix ("12.5kg" → 12.5) and resolves anything else
// (empty, non-numeric, overflow to ±Inf) to 0. It never fails.
func ParseValue(raw string) float64 {
	prefix := numericPrefix(strings.TrimSpace(raw))
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// numericPrefix returns the longest prefix of s that forms a decimal float
// literal: [sign] digits [. digits] [e [sign] digits]. At least one mantissa
// digit is required; an exponent without digits is dropped.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return s[:i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ---------------------------------------------------------------------------
// Crops
// ---------------------------------------------------------------------------

// Crop is a recommendation label from the closed crop set.
type Crop string

const (
	Rice      Crop = "Rice"
	Mothbeans Crop = "Mothbeans"
	Coffee    Crop = "Coffee"
)

// Crops lists the closed crop set.
var Crops = []Crop{Rice, Mothbeans, Coffee}

func (c Crop) String() string { return string(c) }

// ParseCrop resolves a crop label case-insensitively ("rice", "MOTHBEANS").
func ParseCrop(label string) (Crop, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Crops {
		if strings.EqualFold(string(c), label) {
			return c, true
		}
	}
	return "", false
}
