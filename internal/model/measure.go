package model

import (
	"encoding/json"
	"strconv"
)

// Measure is a project-level metric value as reported by the server.
// Values stay textual: percentages, ratings and counts share the field.
type Measure struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// Float parses the measure value as a number.
func (m Measure) Float() (float64, bool) {
	v, err := strconv.ParseFloat(m.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Bound is an optional numeric bound. Absent bounds exist when no component
// reports the metric, and they are kept distinct from zero.
type Bound struct {
	Value float64
	Valid bool
}

// Some returns a present bound.
func Some(v float64) Bound {
	return Bound{Value: v, Valid: true}
}

// String formats the bound, or returns notAvailable when it is absent.
func (b Bound) String(notAvailable string) string {
	if !b.Valid {
		return notAvailable
	}
	return strconv.FormatFloat(b.Value, 'f', -1, 64)
}

// MarshalJSON encodes an absent bound as null.
func (b Bound) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

// UnmarshalJSON decodes null as an absent bound.
func (b *Bound) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = Bound{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Some(v)
	return nil
}

// MetricStatistic holds the minimum and maximum of a metric across the
// components of a project.
type MetricStatistic struct {
	Metric string `json:"metric"`
	Min    Bound  `json:"min"`
	Max    Bound  `json:"max"`
}

// Observe widens the statistic to include v.
func (s *MetricStatistic) Observe(v float64) {
	if !s.Min.Valid || v < s.Min.Value {
		s.Min = Some(v)
	}
	if !s.Max.Valid || v > s.Max.Value {
		s.Max = Some(v)
	}
}
