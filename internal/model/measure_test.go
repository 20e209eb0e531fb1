package model

import (
	"encoding/json"
	"testing"
)

// TestMetricStatisticObserve tests widening of the bounds.
func TestMetricStatisticObserve(t *testing.T) {
	t.Parallel()

	var s MetricStatistic
	if s.Min.Valid || s.Max.Valid {
		t.Fatal("zero statistic should have absent bounds")
	}
	for _, v := range []float64{3, -1, 7.5, 2} {
		s.Observe(v)
	}
	if s.Min != Some(-1) {
		t.Errorf("min = %+v, expected -1", s.Min)
	}
	if s.Max != Some(7.5) {
		t.Errorf("max = %+v, expected 7.5", s.Max)
	}
}

// TestBoundString tests rendering of present and absent bounds.
func TestBoundString(t *testing.T) {
	t.Parallel()

	if got := (Bound{}).String("N/A"); got != "N/A" {
		t.Errorf("got %q, expected %q", got, "N/A")
	}
	if got := Some(0).String("N/A"); got != "0" {
		t.Errorf("got %q, expected %q", got, "0")
	}
}

// TestBoundJSON tests that absent bounds encode as null.
func TestBoundJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(MetricStatistic{Metric: "coverage", Max: Some(90)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"metric":"coverage","min":null,"max":90}`
	if string(data) != expected {
		t.Errorf("got %s, expected %s", data, expected)
	}
}
