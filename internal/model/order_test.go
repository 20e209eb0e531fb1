package model

import (
	"slices"
	"testing"
)

// TestSortIssues tests the rule, severity, message ordering.
func TestSortIssues(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Key: "a", Rule: "squid:1234", Severity: SeverityMajor, Message: "a"},
		{Key: "b", Rule: "squid:1234", Severity: SeverityBlocker, Message: "z"},
		{Key: "c", Rule: "squid:0001", Severity: SeverityInfo, Message: "m"},
		{Key: "d", Rule: "squid:1234", Severity: SeverityMajor, Message: "0"},
	}
	SortIssues(issues)

	got := make([]string, len(issues))
	for i, issue := range issues {
		got[i] = issue.Key
	}
	expected := []string{"c", "b", "d", "a"}
	if !slices.Equal(got, expected) {
		t.Errorf("got %v, expected %v", got, expected)
	}
}

// TestSortIssuesStable tests that equal issues keep their input order.
func TestSortIssuesStable(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Key: "first", Rule: "r", Severity: SeverityMinor, Message: "same"},
		{Key: "second", Rule: "r", Severity: SeverityMinor, Message: "same"},
		{Key: "third", Rule: "r", Severity: SeverityMinor, Message: "same"},
	}
	SortIssues(issues)

	for i, expected := range []string{"first", "second", "third"} {
		if issues[i].Key != expected {
			t.Errorf("position %d: got %q, expected %q", i, issues[i].Key, expected)
		}
	}
}

// TestSortIssuesHotspotLast tests that issues without severity sort after rated ones.
func TestSortIssuesHotspotLast(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Key: "hotspot", Rule: "r", Type: TypeSecurityHotspot},
		{Key: "info", Rule: "r", Severity: SeverityInfo, Type: TypeCodeSmell},
	}
	SortIssues(issues)

	if issues[0].Key != "info" {
		t.Errorf("got %q first, expected %q", issues[0].Key, "info")
	}
}

// TestSortRules tests ordering of rules by key.
func TestSortRules(t *testing.T) {
	t.Parallel()

	rules := []Rule{{Key: "squid:S2"}, {Key: "common-java:X"}, {Key: "squid:S1"}}
	SortRules(rules)

	expected := []string{"common-java:X", "squid:S1", "squid:S2"}
	for i, key := range expected {
		if rules[i].Key != key {
			t.Errorf("position %d: got %q, expected %q", i, rules[i].Key, key)
		}
	}
}
