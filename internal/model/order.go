package model

import (
	"cmp"
	"slices"
	"strings"
)

// CompareIssues orders issues by rule key ascending, then by severity from
// the most to the least severe, then by message ascending.
func CompareIssues(a, b Issue) int {
	if c := strings.Compare(a.Rule, b.Rule); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
		return c
	}
	return strings.Compare(a.Message, b.Message)
}

// SortIssues sorts issues in place with CompareIssues.
// The sort is stable: issues comparing equal keep their input order.
func SortIssues(issues []Issue) {
	slices.SortStableFunc(issues, CompareIssues)
}

// CompareRules orders rules by key ascending.
func CompareRules(a, b Rule) int {
	return strings.Compare(a.Key, b.Key)
}

// SortRules sorts rules in place with CompareRules, keeping equal keys in input order.
func SortRules(rules []Rule) {
	slices.SortStableFunc(rules, CompareRules)
}
