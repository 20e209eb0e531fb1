package model

import (
	"slices"
	"time"
)

// Report is the aggregate handed to every exporter.
//
// Issues are deduplicated and sorted with CompareIssues. RawIssues keep the
// upstream order. A Report must be treated as read-only once built.
type Report struct {
	Project         Project                    `json:"project"`
	Branch          string                     `json:"branch,omitempty"`
	Author          string                     `json:"author"`
	Date            time.Time                  `json:"date"`
	Issues          []Issue                    `json:"issues"`
	RawIssues       []RawIssue                 `json:"rawIssues"`
	Facets          []Facet                    `json:"facets"`
	QualityProfiles []QualityProfile           `json:"qualityProfiles"`
	QualityGate     QualityGate                `json:"qualityGate"`
	Measures        []Measure                  `json:"measures"`
	MetricStats     map[string]MetricStatistic `json:"metricStats"`
	Languages       []Language                 `json:"languages"`
}

// ProjectName returns the display name of the project, falling back to its key.
func (r *Report) ProjectName() string {
	if r.Project.Name != "" {
		return r.Project.Name
	}
	return r.Project.Key
}

// Measure returns the value of the measure of metric, if any.
func (r *Report) Measure(metric string) (string, bool) {
	for _, m := range r.Measures {
		if m.Metric == metric {
			return m.Value, true
		}
	}
	return "", false
}

// Statistic returns the min/max statistic of metric, if it was computed.
func (r *Report) Statistic(metric string) (MetricStatistic, bool) {
	s, ok := r.MetricStats[metric]
	return s, ok
}

// StatisticMetrics returns the metrics that have a statistic, sorted.
func (r *Report) StatisticMetrics() []string {
	keys := make([]string, 0, len(r.MetricStats))
	for k := range r.MetricStats {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Facet returns the facet named property, if any.
func (r *Report) Facet(property string) (Facet, bool) {
	for _, f := range r.Facets {
		if f.Property == property {
			return f, true
		}
	}
	return Facet{}, false
}

// IssueCountBySeverity counts the issues of each severity.
func (r *Report) IssueCountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, len(severityNames))
	for _, i := range r.Issues {
		counts[i.Severity]++
	}
	return counts
}

// IssueCountByType counts the issues of each type.
func (r *Report) IssueCountByType() map[IssueType]int {
	counts := make(map[IssueType]int, len(issueTypeNames))
	for _, i := range r.Issues {
		counts[i.Type]++
	}
	return counts
}

// Rules returns the rules of every quality profile, first occurrence of a key
// winning, sorted with CompareRules.
func (r *Report) Rules() []Rule {
	seen := make(map[string]struct{})
	var rules []Rule
	for _, p := range r.QualityProfiles {
		for _, rule := range p.Rules {
			if _, ok := seen[rule.Key]; ok {
				continue
			}
			seen[rule.Key] = struct{}{}
			rules = append(rules, rule)
		}
	}
	SortRules(rules)
	return rules
}

// Rule looks up a rule by key across quality profiles.
func (r *Report) Rule(key string) (Rule, bool) {
	for _, p := range r.QualityProfiles {
		for _, rule := range p.Rules {
			if rule.Key == key {
				return rule, true
			}
		}
	}
	return Rule{}, false
}
