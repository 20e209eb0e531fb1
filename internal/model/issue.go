package model

// Issue is a single finding produced by the static analysis of a project.
type Issue struct {
	// Key identifies the issue on the upstream server.
	Key string `json:"key"`
	// Project is the key of the project the issue was raised on.
	Project string `json:"project,omitempty"`
	// Component is the file or module path the issue belongs to.
	Component string `json:"component"`
	// Line is the 1-based line of the finding. Zero means the finding is
	// not attached to a line (project-level or file-level finding).
	Line     int       `json:"line,omitempty"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity,omitempty"`
	Status   string    `json:"status"`
	Type     IssueType `json:"type"`
	Rule     string    `json:"rule"`
}

// HasLine reports whether the issue is attached to a source line.
func (i Issue) HasLine() bool {
	return i.Line > 0
}

// IssueIdentity is the set of observable fields two issues are compared on
// when duplicates are removed.
type IssueIdentity struct {
	Key       string
	Component string
	Line      int
	Message   string
	Severity  Severity
	Status    string
	Type      IssueType
	Rule      string
}

// Identity returns the observable fields of the issue.
// Project is deliberately excluded: it is metadata attached by the server.
func (i Issue) Identity() IssueIdentity {
	return IssueIdentity{
		Key:       i.Key,
		Component: i.Component,
		Line:      i.Line,
		Message:   i.Message,
		Severity:  i.Severity,
		Status:    i.Status,
		Type:      i.Type,
		Rule:      i.Rule,
	}
}

// FacetValue is one bucket of a facet.
type FacetValue struct {
	Value string `json:"val"`
	Count int    `json:"count"`
}

// Facet is a named histogram over the issues of a project, for example
// issue counts per severity or per rule.
type Facet struct {
	Property string       `json:"property"`
	Values   []FacetValue `json:"values"`
}

// Count returns the count recorded for value, or zero when the bucket is absent.
func (f Facet) Count(value string) int {
	for _, v := range f.Values {
		if v.Value == value {
			return v.Count
		}
	}
	return 0
}
