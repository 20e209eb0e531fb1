package model

// NoBranch is the branch value meaning "the main branch of the project".
const NoBranch = "%master%"

// BranchName returns branch, or an empty string for NoBranch.
func BranchName(branch string) string {
	if branch == NoBranch {
		return ""
	}
	return branch
}

// Project is the analyzed project. Languages maps a language key to the
// language used by one of its quality profiles.
type Project struct {
	Key               string              `json:"key"`
	Name              string              `json:"name"`
	Version           string              `json:"version,omitempty"`
	Description       string              `json:"description,omitempty"`
	QualityGateStatus string              `json:"qualityGateStatus,omitempty"`
	QualityProfiles   []ProfileMetaData   `json:"qualityProfiles,omitempty"`
	Languages         map[string]Language `json:"languages,omitempty"`
}

// Condition is one threshold of a quality gate with its evaluated value.
type Condition struct {
	Metric         string `json:"metric"`
	Comparator     string `json:"comparator"`
	ErrorThreshold string `json:"errorThreshold"`
	ActualValue    string `json:"actualValue"`
	Status         string `json:"status"`
}

// QualityGate is the pass/fail verdict of the project.
type QualityGate struct {
	Name       string      `json:"name"`
	Status     string      `json:"status"`
	Conditions []Condition `json:"conditions,omitempty"`
}
