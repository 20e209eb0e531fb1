package model

// Rule is a static analysis rule.
type Rule struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	HTMLDesc     string    `json:"htmlDesc,omitempty"`
	Severity     Severity  `json:"severity,omitempty"`
	Type         IssueType `json:"type,omitempty"`
	Language     string    `json:"lang,omitempty"`
	LanguageName string    `json:"langName,omitempty"`
}

// ProfileMetaData describes a quality profile without its rules.
type ProfileMetaData struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Language        string `json:"language"`
	LanguageName    string `json:"languageName,omitempty"`
	IsDefault       bool   `json:"isDefault"`
	ActiveRuleCount int    `json:"activeRuleCount"`
}

// QualityProfile is a named set of active rules for one language.
type QualityProfile struct {
	ProfileMetaData
	Rules    []Rule    `json:"rules"`
	Projects []Project `json:"projects,omitempty"`
}

// Language is a programming language known to the upstream server.
type Language struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}
