package adapter

import "time"

// Input gathers the raw records of one project, as decoded from the JSON
// documents of the SonarQube web API.
type Input struct {
	// Project is the component document of the project (api/components/show).
	Project map[string]any
	// Issues are the entries of api/issues/search.
	Issues []map[string]any
	// Facets are the facets of api/issues/search.
	Facets []map[string]any
	// Profiles are the quality profiles used by the project.
	Profiles []RawProfile
	// Measures are the project-level measures (api/measures/component).
	Measures []map[string]any
	// Components are the files of the project with their own measures
	// (api/measures/component_tree).
	Components []map[string]any
	// QualityGate is the quality gate verdict (api/qualitygates/project_status
	// merged with the gate name).
	QualityGate map[string]any
	// Languages are the languages known to the server (api/languages/list).
	Languages []map[string]any

	Author string
	Date   time.Time
	Branch string
}

// RawProfile is one quality profile with its active rules and the projects
// it is assigned to.
type RawProfile struct {
	Meta     map[string]any
	Rules    []map[string]any
	Projects []map[string]any
}
