package adapter

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// DefaultMetrics are the metrics for which min/max statistics are computed
// when no other list is configured.
var DefaultMetrics = []string{
	"complexity",
	"ncloc",
	"comment_lines_density",
	"duplicated_lines_density",
	"cognitive_complexity",
	"coverage",
}

// Adapter assembles reports. The zero value is not usable, call New.
type Adapter struct {
	logger  *slog.Logger
	metrics []string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for data warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithMetrics replaces the metrics for which statistics are computed.
func WithMetrics(metrics ...string) Option {
	return func(a *Adapter) {
		a.metrics = slices.Clone(metrics)
	}
}

// New creates an Adapter with the given options.
func New(opts ...Option) *Adapter {
	a := &Adapter{metrics: slices.Clone(DefaultMetrics)}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Assemble builds a report with a default Adapter.
func Assemble(in Input) (*model.Report, error) {
	return New().Assemble(in)
}

// Assemble normalizes the raw records of in into a report.
func (a *Adapter) Assemble(in Input) (*model.Report, error) {
	project, err := a.project(in.Project)
	if err != nil {
		return nil, err
	}
	languages, err := a.languages(in.Languages)
	if err != nil {
		return nil, err
	}
	issues, raws, err := a.issues(in.Issues)
	if err != nil {
		return nil, err
	}
	facets, err := a.facets(in.Facets)
	if err != nil {
		return nil, err
	}
	profiles, err := a.profiles(in.Profiles)
	if err != nil {
		return nil, err
	}
	measures, err := a.measures(in.Measures)
	if err != nil {
		return nil, err
	}
	gate, err := a.qualityGate(in.QualityGate)
	if err != nil {
		return nil, err
	}
	stats, err := a.statistics(in.Components)
	if err != nil {
		return nil, err
	}

	if project.QualityGateStatus == "" {
		project.QualityGateStatus = gate.Status
	}
	project.Languages = projectLanguages(languages, project, profiles)

	a.logger.Debug("report assembled",
		"project", project.Key,
		"issues", len(issues),
		"raw_issues", len(raws),
		"profiles", len(profiles),
		"statistics", len(stats))

	return &model.Report{
		Project:         project,
		Branch:          in.Branch,
		Author:          in.Author,
		Date:            in.Date,
		Issues:          issues,
		RawIssues:       raws,
		Facets:          facets,
		QualityProfiles: profiles,
		QualityGate:     gate,
		Measures:        measures,
		MetricStats:     stats,
		Languages:       languages,
	}, nil
}

func (a *Adapter) project(m map[string]any) (model.Project, error) {
	const kind = "project"
	if m == nil {
		return model.Project{}, recordErr(kind, -1, "", errMissing)
	}

	var p model.Project
	var err error
	if p.Key, err = requiredString(m, "key"); err != nil {
		return p, recordErr(kind, -1, "key", err)
	}
	for field, dst := range map[string]*string{
		"name":        &p.Name,
		"version":     &p.Version,
		"description": &p.Description,
	} {
		if *dst, err = stringField(m, field); err != nil {
			return p, recordErr(kind, -1, field, err)
		}
	}
	status, field, err := firstString(m, "qualityGateStatus", "qualityGate", "alert_status")
	if err != nil {
		return p, recordErr(kind, -1, field, err)
	}
	p.QualityGateStatus = status

	metas, err := objectList(m, "qualityProfiles")
	if err != nil {
		return p, recordErr(kind, -1, "qualityProfiles", err)
	}
	for _, meta := range metas {
		pm, field, err := profileMeta(meta)
		if err != nil {
			return p, recordErr(kind, -1, "qualityProfiles."+field, err)
		}
		p.QualityProfiles = append(p.QualityProfiles, pm)
	}
	return p, nil
}

func (a *Adapter) languages(records []map[string]any) ([]model.Language, error) {
	const kind = "language"
	languages := make([]model.Language, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, m := range records {
		key, err := requiredString(m, "key")
		if err != nil {
			return nil, recordErr(kind, i, "key", err)
		}
		name, err := stringField(m, "name")
		if err != nil {
			return nil, recordErr(kind, i, "name", err)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		languages = append(languages, model.Language{Key: key, Name: name})
	}
	slices.SortStableFunc(languages, func(x, y model.Language) int {
		return strings.Compare(x.Key, y.Key)
	})
	return languages, nil
}

func (a *Adapter) issues(records []map[string]any) ([]model.Issue, []model.RawIssue, error) {
	const kind = "issue"
	issues := make([]model.Issue, 0, len(records))
	raws := make([]model.RawIssue, 0, len(records))
	seen := make(map[model.IssueIdentity]struct{}, len(records))
	keys := make(map[string]struct{}, len(records))

	for i, m := range records {
		issue, field, err := parseIssue(m)
		if err != nil {
			return nil, nil, recordErr(kind, i, field, err)
		}
		raw, err := model.RawIssueFromMap(m)
		if err != nil {
			return nil, nil, recordErr(kind, i, "", err)
		}
		raws = append(raws, raw)

		id := issue.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if issue.Key != "" {
			if _, shared := keys[issue.Key]; shared {
				a.logger.Warn("distinct issues share a key", "key", issue.Key, "index", i)
			}
			keys[issue.Key] = struct{}{}
		}
		issues = append(issues, issue)
	}

	model.SortIssues(issues)
	return issues, raws, nil
}

func parseIssue(m map[string]any) (model.Issue, string, error) {
	var issue model.Issue
	var err error
	typ, err := requiredString(m, "type")
	if err != nil {
		return issue, "type", err
	}
	if issue.Type, err = model.ParseIssueType(typ); err != nil {
		return issue, "type", err
	}
	hotspot := issue.Type == model.TypeSecurityHotspot

	// Hotspots may arrive without a key or a severity.
	if hotspot {
		issue.Key, err = stringField(m, "key")
	} else {
		issue.Key, err = requiredString(m, "key")
	}
	if err != nil {
		return issue, "key", err
	}
	for field, dst := range map[string]*string{
		"project":   &issue.Project,
		"component": &issue.Component,
		"message":   &issue.Message,
		"status":    &issue.Status,
		"rule":      &issue.Rule,
	} {
		if *dst, err = stringField(m, field); err != nil {
			return issue, field, err
		}
	}
	if issue.Line, err = intField(m, "line"); err != nil {
		return issue, "line", err
	}
	if issue.Line < 0 {
		return issue, "line", fmt.Errorf("negative line %d", issue.Line)
	}

	if hotspot {
		issue.Severity, err = optionalSeverity(m, "severity")
	} else {
		issue.Severity, err = requiredSeverity(m, "severity")
	}
	if err != nil {
		return issue, "severity", err
	}
	return issue, "", nil
}

func optionalSeverity(m map[string]any, name string) (model.Severity, error) {
	token, err := stringField(m, name)
	if err != nil || token == "" {
		return model.SeverityNone, err
	}
	return model.ParseSeverity(token)
}

func requiredSeverity(m map[string]any, name string) (model.Severity, error) {
	token, err := requiredString(m, name)
	if err != nil {
		return model.SeverityNone, err
	}
	return model.ParseSeverity(token)
}

func (a *Adapter) facets(records []map[string]any) ([]model.Facet, error) {
	const kind = "facet"
	facets := make([]model.Facet, 0, len(records))
	for i, m := range records {
		property, err := requiredString(m, "property")
		if err != nil {
			return nil, recordErr(kind, i, "property", err)
		}
		entries, err := objectList(m, "values")
		if err != nil {
			return nil, recordErr(kind, i, "values", err)
		}

		facet := model.Facet{Property: property, Values: make([]model.FacetValue, 0, len(entries))}
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			val, err := stringField(e, "val")
			if err != nil {
				return nil, recordErr(kind, i, "values.val", err)
			}
			count, err := intField(e, "count")
			if err != nil {
				return nil, recordErr(kind, i, "values.count", err)
			}
			if _, dup := seen[val]; dup {
				return nil, recordErr(kind, i, "values.val", fmt.Errorf("%w: %q", errDuplicate, val))
			}
			seen[val] = struct{}{}
			facet.Values = append(facet.Values, model.FacetValue{Value: val, Count: count})
		}
		facets = append(facets, facet)
	}
	return facets, nil
}

func profileMeta(m map[string]any) (model.ProfileMetaData, string, error) {
	var pm model.ProfileMetaData
	var err error
	if pm.Key, err = requiredString(m, "key"); err != nil {
		return pm, "key", err
	}
	for field, dst := range map[string]*string{
		"name":         &pm.Name,
		"language":     &pm.Language,
		"languageName": &pm.LanguageName,
	} {
		if *dst, err = stringField(m, field); err != nil {
			return pm, field, err
		}
	}
	if pm.IsDefault, err = boolField(m, "isDefault"); err != nil {
		return pm, "isDefault", err
	}
	if pm.ActiveRuleCount, err = intField(m, "activeRuleCount"); err != nil {
		return pm, "activeRuleCount", err
	}
	return pm, "", nil
}

func (a *Adapter) profiles(records []RawProfile) ([]model.QualityProfile, error) {
	const kind = "profile"
	profiles := make([]model.QualityProfile, 0, len(records))
	for i, rp := range records {
		if rp.Meta == nil {
			return nil, recordErr(kind, i, "", errMissing)
		}
		meta, field, err := profileMeta(rp.Meta)
		if err != nil {
			return nil, recordErr(kind, i, field, err)
		}

		profile := model.QualityProfile{ProfileMetaData: meta, Rules: make([]model.Rule, 0, len(rp.Rules))}
		for _, m := range rp.Rules {
			rule, field, err := parseRule(m)
			if err != nil {
				return nil, recordErr(kind, i, "rules."+field, err)
			}
			profile.Rules = append(profile.Rules, rule)
		}
		model.SortRules(profile.Rules)

		for _, m := range rp.Projects {
			key, err := requiredString(m, "key")
			if err != nil {
				return nil, recordErr(kind, i, "projects.key", err)
			}
			name, err := stringField(m, "name")
			if err != nil {
				return nil, recordErr(kind, i, "projects.name", err)
			}
			profile.Projects = append(profile.Projects, model.Project{Key: key, Name: name})
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func parseRule(m map[string]any) (model.Rule, string, error) {
	var rule model.Rule
	var err error
	if rule.Key, err = requiredString(m, "key"); err != nil {
		return rule, "key", err
	}
	for field, dst := range map[string]*string{
		"name":     &rule.Name,
		"htmlDesc": &rule.HTMLDesc,
		"lang":     &rule.Language,
		"langName": &rule.LanguageName,
	} {
		if *dst, err = stringField(m, field); err != nil {
			return rule, field, err
		}
	}
	if rule.Severity, err = optionalSeverity(m, "severity"); err != nil {
		return rule, "severity", err
	}
	typ, err := stringField(m, "type")
	if err != nil {
		return rule, "type", err
	}
	if typ != "" {
		if rule.Type, err = model.ParseIssueType(typ); err != nil {
			return rule, "type", err
		}
	}
	return rule, "", nil
}

func (a *Adapter) measures(records []map[string]any) ([]model.Measure, error) {
	const kind = "measure"
	measures := make([]model.Measure, 0, len(records))
	for i, m := range records {
		metric, err := requiredString(m, "metric")
		if err != nil {
			return nil, recordErr(kind, i, "metric", err)
		}
		value, err := stringField(m, "value")
		if err != nil {
			return nil, recordErr(kind, i, "value", err)
		}
		measures = append(measures, model.Measure{Metric: metric, Value: value})
	}
	return measures, nil
}

func (a *Adapter) qualityGate(m map[string]any) (model.QualityGate, error) {
	const kind = "qualitygate"
	var gate model.QualityGate
	if m == nil {
		return gate, nil
	}
	if nested, ok := m["projectStatus"].(map[string]any); ok {
		merged := make(map[string]any, len(m)+len(nested))
		for k, v := range nested {
			merged[k] = v
		}
		if name, ok := m["name"]; ok {
			merged["name"] = name
		}
		m = merged
	}

	var err error
	if gate.Name, err = stringField(m, "name"); err != nil {
		return gate, recordErr(kind, -1, "name", err)
	}
	if gate.Status, err = stringField(m, "status"); err != nil {
		return gate, recordErr(kind, -1, "status", err)
	}
	conditions, err := objectList(m, "conditions")
	if err != nil {
		return gate, recordErr(kind, -1, "conditions", err)
	}
	for i, c := range conditions {
		var cond model.Condition
		metric, field, err := firstString(c, "metricKey", "metric")
		if err != nil {
			return gate, recordErr("condition", i, field, err)
		}
		if metric == "" {
			return gate, recordErr("condition", i, "metricKey", errMissing)
		}
		cond.Metric = metric
		for field, dst := range map[string]*string{
			"comparator":     &cond.Comparator,
			"errorThreshold": &cond.ErrorThreshold,
			"actualValue":    &cond.ActualValue,
			"status":         &cond.Status,
		} {
			if *dst, err = stringField(c, field); err != nil {
				return gate, recordErr("condition", i, field, err)
			}
		}
		gate.Conditions = append(gate.Conditions, cond)
	}
	return gate, nil
}

// statistics computes the bounds of every configured metric in one pass
// over the component measures. Metrics no component reports keep absent
// bounds.
func (a *Adapter) statistics(components []map[string]any) (map[string]model.MetricStatistic, error) {
	const kind = "component"
	stats := make(map[string]*model.MetricStatistic, len(a.metrics))
	for _, metric := range a.metrics {
		stats[metric] = &model.MetricStatistic{Metric: metric}
	}

	for i, c := range components {
		measures, err := objectList(c, "measures")
		if err != nil {
			return nil, recordErr(kind, i, "measures", err)
		}
		for _, m := range measures {
			metric, err := stringField(m, "metric")
			if err != nil {
				return nil, recordErr(kind, i, "measures.metric", err)
			}
			stat, tracked := stats[metric]
			if !tracked {
				continue
			}
			v, ok, err := numberField(m, "value")
			if err != nil {
				return nil, recordErr(kind, i, "measures."+metric, err)
			}
			if ok {
				stat.Observe(v)
			}
		}
	}

	out := make(map[string]model.MetricStatistic, len(stats))
	for metric, stat := range stats {
		if !stat.Min.Valid {
			a.logger.Debug("no component reports metric", "metric", metric)
		}
		out[metric] = *stat
	}
	return out, nil
}

// projectLanguages keys the languages used by the quality profiles of the
// project. It returns nil when none is used.
func projectLanguages(all []model.Language, project model.Project, profiles []model.QualityProfile) map[string]model.Language {
	used := make(map[string]struct{})
	for _, pm := range project.QualityProfiles {
		used[pm.Language] = struct{}{}
	}
	for _, p := range profiles {
		used[p.Language] = struct{}{}
	}
	var out map[string]model.Language
	for _, l := range all {
		if _, ok := used[l.Key]; !ok {
			continue
		}
		if out == nil {
			out = make(map[string]model.Language)
		}
		out[l.Key] = l
	}
	return out
}
