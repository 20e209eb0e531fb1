package report

import (
	"bytes"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// Collections a row template can repeat over.
const (
	CollectionIssues     = "issue_table"
	CollectionRules      = "rules"
	CollectionMeasures   = "measures"
	CollectionConditions = "conditions"
	CollectionProfiles   = "profiles"
)

// collectionPrefixes maps the field prefix of a placeholder to its collection.
var collectionPrefixes = map[string]string{
	"issue":     CollectionIssues,
	"rule":      CollectionRules,
	"measure":   CollectionMeasures,
	"condition": CollectionConditions,
	"profile":   CollectionProfiles,
}

// DateLayout is the layout of the report.date placeholder.
const DateLayout = "2006-01-02"

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.:\-]+)\s*\}\}`)

type record map[string]string

// Bindings resolves placeholder names against one report.
type Bindings struct {
	scalars      map[string]string
	collections  map[string][]record
	notAvailable string
	logger       *slog.Logger
}

// NewBindings computes every placeholder value of r.
func NewBindings(r *model.Report, notAvailable string, logger *slog.Logger) *Bindings {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bindings{
		scalars:      make(map[string]string),
		collections:  make(map[string][]record),
		notAvailable: notAvailable,
		logger:       logger,
	}
	b.bindScalars(r)
	b.bindCollections(r)
	return b
}

func (b *Bindings) bindScalars(r *model.Report) {
	s := b.scalars
	s["project.key"] = r.Project.Key
	s["project.name"] = r.ProjectName()
	s["project.version"] = r.Project.Version
	s["project.description"] = r.Project.Description
	s["project.branch"] = r.Branch
	s["project.qualitygate"] = r.Project.QualityGateStatus
	s["report.author"] = r.Author
	if !r.Date.IsZero() {
		s["report.date"] = r.Date.Format(DateLayout)
	}
	s["qualitygate.name"] = r.QualityGate.Name
	s["qualitygate.status"] = r.QualityGate.Status

	for _, m := range r.Measures {
		s["metric."+m.Metric] = m.Value
	}
	for metric, stat := range r.MetricStats {
		s["stat.min."+metric] = stat.Min.String(b.notAvailable)
		s["stat.max."+metric] = stat.Max.String(b.notAvailable)
		if !stat.Min.Valid || !stat.Max.Valid {
			b.logger.Warn("metric statistic not available", "metric", metric)
		}
	}

	s["count.issues"] = strconv.Itoa(len(r.Issues))
	bySeverity := r.IssueCountBySeverity()
	for _, sev := range model.Severities() {
		s["count.severity."+sev.String()] = strconv.Itoa(bySeverity[sev])
	}
	byType := r.IssueCountByType()
	for _, t := range model.IssueTypes() {
		s["count.type."+t.String()] = strconv.Itoa(byType[t])
	}
	for _, f := range r.Facets {
		for _, v := range f.Values {
			s["facet."+f.Property+"."+v.Value] = strconv.Itoa(v.Count)
		}
	}
}

func (b *Bindings) bindCollections(r *model.Report) {
	issues := make([]record, 0, len(r.Issues))
	for _, i := range r.Issues {
		line := ""
		if i.HasLine() {
			line = strconv.Itoa(i.Line)
		}
		rule, _ := r.Rule(i.Rule)
		issues = append(issues, record{
			"issue.key":       i.Key,
			"issue.project":   i.Project,
			"issue.component": i.Component,
			"issue.line":      line,
			"issue.message":   i.Message,
			"issue.severity":  i.Severity.String(),
			"issue.status":    i.Status,
			"issue.type":      i.Type.String(),
			"issue.rule":      i.Rule,
			"issue.rule_name": rule.Name,
		})
	}
	b.collections[CollectionIssues] = issues

	ruleCounts, _ := r.Facet("rules")
	rules := r.Rules()
	ruleRecords := make([]record, 0, len(rules))
	for _, rule := range rules {
		ruleRecords = append(ruleRecords, record{
			"rule.key":         rule.Key,
			"rule.name":        rule.Name,
			"rule.description": plainText(rule.HTMLDesc),
			"rule.severity":    rule.Severity.String(),
			"rule.type":        typeName(rule.Type),
			"rule.language":    rule.LanguageName,
			"rule.count":       strconv.Itoa(ruleCounts.Count(rule.Key)),
		})
	}
	b.collections[CollectionRules] = ruleRecords

	measures := make([]record, 0, len(r.Measures))
	for _, m := range r.Measures {
		measures = append(measures, record{
			"measure.key":   m.Metric,
			"measure.label": label(m.Metric),
			"measure.value": m.Value,
		})
	}
	b.collections[CollectionMeasures] = measures

	conditions := make([]record, 0, len(r.QualityGate.Conditions))
	for _, c := range r.QualityGate.Conditions {
		conditions = append(conditions, record{
			"condition.metric":     c.Metric,
			"condition.label":      label(c.Metric),
			"condition.comparator": c.Comparator,
			"condition.threshold":  c.ErrorThreshold,
			"condition.value":      c.ActualValue,
			"condition.status":     c.Status,
		})
	}
	b.collections[CollectionConditions] = conditions

	profiles := make([]record, 0, len(r.QualityProfiles))
	for _, p := range r.QualityProfiles {
		count := p.ActiveRuleCount
		if count == 0 {
			count = len(p.Rules)
		}
		profiles = append(profiles, record{
			"profile.key":      p.Key,
			"profile.name":     p.Name,
			"profile.language": p.Language,
			"profile.rules":    strconv.Itoa(count),
			"profile.default":  strconv.FormatBool(p.IsDefault),
		})
	}
	b.collections[CollectionProfiles] = profiles
}

func typeName(t model.IssueType) string {
	if !t.Valid() {
		return ""
	}
	return t.String()
}

// Scalar resolves a scalar placeholder. Statistics that were not computed
// resolve to the not-available text rather than to nothing.
func (b *Bindings) Scalar(name string) (string, bool) {
	if v, ok := b.scalars[name]; ok {
		return v, true
	}
	if strings.HasPrefix(name, "stat.min.") || strings.HasPrefix(name, "stat.max.") {
		b.logger.Warn("metric statistic not computed", "placeholder", name)
		return b.notAvailable, true
	}
	return "", false
}

// Len returns the number of records of a collection.
func (b *Bindings) Len(collection string) int {
	return len(b.collections[collection])
}

func (b *Bindings) records(collection string) []record {
	return b.collections[collection]
}

// CollectionOf returns the collection of the first collection placeholder in text.
func CollectionOf(text string) (string, bool) {
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		prefix, _, found := strings.Cut(m[1], ".")
		if !found {
			continue
		}
		if c, ok := collectionPrefixes[prefix]; ok {
			return c, true
		}
	}
	return "", false
}

// lookup resolves a name against a record first, then the scalars.
// Unbound names resolve to an empty string.
func (b *Bindings) lookup(name string, rec record) string {
	if v, ok := rec[name]; ok {
		return v
	}
	v, _ := b.Scalar(name)
	return v
}

// Expand replaces every placeholder of text.
func (b *Bindings) Expand(text string) string {
	return b.expand(text, nil)
}

func (b *Bindings) expand(text string, rec record) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		return b.lookup(placeholderPattern.FindStringSubmatch(match)[1], rec)
	})
}

// expandXML replaces every placeholder of an XML fragment, escaping the
// substituted values. Bytes outside the placeholders are copied unchanged.
func (b *Bindings) expandXML(src []byte, rec record) []byte {
	matches := placeholderPattern.FindAllSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src
	}
	var out bytes.Buffer
	out.Grow(len(src))
	last := 0
	for _, m := range matches {
		out.Write(src[last:m[0]])
		escapeXML(&out, b.lookup(string(src[m[2]:m[3]]), rec))
		last = m[1]
	}
	out.Write(src[last:])
	return out.Bytes()
}

// SingleValue reports whether text is exactly one placeholder, and its name.
func SingleValue(text string) (string, bool) {
	loc := placeholderPattern.FindStringSubmatchIndex(text)
	if loc == nil || loc[0] != 0 || loc[1] != len(text) {
		return "", false
	}
	return text[loc[2]:loc[3]], true
}
