package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingsScalars(t *testing.T) {
	t.Parallel()

	b := NewBindings(testReport(), DefaultNotAvailable, nil)

	testCases := []struct {
		name     string
		expected string
		bound    bool
	}{
		{name: "project.name", expected: "Projet", bound: true},
		{name: "project.branch", expected: "", bound: true},
		{name: "report.author", expected: "Lequal", bound: true},
		{name: "report.date", expected: "2026-01-02", bound: true},
		{name: "qualitygate.name", expected: "Sonar way", bound: true},
		{name: "metric.coverage", expected: "82.5", bound: true},
		{name: "stat.min.ncloc", expected: "10", bound: true},
		{name: "stat.max.ncloc", expected: "120", bound: true},
		{name: "stat.max.coverage", expected: DefaultNotAvailable, bound: true},
		{name: "stat.min.complexity", expected: DefaultNotAvailable, bound: true},
		{name: "count.issues", expected: "3", bound: true},
		{name: "count.severity.BLOCKER", expected: "1", bound: true},
		{name: "count.severity.CRITICAL", expected: "0", bound: true},
		{name: "count.type.SECURITY_HOTSPOT", expected: "1", bound: true},
		{name: "facet.rules.squid:1234", expected: "2", bound: true},
		{name: "metric.complexity", expected: "", bound: false},
		{name: "nothing", expected: "", bound: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := b.Scalar(tc.name)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.bound, ok)
		})
	}
}

func TestBindingsCustomNotAvailable(t *testing.T) {
	t.Parallel()

	b := NewBindings(testReport(), "-", nil)
	got, ok := b.Scalar("stat.min.coverage")
	assert.True(t, ok)
	assert.Equal(t, "-", got)
}

func TestBindingsCollections(t *testing.T) {
	t.Parallel()

	b := NewBindings(testReport(), DefaultNotAvailable, nil)

	assert.Equal(t, 3, b.Len(CollectionIssues))
	assert.Equal(t, 1, b.Len(CollectionRules))
	assert.Equal(t, 2, b.Len(CollectionMeasures))
	assert.Equal(t, 1, b.Len(CollectionConditions))
	assert.Equal(t, 1, b.Len(CollectionProfiles))
	assert.Equal(t, 0, b.Len("unknown"))

	issues := b.records(CollectionIssues)
	assert.Equal(t, "i2", issues[0]["issue.key"])
	assert.Equal(t, "3", issues[0]["issue.line"])
	assert.Equal(t, "Rule name", issues[0]["issue.rule_name"])
	assert.Equal(t, "", issues[2]["issue.line"])
	assert.Equal(t, "", issues[2]["issue.severity"])
	assert.Equal(t, "SECURITY_HOTSPOT", issues[2]["issue.type"])

	rule := b.records(CollectionRules)[0]
	assert.Equal(t, "Do not do this", rule["rule.description"])
	assert.Equal(t, "2", rule["rule.count"])

	measure := b.records(CollectionMeasures)[1]
	assert.Equal(t, "Coverage", measure["measure.label"])

	profile := b.records(CollectionProfiles)[0]
	assert.Equal(t, "1", profile["profile.rules"])
	assert.Equal(t, "false", profile["profile.default"])
}

func TestBindingsExpand(t *testing.T) {
	t.Parallel()

	b := NewBindings(testReport(), DefaultNotAvailable, nil)

	assert.Equal(t, "projet-", b.Expand("{{ project.key }}-{{missing}}"))
	assert.Equal(t, "no placeholder", b.Expand("no placeholder"))
	assert.Equal(t, "{{ not closed", b.Expand("{{ not closed"))

	issue := b.records(CollectionIssues)[0]
	assert.Equal(t, "i2 / projet", b.expand("{{issue.key}} / {{project.key}}", issue))

	got := b.expandXML([]byte(`<w:t xml:space="preserve">{{issue.message}}</w:t>`), issue)
	assert.Equal(t, `<w:t xml:space="preserve">Fix &lt;this&gt; &amp; that</w:t>`, string(got))

	src := []byte("<w:t>static</w:t>")
	assert.Equal(t, src, b.expandXML(src, nil))
}

func TestCollectionOf(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		text     string
		expected string
		found    bool
	}{
		{text: "{{issue.key}}", expected: CollectionIssues, found: true},
		{text: "{{project.key}} {{rule.name}}", expected: CollectionRules, found: true},
		{text: "{{ measure.value }}", expected: CollectionMeasures, found: true},
		{text: "{{condition.status}}", expected: CollectionConditions, found: true},
		{text: "{{profile.name}}", expected: CollectionProfiles, found: true},
		{text: "{{project.key}}", found: false},
		{text: "{{issue}}", found: false},
		{text: "issue.key", found: false},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			got, ok := CollectionOf(tc.text)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSingleValue(t *testing.T) {
	t.Parallel()

	name, ok := SingleValue("{{ issue.line }}")
	require.True(t, ok)
	assert.Equal(t, "issue.line", name)

	for _, text := range []string{"line {{issue.line}}", "{{issue.line}} ", "{{a}}{{b}}", "plain"} {
		_, ok := SingleValue(text)
		assert.False(t, ok, text)
	}
}
