package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cnescatlab/cnesreport/internal/adapter"
)

type issuesDoc struct {
	Issues []map[string]any `json:"issues"`
	Facets []map[string]any `json:"facets"`
}

type profileDoc struct {
	Meta     map[string]any
	Rules    []map[string]any
	Projects []map[string]any
}

// UnmarshalJSON splits the rules and projects out of the profile object so
// the remaining fields form the profile metadata.
func (p *profileDoc) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	p.Rules = objects(m["rules"])
	p.Projects = objects(m["projects"])
	delete(m, "rules")
	delete(m, "projects")
	p.Meta = m
	return nil
}

func (p profileDoc) raw() adapter.RawProfile {
	return adapter.RawProfile{Meta: p.Meta, Rules: p.Rules, Projects: p.Projects}
}

type profilesDoc struct {
	Profiles []profileDoc `json:"profiles"`
}

type measuresDoc struct {
	Component struct {
		Measures []map[string]any `json:"measures"`
	} `json:"component"`
	Measures []map[string]any `json:"measures"`
}

func (d measuresDoc) measures() []map[string]any {
	if len(d.Component.Measures) > 0 {
		return d.Component.Measures
	}
	return d.Measures
}

type componentsDoc struct {
	Components []map[string]any `json:"components"`
}

type languagesDoc struct {
	Languages []map[string]any `json:"languages"`
}

type errorsDoc struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

// authMarkers are fragments of the messages the server returns when the
// token is missing, invalid or lacks permissions.
var authMarkers = []string{
	"authentication",
	"unauthorized",
	"insufficient privileges",
	"not authorized",
	"invalid token",
	"forbidden",
}

func (d errorsDoc) err(name string) error {
	msgs := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		msgs = append(msgs, e.Msg)
	}
	joined := strings.Join(msgs, "; ")
	lower := strings.ToLower(joined)
	for _, marker := range authMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s: %s", ErrUpstreamAuthentication, name, joined)
		}
	}
	return fmt.Errorf("%w: %s: %s", ErrUpstreamRequest, name, joined)
}

func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
