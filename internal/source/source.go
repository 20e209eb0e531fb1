package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cnescatlab/cnesreport/internal/adapter"
)

// Source provides the raw records of one project.
type Source interface {
	Fetch(ctx context.Context, projectKey, branch string) (*adapter.Input, error)
}

// Dump file names, one per web API endpoint.
const (
	ProjectFile     = "project.json"
	IssuesFile      = "issues.json"
	FacetsFile      = "facets.json"
	ProfilesFile    = "profiles.json"
	MeasuresFile    = "measures.json"
	ComponentsFile  = "components.json"
	QualityGateFile = "qualitygate.json"
	LanguagesFile   = "languages.json"
)

// DirSource reads API dumps from a directory. When the directory holds a
// sub-directory named after the project key (and, if set, a nested one
// named after the branch) that sub-directory is used instead.
type DirSource struct {
	root   string
	logger *slog.Logger
}

// Option configures a DirSource.
type Option func(*DirSource)

// WithLogger sets the logger of the source.
func WithLogger(logger *slog.Logger) Option {
	return func(s *DirSource) {
		s.logger = logger
	}
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string, opts ...Option) *DirSource {
	s := &DirSource{root: dir}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Fetch loads every dump of the project concurrently.
func (s *DirSource) Fetch(ctx context.Context, projectKey, branch string) (*adapter.Input, error) {
	dir := s.projectDir(projectKey, branch)
	s.logger.Debug("loading api dumps", "dir", dir, "project", projectKey, "branch", branch)

	var (
		project     map[string]any
		issues      issuesDoc
		facets      issuesDoc
		profiles    profilesDoc
		measures    measuresDoc
		components  componentsDoc
		qualityGate map[string]any
		languages   languagesDoc
	)

	g, ctx := errgroup.WithContext(ctx)
	load := func(name string, required bool, dst any) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.load(dir, name, required, dst)
		})
	}
	load(ProjectFile, true, &project)
	load(IssuesFile, true, &issues)
	load(FacetsFile, false, &facets)
	load(ProfilesFile, false, &profiles)
	load(MeasuresFile, false, &measures)
	load(ComponentsFile, false, &components)
	load(QualityGateFile, false, &qualityGate)
	load(LanguagesFile, false, &languages)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if nested, ok := project["component"].(map[string]any); ok {
		project = nested
	}
	if key, _ := project["key"].(string); projectKey != "" && key != projectKey {
		return nil, fmt.Errorf("%w: dump is for project %q, not %q", ErrUpstreamRequest, key, projectKey)
	}

	in := &adapter.Input{
		Project:     project,
		Issues:      issues.Issues,
		Facets:      append(issues.Facets, facets.Facets...),
		Measures:    measures.measures(),
		Components:  components.Components,
		QualityGate: qualityGate,
		Languages:   languages.Languages,
		Branch:      branch,
	}
	for _, p := range profiles.Profiles {
		in.Profiles = append(in.Profiles, p.raw())
	}
	return in, nil
}

func (s *DirSource) projectDir(projectKey, branch string) string {
	dir := s.root
	if projectKey == "" {
		return dir
	}
	if candidate := filepath.Join(dir, safeName(projectKey)); isDir(candidate) {
		dir = candidate
	}
	if branch != "" {
		if candidate := filepath.Join(dir, safeName(branch)); isDir(candidate) {
			dir = candidate
		}
	}
	return dir
}

func (s *DirSource) load(dir, name string, required bool, dst any) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		if required {
			return fmt.Errorf("%w: %s", ErrMissingDump, path)
		}
		s.logger.Debug("optional api dump absent", "file", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var envelope errorsDoc
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Errors) > 0 {
		return envelope.err(name)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDump, path, err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// safeName keeps a project key or branch name from escaping the dump root.
func safeName(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(s)
}
