package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cnescatlab/cnesreport/internal/adapter"
	"github.com/cnescatlab/cnesreport/internal/model"
	"github.com/cnescatlab/cnesreport/internal/report"
	"github.com/cnescatlab/cnesreport/internal/source"
)

// Job is one report request.
type Job struct {
	ProjectKey string
	// Branch may be model.NoBranch for the main branch.
	Branch string
	Author string
	// Date defaults to the time the job runs.
	Date time.Time

	// FilenamePattern names the outputs when Request.Filename is empty.
	FilenamePattern string

	Request Request
}

// Outcome is the answer to a Job. Exactly one of Result and ErrorPayload
// is set.
type Outcome struct {
	Result *Result
	Report *model.Report

	// ErrorPayload is the JSON document {"error": "..."} returned to the
	// caller when the server refused the credentials.
	ErrorPayload []byte
}

// Task fetches, assembles and exports the report of a Job.
type Task struct {
	source       source.Source
	adapter      *adapter.Adapter
	orchestrator *Orchestrator
	logger       *slog.Logger
	now          func() time.Time
}

// TaskOption configures a Task.
type TaskOption func(*Task)

// WithTaskLogger sets the logger of the task.
func WithTaskLogger(logger *slog.Logger) TaskOption {
	return func(t *Task) {
		t.logger = logger
	}
}

// WithAdapter replaces the default adapter.
func WithAdapter(a *adapter.Adapter) TaskOption {
	return func(t *Task) {
		t.adapter = a
	}
}

// WithOrchestrator replaces the default orchestrator.
func WithOrchestrator(o *Orchestrator) TaskOption {
	return func(t *Task) {
		t.orchestrator = o
	}
}

// NewTask creates a Task reading from src.
func NewTask(src source.Source, opts ...TaskOption) *Task {
	t := &Task{source: src, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.adapter == nil {
		t.adapter = adapter.New(adapter.WithLogger(t.logger))
	}
	if t.orchestrator == nil {
		t.orchestrator = New(WithLogger(t.logger))
	}
	return t
}

// Run answers job. An authentication failure of the source produces an
// Outcome carrying an error payload and no output at all. Any other fetch
// or assembly error aborts the run.
func (t *Task) Run(ctx context.Context, job Job) (*Outcome, error) {
	branch := model.BranchName(job.Branch)

	in, err := t.source.Fetch(ctx, job.ProjectKey, branch)
	if errors.Is(err, source.ErrUpstreamAuthentication) {
		t.logger.Error("server refused the credentials", "project", job.ProjectKey, "error", err)
		payload, perr := ErrorPayload(err)
		if perr != nil {
			return nil, perr
		}
		return &Outcome{ErrorPayload: payload}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", job.ProjectKey, err)
	}

	in.Branch = branch
	if job.Author != "" {
		in.Author = job.Author
	}
	in.Date = job.Date
	if in.Date.IsZero() {
		in.Date = t.now()
	}

	r, err := t.adapter.Assemble(*in)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", job.ProjectKey, err)
	}

	req := job.Request
	if req.Filename == "" {
		req.Filename, err = report.FormatFilename(job.FilenamePattern, report.Tokens{
			Date:    r.Date,
			Project: r.Project.Key,
			Branch:  r.Branch,
			Author:  r.Author,
		})
		if err != nil {
			return nil, err
		}
	}

	result, err := t.orchestrator.Run(ctx, r, req)
	return &Outcome{Result: result, Report: r}, err
}

// ErrorPayload encodes err as {"error": "<message>"}.
func ErrorPayload(err error) ([]byte, error) {
	return json.Marshal(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}
