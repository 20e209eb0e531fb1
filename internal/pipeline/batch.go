package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the answer to one job of a batch.
type BatchResult struct {
	Job     Job
	Outcome *Outcome
	Err     error
}

// BatchProcessor runs the jobs of several projects concurrently.
// Jobs share nothing but the Task: each one must name its own output
// directory or archive path.
type BatchProcessor struct {
	// task answers every job.
	task *Task

	// concurrency is the maximum number of jobs running at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor running jobs with task.
func NewBatchProcessor(task *Task, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		task:        task,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every job and returns one BatchResult per job, in job
// order. A failing job does not stop the others; its error is kept in its
// BatchResult. The returned error is only set when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []Job) ([]BatchResult, error) {
	results := make([]BatchResult, len(jobs))
	err := bp.ProcessBatchWithCallback(ctx, jobs, func(res BatchResult, index int) {
		results[index] = res
	})
	return results, err
}

// ProcessBatchWithCallback runs every job and calls callback as each one
// completes. The callback runs on the goroutine of the job, so it must be
// safe for concurrent use when it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	jobs []Job,
	callback func(res BatchResult, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_projects", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bp.logger.Info("generating report",
				"project", job.ProjectKey,
				"index", i+1,
				"total", len(jobs),
			)

			outcome, err := bp.task.Run(ctx, job)
			if err != nil {
				bp.logger.Warn("report failed", "project", job.ProjectKey, "error", err)
			}
			callback(BatchResult{Job: job, Outcome: outcome, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_projects", len(jobs),
		"elapsed", time.Since(startTime),
	)
	return err
}
