// Package pipeline runs the exporters of a report and bundles their outputs.
//
// An Orchestrator invokes one exporter per requested format, in request
// order. A failing exporter does not stop its siblings: the Result tells
// which formats were produced and which failed. When an archive is
// requested the exporters write into a private working directory that is
// packed into a single zip and removed on every exit path.
//
// A Task covers a whole request for one project: fetch the raw records,
// assemble the report and run the orchestrator. A BatchProcessor runs
// several tasks concurrently, one working directory per task.
package pipeline
