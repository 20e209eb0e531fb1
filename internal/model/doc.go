// Package model defines the report entities shared by the adapter, the
// exporters and the pipeline.
//
// This package contains the following main types:
//   - Issue and RawIssue: normalized and passthrough analysis findings
//   - Rule, QualityProfile, ProfileMetaData: rule catalog data
//   - Project, QualityGate, Measure, MetricStatistic: project-level facts
//   - Report: the aggregate handed to every exporter
//
// Enumerations are closed: a value outside the known set never reaches a
// Report, the adapter rejects it first.
//
// A Report is never modified after assembly. Exporters read it concurrently
// and must not write through the slices and maps it exposes.
package model
