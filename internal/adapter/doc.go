// Package adapter turns the loosely typed records returned by the SonarQube
// web API into a model.Report.
//
// Assembly is all or nothing: the first record that cannot be coerced aborts
// the run with an error wrapping ErrInvalidDataKind, and no partial report
// is returned. Issues are deduplicated on their observable fields and
// sorted with model.CompareIssues; min/max statistics are computed for the
// configured metrics in one scan over the component measures.
package adapter
