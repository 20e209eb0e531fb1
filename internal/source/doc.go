// Package source provides the raw records of a project to the adapter.
//
// The report generator never talks to the analysis server itself: the
// records are read from a directory holding the JSON documents returned by
// the SonarQube web API (one file per endpoint). DirSource loads the files
// concurrently and maps server error documents onto sentinel errors so the
// caller can tell an authentication failure from any other upstream error.
package source
