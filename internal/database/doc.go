// Package database keeps the history of export runs in a SQLite file.
//
// Each run records the project and branch it covered, the formats that
// were produced or failed, and the archive with its digest, so a later
// invocation can list what was generated and when. The database uses the
// CGO-free modernc.org/sqlite driver in WAL mode.
package database
