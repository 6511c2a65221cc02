// Package sqlite persists sync run state in a local SQLite database.
// Run state is written incrementally during a run so that an interrupted
// or stopped run can be resumed as a pure continuation of what it had
// already obtained.
package sqlite
