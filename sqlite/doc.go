// Package sqlite provides a file-backed exclusion.KV on modernc.org/sqlite,
// for running the feed with deletions that survive a process restart.
package sqlite
