// Package watcher keeps the index in step with files on disk.
//
// Files are indexed with their absolute path as the FileID so that a
// re-index replaces the previous chunks and a removal deletes them.
package watcher
