// Package sqlite stores indexed chunks in a single SQLite file using the
// pure Go modernc.org/sqlite driver.
//
// Each chunk is one row: content, a little-endian float32 embedding blob,
// the source kind, and JSON metadata. The embedding length of the first
// insert is recorded in index_meta and enforced from then on. The schema is
// versioned by the migrations subpackage.
//
// The database lives at <data dir>/index.db, ~/.sercha-rag/data by default.
// Scans run as a single SELECT and so see one WAL snapshot; writers are
// serialised in-process and each write runs in its own transaction.
package sqlite
