package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// dimensionsKey is the index_meta key holding the embedding length.
const dimensionsKey = "dimensions"

// Store is a SQLite-based document store.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises writers so dimension checks and inserts are atomic.
	writeMu sync.Mutex
	dims    atomic.Int64
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-rag/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-rag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode so readers never block on the writer
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.loadDimensions(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// migrate applies every migration newer than the recorded schema version.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := migrations.After(current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := s.applyMigration(m.Version, m.Script); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Name, err)
		}
		logger.Debug("Applied migration %s", m.Name)
	}
	return nil
}

// applyMigration runs one migration and records its version atomically.
func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// loadDimensions reads the persisted embedding length into memory.
func (s *Store) loadDimensions() error {
	var value string
	err := s.db.QueryRow("SELECT value FROM index_meta WHERE key = ?", dimensionsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading dimensions: %w", err)
	}

	dims, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parsing dimensions %q: %w", value, err)
	}
	s.dims.Store(int64(dims))
	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const selectDocument = `
	SELECT id, content, embedding, source, metadata, created_at, last_accessed_at
	FROM documents`

// Insert appends a document.
func (s *documentStore) Insert(ctx context.Context, doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if len(doc.Embedding) == 0 {
		return fmt.Errorf("%w: document %s has no embedding", domain.ErrInvalidInput, doc.ID)
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()

	dims := int(s.store.dims.Load())
	if dims != 0 && len(doc.Embedding) != dims {
		return fmt.Errorf("%w: got %d, store uses %d", domain.ErrDimensionMismatch, len(doc.Embedding), dims)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE id = ?", doc.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, content, embedding, source, metadata, created_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Content, float32SliceToBytes(doc.Embedding), string(doc.Source),
		string(metadataJSON), toNanos(doc.CreatedAt), toNanos(doc.LastAccessedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if dims == 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO index_meta (key, value) VALUES (?, ?)",
			dimensionsKey, strconv.Itoa(len(doc.Embedding)))
		if err != nil {
			return fmt.Errorf("saving dimensions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if dims == 0 {
		s.store.dims.Store(int64(len(doc.Embedding)))
	}
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, selectDocument+" WHERE id = ?", id)

	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteByID removes a document.
func (s *documentStore) DeleteByID(ctx context.Context, id string) error {
	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()

	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByFilter removes every document matching the filter.
func (s *documentStore) DeleteByFilter(ctx context.Context, filter domain.Filter) (int, error) {
	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	docs, err := queryDocuments(ctx, tx, filter)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM documents WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		if _, err := stmt.ExecContext(ctx, docs[i].ID); err != nil {
			return 0, fmt.Errorf("deleting document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(docs), nil
}

// Scan returns the documents matching the filter.
func (s *documentStore) Scan(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	return queryDocuments(ctx, s.store.db, filter)
}

// Touch records an access time for the given documents.
// It never waits for a writer: while one holds the store the update is
// skipped.
func (s *documentStore) Touch(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	if !s.store.writeMu.TryLock() {
		logger.Debug("Skipped access-time update for %d documents: store busy", len(ids))
		return nil
	}
	defer s.store.writeMu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, toNanos(at))
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET last_accessed_at = ? WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("touching documents: %w", err)
	}
	return nil
}

// Dimensions returns the established embedding length.
func (s *documentStore) Dimensions() int {
	return int(s.store.dims.Load())
}

// Close closes the underlying store.
func (s *documentStore) Close() error {
	return s.store.Close()
}

// ==================== Helper Functions ====================

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryDocuments runs a single SELECT, so the result reflects one snapshot.
// Sources are filtered in SQL; metadata keys are matched after decoding.
func queryDocuments(ctx context.Context, q queryer, filter domain.Filter) ([]domain.Document, error) {
	query := selectDocument
	var args []any
	if len(filter.Sources) > 0 {
		query += " WHERE source IN (" + strings.TrimSuffix(strings.Repeat("?,", len(filter.Sources)), ",") + ")"
		for _, src := range filter.Sources {
			args = append(args, string(src))
		}
	}
	query += " ORDER BY seq"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		if filter.Matches(doc) {
			docs = append(docs, *doc)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// scanDocument decodes one row using the given Scan function.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var embeddingBlob []byte
	var source, metadataJSON string
	var createdAt, lastAccessedAt int64

	if err := scan(&doc.ID, &doc.Content, &embeddingBlob, &source, &metadataJSON,
		&createdAt, &lastAccessedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Embedding = bytesToFloat32Slice(embeddingBlob)
	doc.Source = domain.SourceKind(source)
	doc.CreatedAt = fromNanos(createdAt)
	doc.LastAccessedAt = fromNanos(lastAccessedAt)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// toNanos stores the zero time as 0.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
