// Package sqlite provides a SQLite-backed implementation of
// driven.MaterialStore. Embeddings are stored as little-endian
// float32 BLOBs; keywords as JSON arrays.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/doccloud/retrieval/internal/adapters/driven/materials/sqlite/migrations"
	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
)

// Ensure MaterialStore implements the interface.
var _ driven.MaterialStore = (*MaterialStore)(nil)

// MaterialStore is a SQLite-based material catalog.
type MaterialStore struct {
	db   *sql.DB
	path string

	mu       sync.RWMutex
	watchers []func(courseID string)
}

// NewMaterialStore opens (or creates) the materials database in dataDir.
// If dataDir is empty, defaults to ~/.retrieval/data/materials.db.
func NewMaterialStore(dataDir string) (*MaterialStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".retrieval", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "materials.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &MaterialStore{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *MaterialStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *MaterialStore) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *MaterialStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveMaterial stores or updates a material and notifies watchers.
func (s *MaterialStore) SaveMaterial(ctx context.Context, m *domain.CourseMaterial) error {
	keywordsJSON, err := json.Marshal(m.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO materials (id, course_id, source_type, title, excerpt, keywords, embedding, url, reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(course_id, id) DO UPDATE SET
			source_type = excluded.source_type,
			title = excluded.title,
			excerpt = excluded.excerpt,
			keywords = excluded.keywords,
			embedding = excluded.embedding,
			url = excluded.url,
			reference = excluded.reference,
			updated_at = excluded.updated_at
	`, m.ID, m.CourseID, string(m.SourceType), m.Title, m.Excerpt, string(keywordsJSON),
		float32SliceToBytes(m.Embedding), m.URL, m.Reference, now, now)

	if err != nil {
		return fmt.Errorf("%w: saving material: %w", domain.ErrStoreUnavailable, err)
	}

	s.notify(m.CourseID)
	return nil
}

// DeleteMaterial removes a material and notifies watchers.
func (s *MaterialStore) DeleteMaterial(ctx context.Context, courseID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM materials WHERE course_id = ? AND id = ?", courseID, id)
	if err != nil {
		return fmt.Errorf("%w: deleting material: %w", domain.ErrStoreUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	s.notify(courseID)
	return nil
}

// ListMaterials returns all materials for a course ordered by ID.
func (s *MaterialStore) ListMaterials(ctx context.Context, courseID string) ([]domain.CourseMaterial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course_id, source_type, title, excerpt, keywords, embedding, url, reference
		FROM materials WHERE course_id = ? ORDER BY id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying materials: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var materials []domain.CourseMaterial
	for rows.Next() {
		var m domain.CourseMaterial
		var sourceType, keywordsJSON string
		var embeddingBlob []byte
		if err := rows.Scan(&m.ID, &m.CourseID, &sourceType, &m.Title, &m.Excerpt,
			&keywordsJSON, &embeddingBlob, &m.URL, &m.Reference); err != nil {
			return nil, fmt.Errorf("%w: scanning material: %w", domain.ErrStoreUnavailable, err)
		}
		m.SourceType = domain.SourceType(sourceType)
		if err := json.Unmarshal([]byte(keywordsJSON), &m.Keywords); err != nil {
			return nil, fmt.Errorf("%w: unmarshaling keywords: %w", domain.ErrStoreUnavailable, err)
		}
		m.Embedding = bytesToFloat32Slice(embeddingBlob)
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating materials: %w", domain.ErrStoreUnavailable, err)
	}

	if materials == nil {
		return nil, domain.ErrCourseNotFound
	}
	return materials, nil
}

// ListCourses returns distinct course IDs present in the catalog.
func (s *MaterialStore) ListCourses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT course_id FROM materials ORDER BY course_id")
	if err != nil {
		return nil, fmt.Errorf("%w: querying courses: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning course: %w", domain.ErrStoreUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating courses: %w", domain.ErrStoreUnavailable, err)
	}
	return ids, nil
}

// Watch registers a callback invoked when a course's materials change
// through this store.
func (s *MaterialStore) Watch(fn func(courseID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *MaterialStore) notify(courseID string) {
	s.mu.RLock()
	watchers := append([]func(string){}, s.watchers...)
	s.mu.RUnlock()
	for _, fn := range watchers {
		fn(courseID)
	}
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
