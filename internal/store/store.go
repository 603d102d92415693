// Package store persists embedded code chunks in SQLite and serves
// similarity searches through the sqlite-vec extension.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// ErrDimensionMismatch is returned when CreateCollection is asked for a
// dimension that conflicts with the existing collection. This is a
// configuration error, not a retry case.
var ErrDimensionMismatch = errors.New("collection dimension mismatch")

// Store is the vector index collaborator contract.
type Store interface {
	// CreateCollection creates the vector collection with the given
	// dimension. It is a no-op if the collection already exists with the
	// same dimension and fails with ErrDimensionMismatch otherwise.
	CreateCollection(dim int) error
	// InsertBatch inserts records atomically and returns their freshly
	// generated identifiers, in input order.
	InsertBatch(records []Record) ([]string, error)
	// Search returns up to opts.Limit records nearest to the query vector,
	// in descending similarity order, all scoring at least
	// opts.ScoreThreshold. An empty result is not an error.
	Search(queryVector []float32, opts SearchOptions) ([]SearchResult, error)
	// Info reports the collection name, record count, and status.
	Info() (CollectionInfo, error)
	// DeleteAll removes every record, keeping the collection itself.
	DeleteAll() error
	// Close closes the underlying database.
	Close() error
}

// filterColumns whitelists the metadata fields accepted in search filters.
var filterColumns = map[string]string{
	"file_path":      "c.file_path",
	"chunk_type":     "c.chunk_type",
	"name":           "c.name",
	"parent_context": "c.parent_context",
}

// SQLiteStore implements Store backed by SQLite + sqlite-vec.
type SQLiteStore struct {
	db         *sql.DB
	collection string
}

// Open creates or opens a SQLite database at the given path. Pass
// ":memory:" for an ephemeral store.
func Open(dbPath, collection string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, collection: collection}, nil
}

func (s *SQLiteStore) CreateCollection(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dim)
	}
	existing, err := s.getMeta("vector_dimension")
	if err != nil {
		return fmt.Errorf("read collection dimension: %w", err)
	}
	if existing != "" {
		have, err := strconv.Atoi(existing)
		if err != nil {
			return fmt.Errorf("corrupt collection dimension %q: %w", existing, err)
		}
		if have != dim {
			return fmt.Errorf("collection %q has dimension %d, embedder wants %d: %w",
				s.collection, have, dim, ErrDimensionMismatch)
		}
		return nil
	}

	if err := createVecTable(s.db, dim); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	if err := s.setMeta("vector_dimension", strconv.Itoa(dim)); err != nil {
		return fmt.Errorf("record collection dimension: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertBatch(records []Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	chunkStmt, err := tx.Prepare(`
		INSERT INTO chunks (uid, file_path, chunk_type, name, start_line, end_line, parent_context, size, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer chunkStmt.Close()

	vecStmt, err := tx.Prepare("INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return nil, err
	}
	defer vecStmt.Close()

	ids := make([]string, 0, len(records))
	for _, r := range records {
		uid := uuid.NewString()
		m := r.Meta
		res, err := chunkStmt.Exec(uid, m.FilePath, m.ChunkType, m.Name, m.StartLine, m.EndLine, m.ParentContext, m.Size, m.Content)
		if err != nil {
			return nil, fmt.Errorf("insert chunk %s: %w", m.Name, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}

		blob, err := sqlite_vec.SerializeFloat32(r.Vector)
		if err != nil {
			return nil, fmt.Errorf("serialize embedding for %s: %w", uid, err)
		}
		if _, err := vecStmt.Exec(rowID, blob); err != nil {
			return nil, fmt.Errorf("insert embedding for %s: %w", uid, err)
		}
		ids = append(ids, uid)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SQLiteStore) Search(queryVector []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.Limit <= 0 {
		return nil, nil
	}
	blob, err := sqlite_vec.SerializeFloat32(queryVector)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	// KNN first, metadata conditions after. When a filter is present the
	// KNN pass fetches a wider candidate set so the filter does not starve
	// the result below the requested limit.
	knnLimit := opts.Limit
	if len(opts.Filter) > 0 {
		knnLimit = opts.Limit * 16
	}

	var (
		conds []string
		args  []any
	)
	args = append(args, blob, knnLimit)
	for field, value := range opts.Filter {
		col, ok := filterColumns[field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", field)
		}
		conds = append(conds, col+" = ?")
		args = append(args, value)
	}
	conds = append(conds, "(1.0 - v.distance) >= ?")
	args = append(args, opts.ScoreThreshold, opts.Limit)

	query := fmt.Sprintf(`
		SELECT c.uid, (1.0 - v.distance) AS score,
		       c.file_path, c.chunk_type, c.name, c.start_line, c.end_line,
		       c.parent_context, c.size, c.content
		FROM (
			SELECT chunk_id, distance FROM vec_chunks
			WHERE embedding MATCH ?
			ORDER BY distance LIMIT ?
		) v
		JOIN chunks c ON c.id = v.chunk_id
		WHERE %s
		ORDER BY v.distance
		LIMIT ?
	`, strings.Join(conds, " AND "))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		err := rows.Scan(
			&r.ID, &r.Score,
			&r.Meta.FilePath, &r.Meta.ChunkType, &r.Meta.Name,
			&r.Meta.StartLine, &r.Meta.EndLine,
			&r.Meta.ParentContext, &r.Meta.Size, &r.Meta.Content,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) Info() (CollectionInfo, error) {
	info := CollectionInfo{Name: s.collection, Status: "ready"}

	dim, err := s.getMeta("vector_dimension")
	if err != nil {
		return info, err
	}
	if dim == "" {
		info.Status = "uninitialized"
		return info, nil
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&info.RecordCount); err != nil {
		return info, err
	}
	return info, nil
}

func (s *SQLiteStore) DeleteAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vec_chunks"); err != nil {
		// The vector table only exists once the collection is created.
		if !strings.Contains(err.Error(), "no such table") {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) getMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) setMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
