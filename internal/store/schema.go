package store

import (
	"database/sql"
	"fmt"
)

const ddl = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS chunks (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    uid            TEXT NOT NULL UNIQUE,
    file_path      TEXT NOT NULL,
    chunk_type     TEXT NOT NULL,
    name           TEXT NOT NULL DEFAULT '',
    start_line     INTEGER NOT NULL,
    end_line       INTEGER NOT NULL,
    parent_context TEXT NOT NULL DEFAULT '',
    size           INTEGER NOT NULL,
    content        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// vecDDL is instantiated with the collection's vector dimension when the
// collection is created. Cosine distance keeps similarity = 1 - distance
// in [0,1] for normalized embeddings.
const vecDDL = `
CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);
`

// initSchema creates the base tables. The vector table is created later by
// CreateCollection, once the embedding dimension is known.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}

func createVecTable(db *sql.DB, dim int) error {
	_, err := db.Exec(fmt.Sprintf(vecDDL, dim))
	return err
}
