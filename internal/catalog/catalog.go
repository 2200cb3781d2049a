// Package catalog stores documents, their files and the collection
// hierarchy in SQLite, loaded from JSONL export files.
package catalog

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	opuspdf "github.com/OPUS4/opus4-pdf"
)

// Sentinel errors.
var (
	ErrNotFound      = errors.New("not found in catalog")
	ErrInvalidRecord = errors.New("invalid catalog record")
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 * 1024 * 1024

var _ opuspdf.CollectionLookup = (*Catalog)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY,
		modified INTEGER NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS collections (
		id INTEGER PRIMARY KEY,
		parent_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_collections_parent ON collections(parent_id);

	CREATE TABLE IF NOT EXISTS document_collections (
		doc_id INTEGER NOT NULL,
		collection_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (doc_id, collection_id)
	);

	CREATE INDEX IF NOT EXISTS idx_document_collections_collection ON document_collections(collection_id);

	CREATE TABLE IF NOT EXISTS files (
		doc_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		path_name TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (doc_id, position)
	);
`

// Catalog is a SQLite-backed document store.
type Catalog struct {
	db       *sql.DB
	filesDir string
}

// Open opens or creates the catalog database at path. Relative file paths
// are resolved against filesDir.
func Open(path, filesDir string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return &Catalog{db: db, filesDir: filesDir}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// ImportStats counts the records written by an import.
type ImportStats struct {
	Documents   int `json:"documents"`
	Collections int `json:"collections"`
}

// ImportFile imports the JSONL file at path.
func (c *Catalog) ImportFile(ctx context.Context, path string) (ImportStats, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided import file
	if err != nil {
		return ImportStats{}, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()
	return c.Import(ctx, f)
}

// Import reads JSONL records from r and upserts them in one transaction.
// Nothing is written when any line is invalid.
func (c *Catalog) Import(ctx context.Context, r io.Reader) (stats ImportStats, err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("starting import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return stats, fmt.Errorf("%w: line %d: %v", ErrInvalidRecord, lineNum, err)
		}
		if err := rec.validate(); err != nil {
			return stats, fmt.Errorf("line %d: %w", lineNum, err)
		}

		switch rec.Kind {
		case KindDocument:
			err = putDocument(ctx, tx, rec.Document)
			stats.Documents++
		case KindCollection:
			err = putCollection(ctx, tx, *rec.Collection)
			stats.Collections++
		}
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading import file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("committing import: %w", err)
	}
	return stats, nil
}

func putCollection(ctx context.Context, tx *sql.Tx, col opuspdf.Collection) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO collections (id, parent_id, name) VALUES (?, ?, ?)`,
		col.ID, col.ParentID, col.Name)
	if err != nil {
		return fmt.Errorf("inserting collection %d: %w", col.ID, err)
	}
	return nil
}

func putDocument(ctx context.Context, tx *sql.Tx, rec *DocumentRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding document %d: %w", rec.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, modified, record_json) VALUES (?, ?, ?)`,
		rec.ID, rec.Modified.Unix(), string(data)); err != nil {
		return fmt.Errorf("inserting document %d: %w", rec.ID, err)
	}

	for _, table := range []string{"document_collections", "files"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE doc_id = ?`, rec.ID); err != nil {
			return fmt.Errorf("clearing %s of document %d: %w", table, rec.ID, err)
		}
	}

	for i, id := range rec.Collections {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO document_collections (doc_id, collection_id, position) VALUES (?, ?, ?)`,
			rec.ID, id, i); err != nil {
			return fmt.Errorf("linking document %d to collection %d: %w", rec.ID, id, err)
		}
	}
	for i, f := range rec.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (doc_id, position, path_name, path) VALUES (?, ?, ?, ?)`,
			rec.ID, i, f.Name, f.Path); err != nil {
			return fmt.Errorf("inserting file %q of document %d: %w", f.Name, rec.ID, err)
		}
	}
	return nil
}

// Document loads a document with its collections.
func (c *Catalog) Document(ctx context.Context, id int) (*opuspdf.Document, error) {
	var data string
	err := c.db.QueryRowContext(ctx, `SELECT record_json FROM documents WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %d: %w", id, err)
	}

	var rec DocumentRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding document %d: %w", id, err)
	}
	doc := rec.document()

	rows, err := c.db.QueryContext(ctx, `
		SELECT dc.collection_id, COALESCE(c.parent_id, 0), COALESCE(c.name, '')
		FROM document_collections dc
		LEFT JOIN collections c ON c.id = dc.collection_id
		WHERE dc.doc_id = ?
		ORDER BY dc.position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading collections of document %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var col opuspdf.Collection
		if err := rows.Scan(&col.ID, &col.ParentID, &col.Name); err != nil {
			return nil, fmt.Errorf("scanning collection of document %d: %w", id, err)
		}
		doc.Collections = append(doc.Collections, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Collection implements opuspdf.CollectionLookup.
func (c *Catalog) Collection(ctx context.Context, id int) (opuspdf.Collection, error) {
	col := opuspdf.Collection{ID: id}
	err := c.db.QueryRowContext(ctx, `SELECT parent_id, name FROM collections WHERE id = ?`, id).
		Scan(&col.ParentID, &col.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return opuspdf.Collection{}, fmt.Errorf("%w: %d", opuspdf.ErrCollectionNotFound, id)
	}
	if err != nil {
		return opuspdf.Collection{}, fmt.Errorf("loading collection %d: %w", id, err)
	}
	return col, nil
}

// Files returns the stored files of a document in import order. Paths are
// absolute: relative or empty paths resolve to {filesDir}/{docId}/{path}.
func (c *Catalog) Files(ctx context.Context, docID int) ([]opuspdf.File, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT path_name, path FROM files WHERE doc_id = ? ORDER BY position`, docID)
	if err != nil {
		return nil, fmt.Errorf("loading files of document %d: %w", docID, err)
	}
	defer rows.Close()

	var files []opuspdf.File
	for rows.Next() {
		f := opuspdf.File{ParentID: docID}
		var path string
		if err := rows.Scan(&f.PathName, &path); err != nil {
			return nil, fmt.Errorf("scanning file of document %d: %w", docID, err)
		}
		f.Path = c.resolvePath(docID, f.PathName, path)
		files = append(files, f)
	}
	return files, rows.Err()
}

func (c *Catalog) resolvePath(docID int, name, path string) string {
	if path == "" {
		path = name
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.filesDir, strconv.Itoa(docID), path)
}

// DocumentIDs returns document ids in ascending order. A positive
// collectionID restricts the result to documents in that collection or
// any collection below it.
func (c *Catalog) DocumentIDs(ctx context.Context, collectionID int) ([]int, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if collectionID > 0 {
		rows, err = c.db.QueryContext(ctx, `
			WITH RECURSIVE subtree(id) AS (
				SELECT ?
				UNION
				SELECT c.id FROM collections c JOIN subtree s ON c.parent_id = s.id
			)
			SELECT DISTINCT dc.doc_id
			FROM document_collections dc
			JOIN documents d ON d.id = dc.doc_id
			WHERE dc.collection_id IN (SELECT id FROM subtree)
			ORDER BY dc.doc_id`, collectionID)
	} else {
		rows, err = c.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CollectionTree returns every collection keyed by id.
func (c *Catalog) CollectionTree(ctx context.Context) (opuspdf.CollectionMap, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, parent_id, name FROM collections`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	tree := make(opuspdf.CollectionMap)
	for rows.Next() {
		var col opuspdf.Collection
		if err := rows.Scan(&col.ID, &col.ParentID, &col.Name); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		tree[col.ID] = col
	}
	return tree, rows.Err()
}
