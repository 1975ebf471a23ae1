// Package store persists converted email records to a SQLite database.
package store

import (
	"database/sql"
	"embed"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
)

//go:embed schema.sql
var schemaFS embed.FS

const defaultSQLiteParams = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

// bulkLoadPragmas tunes the connection for a single-writer bulk load:
// a 64 MiB page cache and in-memory temp tables.
const bulkLoadPragmas = `PRAGMA cache_size=-64000; PRAGMA temp_store=MEMORY;`

// Email is one row of the emails table. DateParsed is invalid when the raw
// date could not be normalized; the column is then NULL.
type Email struct {
	From        string
	To          string
	Cc          string
	Bcc         string
	Subject     string
	Date        string
	DateParsed  sql.NullString
	MessageID   string
	InReplyTo   string
	References  string
	ContentType string
	BodyPlain   string
	BodyHTML    string
}

// Store provides database operations for mbox2db.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the database at the given path, creating the parent
// directory if needed.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, eris.Wrapf(err, "create db directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+defaultSQLiteParams)
	if err != nil {
		return nil, eris.Wrapf(err, "open database %s", dbPath)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrapf(err, "ping database %s", dbPath)
	}
	if _, err := db.Exec(bulkLoadPragmas); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "set pragmas")
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InitSchema creates the emails table and its indexes if they don't exist.
func (s *Store) InitSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return eris.Wrap(err, "read embedded schema")
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return eris.Wrap(err, "init schema")
	}
	return nil
}

const insertEmailSQL = `INSERT INTO emails
	(from_addr, to_addr, cc, bcc, subject, date, date_parsed,
	 message_id, in_reply_to, refs, content_type, body_plain, body_html)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Batch accumulates inserts inside a single transaction so a whole
// conversion run commits (or rolls back) as one unit.
type Batch struct {
	tx   *sql.Tx
	stmt *sql.Stmt
}

// BeginBatch starts a batch insert transaction.
func (s *Store) BeginBatch() (*Batch, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, eris.Wrap(err, "begin batch")
	}
	stmt, err := tx.Prepare(insertEmailSQL)
	if err != nil {
		_ = tx.Rollback()
		return nil, eris.Wrap(err, "prepare insert")
	}
	return &Batch{tx: tx, stmt: stmt}, nil
}

// Insert adds one email row to the batch.
func (b *Batch) Insert(e *Email) error {
	_, err := b.stmt.Exec(
		e.From, e.To, e.Cc, e.Bcc, e.Subject, e.Date, e.DateParsed,
		e.MessageID, e.InReplyTo, e.References, e.ContentType,
		e.BodyPlain, e.BodyHTML,
	)
	if err != nil {
		return eris.Wrap(err, "insert email")
	}
	return nil
}

// Commit finalizes the batch.
func (b *Batch) Commit() error {
	_ = b.stmt.Close()
	return b.tx.Commit()
}

// Rollback abandons the batch. Safe to call after Commit; the error is
// discarded then.
func (b *Batch) Rollback() {
	_ = b.stmt.Close()
	_ = b.tx.Rollback()
}

// CountEmails returns the number of rows in the emails table.
func (s *Store) CountEmails() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM emails`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "count emails")
	}
	return n, nil
}
