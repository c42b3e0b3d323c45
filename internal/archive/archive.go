// Package archive keeps a SQLite record of every translated chapter so
// completed work survives even if the output files are moved or deleted.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one archived chapter translation.
type Record struct {
	Novel      string
	Chapter    int
	SourceLen  int
	OutputLen  int
	OutputPath string
	ArchivedAt time.Time
}

// Store wraps the archive database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the archive database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS novels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chapters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			novel_id INTEGER NOT NULL,
			chapter_number INTEGER NOT NULL,
			source_len INTEGER NOT NULL,
			output_len INTEGER NOT NULL,
			output_path TEXT NOT NULL,
			archived_at TIMESTAMP NOT NULL,
			UNIQUE(novel_id, chapter_number),
			FOREIGN KEY(novel_id) REFERENCES novels(id)
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// RecordChapter stores one finished chapter. Re-recording the same chapter
// replaces the earlier row, so retried chapters keep a single entry.
func (s *Store) RecordChapter(rec Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO novels (name) VALUES (?)`, rec.Novel); err != nil {
		return fmt.Errorf("failed to record novel: %w", err)
	}

	var novelID int64
	if err := tx.QueryRow(`SELECT id FROM novels WHERE name = ?`, rec.Novel).Scan(&novelID); err != nil {
		return fmt.Errorf("failed to look up novel: %w", err)
	}

	archivedAt := rec.ArchivedAt
	if archivedAt.IsZero() {
		archivedAt = time.Now().UTC()
	}

	_, err = tx.Exec(
		`INSERT INTO chapters (novel_id, chapter_number, source_len, output_len, output_path, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(novel_id, chapter_number) DO UPDATE SET
			source_len = excluded.source_len,
			output_len = excluded.output_len,
			output_path = excluded.output_path,
			archived_at = excluded.archived_at`,
		novelID, rec.Chapter, rec.SourceLen, rec.OutputLen, rec.OutputPath, archivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record chapter %d: %w", rec.Chapter, err)
	}
	return tx.Commit()
}

// Chapters returns the archived chapters of a novel ordered by number.
func (s *Store) Chapters(novel string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT c.chapter_number, c.source_len, c.output_len, c.output_path, c.archived_at
		 FROM chapters c JOIN novels n ON c.novel_id = n.id
		 WHERE n.name = ?
		 ORDER BY c.chapter_number`, novel)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec := Record{Novel: novel}
		if err := rows.Scan(&rec.Chapter, &rec.SourceLen, &rec.OutputLen, &rec.OutputPath, &rec.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Count returns the number of archived chapters for a novel.
func (s *Store) Count(novel string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM chapters c JOIN novels n ON c.novel_id = n.id WHERE n.name = ?`,
		novel).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count archived chapters: %w", err)
	}
	return n, nil
}
