// Package store met en cache les textes transcrits par fenêtre dans une base SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickprogramme/clipscribe/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrMiss : aucune entrée pour la clé demandée.
var ErrMiss = errors.New("store: cache miss")

// Key identifie un texte transcrit : source, langue et fenêtre (en ms).
type Key struct {
	SourceID string
	Lang     string
	StartMs  int64
	EndMs    int64
}

// KeyFor construit la clé d'une fenêtre.
func KeyFor(sourceID, lang string, w model.Window) Key {
	return Key{SourceID: sourceID, Lang: lang, StartMs: w.Start.Milliseconds(), EndMs: w.End.Milliseconds()}
}

// Cache est l'accès au cache utilisé par transcribe.CachedTranscriber.
type Cache interface {
	Get(ctx context.Context, k Key) (string, error)
	Put(ctx context.Context, k Key, text string) error
}

// Store est un cache SQLite. Sûr pour un usage concurrent (une seule connexion).
type Store struct {
	db *sql.DB
}

// Open ouvre (ou crée) la base au chemin donné. ":memory:" est accepté.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: un seul écrivain
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS transcripts (
		source_id  TEXT    NOT NULL,
		lang       TEXT    NOT NULL DEFAULT '',
		start_ms   INTEGER NOT NULL,
		end_ms     INTEGER NOT NULL,
		text       TEXT    NOT NULL,
		created_at TEXT    NOT NULL,
		PRIMARY KEY (source_id, lang, start_ms, end_ms)
	)`)
	return err
}

// Get retourne le texte en cache, ou ErrMiss.
func (s *Store) Get(ctx context.Context, k Key) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT text FROM transcripts WHERE source_id = ? AND lang = ? AND start_ms = ? AND end_ms = ?`,
		k.SourceID, k.Lang, k.StartMs, k.EndMs,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("store: get: %w", err)
	}
	return text, nil
}

// Put insère ou remplace le texte d'une clé.
func (s *Store) Put(ctx context.Context, k Key, text string) error {
	if k.SourceID == "" {
		return errors.New("store: put: source_id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (source_id, lang, start_ms, end_ms, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source_id, lang, start_ms, end_ms) DO UPDATE SET text = excluded.text, created_at = excluded.created_at`,
		k.SourceID, k.Lang, k.StartMs, k.EndMs, text, now,
	)
	if err != nil {
		return fmt.Errorf("store: put: %w", err)
	}
	return nil
}

// Count retourne le nombre d'entrées d'une source.
func (s *Store) Count(ctx context.Context, sourceID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transcripts WHERE source_id = ?`, sourceID).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Purge supprime toutes les entrées d'une source.
func (s *Store) Purge(ctx context.Context, sourceID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE source_id = ?`, sourceID); err != nil {
		return fmt.Errorf("store: purge: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
