// Package lyricsdb is the SQLite-backed lyrics side database: one row per
// track, upserted on save.
package lyricsdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/phreer/music-station/internal/domainerr"
	"github.com/phreer/music-station/internal/lyricformat"
	"github.com/phreer/music-station/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS lyrics (
	track_id   TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	format     TEXT NOT NULL,
	language   TEXT,
	source     TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store wraps a bounded connection pool against lyrics.db.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the lyrics database at path and applies
// the schema idempotently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "open lyrics db", err)
	}
	db.SetMaxOpenConns(5)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, domainerr.Wrap(domainerr.Storage, "migrate lyrics db", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// SaveLyric upserts a track's lyric row, auto-detecting format when the
// caller didn't declare one.
func (s *Store) SaveLyric(ctx context.Context, trackID string, upload model.LyricUpload) (*model.Lyric, error) {
	format := ""
	if upload.Format != nil && *upload.Format != "" {
		format = *upload.Format
	} else {
		format = string(lyricformat.Detect(upload.Content))
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var createdAt string
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM lyrics WHERE track_id = ?`, trackID).Scan(&createdAt)
	if err == sql.ErrNoRows {
		createdAt = now
	} else if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "query existing lyric", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lyrics (track_id, content, format, language, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			content = excluded.content,
			format = excluded.format,
			language = excluded.language,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, trackID, upload.Content, format, upload.Language, upload.Source, createdAt, now)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "save lyric", err)
	}

	return s.GetLyric(ctx, trackID)
}

// GetLyric returns the lyric row for trackID, or a NotFound DomainError.
func (s *Store) GetLyric(ctx context.Context, trackID string) (*model.Lyric, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT track_id, content, format, language, source, created_at, updated_at
		FROM lyrics WHERE track_id = ?
	`, trackID)
	return scanLyric(row)
}

// DeleteLyric removes the lyric row for trackID. Returns NotFound if absent.
func (s *Store) DeleteLyric(ctx context.Context, trackID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lyrics WHERE track_id = ?`, trackID)
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "delete lyric", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "delete lyric", err)
	}
	if n == 0 {
		return domainerr.New(domainerr.NotFound, fmt.Sprintf("no lyric for track %q", trackID))
	}
	return nil
}

// HasLyric reports whether trackID has a stored lyric, without fetching the
// content.
func (s *Store) HasLyric(ctx context.Context, trackID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM lyrics WHERE track_id = ?`, trackID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, domainerr.Wrap(domainerr.Storage, "check lyric existence", err)
	}
	return true, nil
}

// GetTracksWithLyrics returns every track_id that has a stored lyric, used
// at library-scan startup to seed Track.HasLyrics.
func (s *Store) GetTracksWithLyrics(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id FROM lyrics`)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "list tracks with lyrics", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domainerr.Wrap(domainerr.Storage, "scan track id", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// GetStats summarizes the lyrics database's contents by format.
func (s *Store) GetStats(ctx context.Context) (*model.LyricStats, error) {
	stats := &model.LyricStats{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lyrics`).Scan(&stats.TotalLyrics); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "count lyrics", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lyrics WHERE format IN ('lrc', 'lrc_word')`).Scan(&stats.LRCFormatCount); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "count lrc lyrics", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lyrics WHERE format = 'plain'`).Scan(&stats.PlainFormatCount); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "count plain lyrics", err)
	}
	return stats, nil
}

func scanLyric(row *sql.Row) (*model.Lyric, error) {
	var l model.Lyric
	var language, source sql.NullString
	err := row.Scan(&l.TrackID, &l.Content, &l.Format, &language, &source, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domainerr.New(domainerr.NotFound, "lyric not found")
	}
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "scan lyric row", err)
	}
	if language.Valid {
		l.Language = &language.String
	}
	if source.Valid {
		l.Source = &source.String
	}
	return &l, nil
}
