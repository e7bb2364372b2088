// Package statsdb is the SQLite-backed play-count side database.
package statsdb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/phreer/music-station/internal/domainerr"
	"github.com/phreer/music-station/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS track_stats (
	track_id       TEXT PRIMARY KEY,
	play_count     INTEGER NOT NULL DEFAULT 0,
	last_played_at TEXT
);
`

// Store wraps a bounded connection pool against stats.db.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the stats database at path and applies
// the schema idempotently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "open stats db", err)
	}
	db.SetMaxOpenConns(5)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, domainerr.Wrap(domainerr.Storage, "migrate stats db", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// IncrementPlayCount upserts track_stats for trackID, starting the counter
// at 1 on first insert, and returns the new count. The increment and
// read-back happen inside one transaction so two concurrent plays each see
// their own new value.
func (s *Store) IncrementPlayCount(ctx context.Context, trackID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domainerr.Wrap(domainerr.Storage, "begin increment play count", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO track_stats (track_id, play_count, last_played_at) VALUES (?, 1, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			play_count = play_count + 1,
			last_played_at = excluded.last_played_at
	`, trackID, now)
	if err != nil {
		return 0, domainerr.Wrap(domainerr.Storage, "increment play count", err)
	}

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT play_count FROM track_stats WHERE track_id = ?`, trackID).Scan(&count); err != nil {
		return 0, domainerr.Wrap(domainerr.Storage, "read back play count", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, domainerr.Wrap(domainerr.Storage, "commit increment play count", err)
	}
	return count, nil
}

// GetStat returns the stats row for trackID, or a zero-value stat (never an
// error) if the track has never been played.
func (s *Store) GetStat(ctx context.Context, trackID string) (*model.TrackStat, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT track_id, play_count, last_played_at FROM track_stats WHERE track_id = ?
	`, trackID)
	var stat model.TrackStat
	var lastPlayed sql.NullString
	err := row.Scan(&stat.TrackID, &stat.PlayCount, &lastPlayed)
	if err == sql.ErrNoRows {
		return &model.TrackStat{TrackID: trackID, PlayCount: 0}, nil
	}
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "scan track stat", err)
	}
	if lastPlayed.Valid {
		stat.LastPlayedAt = &lastPlayed.String
	}
	return &stat, nil
}

// GetAllStats returns every stats row keyed by track_id, used by the
// library's GET /stats aggregate and startup reconciliation.
func (s *Store) GetAllStats(ctx context.Context) (map[string]*model.TrackStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id, play_count, last_played_at FROM track_stats`)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "list track stats", err)
	}
	defer rows.Close()

	out := make(map[string]*model.TrackStat)
	for rows.Next() {
		var stat model.TrackStat
		var lastPlayed sql.NullString
		if err := rows.Scan(&stat.TrackID, &stat.PlayCount, &lastPlayed); err != nil {
			return nil, domainerr.Wrap(domainerr.Storage, "scan track stat", err)
		}
		if lastPlayed.Valid {
			stat.LastPlayedAt = &lastPlayed.String
		}
		out[stat.TrackID] = &stat
	}
	return out, rows.Err()
}
