// Package playlistdb is the SQLite-backed playlist side database: ordered
// track membership maintained via delete-then-renumber transactions so a
// concurrent reader never observes a partially numbered list.
package playlistdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/phreer/music-station/internal/domainerr"
	"github.com/phreer/music-station/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS playlists (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS playlist_tracks (
	playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
	track_id    TEXT NOT NULL,
	position    INTEGER NOT NULL,
	PRIMARY KEY (playlist_id, track_id)
);
CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id, position);
`

// Store wraps a bounded connection pool against playlists.db.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the playlist database at path and applies
// the schema idempotently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "open playlist db", err)
	}
	db.SetMaxOpenConns(5)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, domainerr.Wrap(domainerr.Storage, "migrate playlist db", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// CreatePlaylist inserts a new playlist with a fresh UUIDv4 id. A
// duplicate name surfaces as a distinct AlreadyExists DomainError.
func (s *Store) CreatePlaylist(ctx context.Context, create model.PlaylistCreate) (*model.Playlist, error) {
	if strings.TrimSpace(create.Name) == "" {
		return nil, domainerr.New(domainerr.BadRequest, "playlist name must not be empty")
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, create.Name, create.Description, now, now)
	if err != nil {
		if isUniqueConstraint(err) {
			return nil, domainerr.New(domainerr.AlreadyExists, fmt.Sprintf("playlist %q already exists", create.Name))
		}
		return nil, domainerr.Wrap(domainerr.Storage, "create playlist", err)
	}
	return s.GetPlaylist(ctx, id)
}

// GetPlaylist returns a playlist and its ordered track ids.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*model.Playlist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at FROM playlists WHERE id = ?
	`, id)
	pl, err := scanPlaylist(row)
	if err != nil {
		return nil, err
	}
	tracks, err := s.trackIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	pl.Tracks = tracks
	return pl, nil
}

// ListPlaylists returns every playlist, ordered by name.
func (s *Store) ListPlaylists(ctx context.Context) ([]*model.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at FROM playlists ORDER BY name ASC
	`)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "list playlists", err)
	}
	defer rows.Close()

	var out []*model.Playlist
	var ids []string
	for rows.Next() {
		var id, name string
		var description sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&id, &name, &description, &createdAt, &updatedAt); err != nil {
			return nil, domainerr.Wrap(domainerr.Storage, "scan playlist row", err)
		}
		pl := &model.Playlist{ID: id, Name: name, CreatedAt: createdAt, UpdatedAt: updatedAt}
		if description.Valid {
			pl.Description = &description.String
		}
		out = append(out, pl)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "list playlists", err)
	}
	for i, pl := range out {
		tracks, err := s.trackIDs(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		pl.Tracks = tracks
	}
	return out, nil
}

// DeletePlaylist removes a playlist and its track memberships.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "delete playlist", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "delete playlist", err)
	}
	if n == 0 {
		return domainerr.New(domainerr.NotFound, fmt.Sprintf("no playlist %q", id))
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ?`, id)
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "delete playlist tracks", err)
	}
	return nil
}

// UpdatePlaylist applies the non-nil fields of update: name/description in
// place, and — if Tracks is non-nil — the entire ordered track list via a
// single delete-then-insert transaction so concurrent readers never see a
// partially numbered list.
func (s *Store) UpdatePlaylist(ctx context.Context, id string, update model.PlaylistUpdate) (*model.Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "begin update playlist tx", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerr.New(domainerr.NotFound, fmt.Sprintf("no playlist %q", id))
		}
		return nil, domainerr.Wrap(domainerr.Storage, "check playlist exists", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if update.Name != nil || update.Description != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE playlists SET
				name = COALESCE(?, name),
				description = CASE WHEN ? THEN ? ELSE description END,
				updated_at = ?
			WHERE id = ?
		`, update.Name, update.Description != nil, update.Description, now, id); err != nil {
			if isUniqueConstraint(err) {
				return nil, domainerr.New(domainerr.AlreadyExists, "playlist name already exists")
			}
			return nil, domainerr.Wrap(domainerr.Storage, "update playlist", err)
		}
	}

	if update.Tracks != nil {
		if err := replaceTracks(ctx, tx, id, *update.Tracks); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE playlists SET updated_at = ? WHERE id = ?`, now, id); err != nil {
			return nil, domainerr.Wrap(domainerr.Storage, "touch playlist updated_at", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "commit update playlist", err)
	}
	return s.GetPlaylist(ctx, id)
}

// AddTrackToPlaylist appends trackID at position max(position)+1; a no-op
// if the track is already a member.
func (s *Store) AddTrackToPlaylist(ctx context.Context, playlistID, trackID string) (*model.Playlist, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ?`, playlistID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerr.New(domainerr.NotFound, fmt.Sprintf("no playlist %q", playlistID))
		}
		return nil, domainerr.Wrap(domainerr.Storage, "check playlist exists", err)
	}

	var maxPos sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(position) FROM playlist_tracks WHERE playlist_id = ?`, playlistID).Scan(&maxPos); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "find max position", err)
	}
	nextPos := int64(0)
	if maxPos.Valid {
		nextPos = maxPos.Int64 + 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)
	`, playlistID, trackID, nextPos)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "add track to playlist", err)
	}
	return s.GetPlaylist(ctx, playlistID)
}

// RemoveTrackFromPlaylist deletes trackID and renumbers the remaining rows
// contiguously from 0, as a single transaction.
func (s *Store) RemoveTrackFromPlaylist(ctx context.Context, playlistID, trackID string) (*model.Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "begin remove track tx", err)
	}
	defer tx.Rollback()

	remaining, err := trackIDsTx(ctx, tx, playlistID)
	if err != nil {
		return nil, err
	}
	filtered := remaining[:0:0]
	for _, id := range remaining {
		if id != trackID {
			filtered = append(filtered, id)
		}
	}
	if err := replaceTracks(ctx, tx, playlistID, filtered); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "commit remove track", err)
	}
	return s.GetPlaylist(ctx, playlistID)
}

// replaceTracks deletes all of playlistID's track rows and reinserts
// trackIDs with positions 0..len-1, deduplicated in favor of first
// occurrence.
func replaceTracks(ctx context.Context, tx *sql.Tx, playlistID string, trackIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ?`, playlistID); err != nil {
		return domainerr.Wrap(domainerr.Storage, "clear playlist tracks", err)
	}
	seen := make(map[string]bool, len(trackIDs))
	pos := 0
	for _, id := range trackIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)
		`, playlistID, id, pos); err != nil {
			return domainerr.Wrap(domainerr.Storage, "insert playlist track", err)
		}
		pos++
	}
	return nil
}

func (s *Store) trackIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "list playlist tracks", err)
	}
	defer rows.Close()
	return scanTrackIDs(rows)
}

func trackIDsTx(ctx context.Context, tx *sql.Tx, playlistID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "list playlist tracks", err)
	}
	defer rows.Close()
	return scanTrackIDs(rows)
}

func scanTrackIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domainerr.Wrap(domainerr.Storage, "scan track id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "list playlist tracks", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func scanPlaylist(row *sql.Row) (*model.Playlist, error) {
	var pl model.Playlist
	var description sql.NullString
	err := row.Scan(&pl.ID, &pl.Name, &description, &pl.CreatedAt, &pl.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domainerr.New(domainerr.NotFound, "playlist not found")
	}
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "scan playlist row", err)
	}
	if description.Valid {
		pl.Description = &description.String
	}
	return &pl, nil
}

func isUniqueConstraint(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
