// Command musicstation-migrate repairs track ids that were computed
// against a stale scheme (the absolute file path) by recomputing the
// current library-root-relative-path scheme and rewriting every row that
// references the old id across all three side databases. --dry-run only
// prints the intended remapping.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/phreer/music-station/internal/library"
)

func main() {
	libraryRoot := flag.String("library", "", "path to the music library root")
	lyricsDBPath := flag.String("lyrics-db", "", "path to lyrics.db")
	playlistDBPath := flag.String("playlist-db", "", "path to playlists.db")
	statsDBPath := flag.String("stats-db", "", "path to stats.db")
	dryRun := flag.Bool("dry-run", false, "print the intended remapping without writing")
	flag.Parse()

	if *libraryRoot == "" {
		fmt.Fprintln(os.Stderr, "usage: musicstation-migrate --library <path> [--lyrics-db p] [--playlist-db p] [--stats-db p] [--dry-run]")
		os.Exit(2)
	}

	if err := run(*libraryRoot, *lyricsDBPath, *playlistDBPath, *statsDBPath, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "migrate failed:", err)
		os.Exit(1)
	}
}

func run(libraryRoot, lyricsDBPath, playlistDBPath, statsDBPath string, dryRun bool) error {
	lib := library.New(libraryRoot)
	if err := lib.Scan(context.Background(), nil); err != nil {
		return err
	}

	remap := map[string]string{} // stale absolute-path id -> current relative-path id
	for _, t := range lib.GetTracks() {
		oldID, err := staleID(t.Path)
		if err != nil {
			continue
		}
		remap[oldID] = t.ID
	}

	targets := []struct {
		label string
		path  string
		table string
	}{
		{"lyrics", lyricsDBPath, "lyrics"},
		{"playlist_tracks", playlistDBPath, "playlist_tracks"},
		{"track_stats", statsDBPath, "track_stats"},
	}

	for _, target := range targets {
		if target.path == "" {
			continue
		}
		if err := migrateTable(target.path, target.table, remap, dryRun); err != nil {
			return fmt.Errorf("%s: %w", target.label, err)
		}
	}
	return nil
}

// staleID reproduces the superseded absolute-path-keyed id scheme so old
// rows can be located; the current scheme lives in library.TrackID.
func staleID(absPath string) (string, error) {
	return library.TrackID("/", absPath)
}

func migrateTable(dbPath, table string, remap map[string]string, dryRun bool) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT DISTINCT track_id FROM %s`, table))
	if err != nil {
		return err
	}
	var present []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		present = append(present, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, oldID := range present {
		newID, ok := remap[oldID]
		if !ok || newID == oldID {
			continue
		}
		fmt.Printf("%s: %s -> %s\n", table, oldID, newID)
		if dryRun {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf(`UPDATE %s SET track_id = ? WHERE track_id = ?`, table), newID, oldID); err != nil {
			return err
		}
	}
	return nil
}
