// Command musicstation-export is a read-only lyrics-export utility: it
// scans a library root to recover each track's on-disk path, reads the
// lyrics side database directly, and writes a sibling .lrc (synced
// formats) or .txt (plain) file next to every track that has stored
// lyrics. It never opens a track's audio file for writing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phreer/music-station/internal/library"
	"github.com/phreer/music-station/internal/store/lyricsdb"
)

func main() {
	libraryRoot := flag.String("library", "", "path to the music library root")
	lyricsDBPath := flag.String("lyrics-db", "", "path to lyrics.db")
	flag.Parse()

	if *libraryRoot == "" || *lyricsDBPath == "" {
		fmt.Fprintln(os.Stderr, "usage: musicstation-export --library <path> --lyrics-db <path>")
		os.Exit(2)
	}

	if err := run(*libraryRoot, *lyricsDBPath); err != nil {
		fmt.Fprintln(os.Stderr, "export failed:", err)
		os.Exit(1)
	}
}

func run(libraryRoot, lyricsDBPath string) error {
	lib := library.New(libraryRoot)
	if err := lib.Scan(context.Background(), nil); err != nil {
		return err
	}

	db, err := lyricsdb.Open(lyricsDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	withLyrics, err := db.GetTracksWithLyrics(ctx)
	if err != nil {
		return err
	}

	exported := 0
	for _, t := range lib.GetTracks() {
		if !withLyrics[t.ID] {
			continue
		}
		lyric, err := db.GetLyric(ctx, t.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", t.Path, err)
			continue
		}

		ext := ".txt"
		if strings.HasPrefix(string(lyric.Format), "lrc") {
			ext = ".lrc"
		}
		dest := strings.TrimSuffix(t.Path, filepath.Ext(t.Path)) + ext
		if err := os.WriteFile(dest, []byte(lyric.Content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", dest, err)
			continue
		}
		exported++
	}

	fmt.Printf("exported %d lyric file(s)\n", exported)
	return nil
}
