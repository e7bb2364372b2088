// Command musicstation is the server binary: it loads configuration from
// the environment, opens the three SQLite side databases, scans the music
// library, wires whichever optional extras are enabled, and serves the
// HTTP API until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/phreer/music-station/internal/backup"
	"github.com/phreer/music-station/internal/cache"
	"github.com/phreer/music-station/internal/config"
	"github.com/phreer/music-station/internal/discovery"
	"github.com/phreer/music-station/internal/httpapi"
	"github.com/phreer/music-station/internal/library"
	"github.com/phreer/music-station/internal/lyrics"
	"github.com/phreer/music-station/internal/lyrics/netease"
	"github.com/phreer/music-station/internal/lyrics/qqmusic"
	"github.com/phreer/music-station/internal/musicbrainz"
	"github.com/phreer/music-station/internal/objstore"
	"github.com/phreer/music-station/internal/store/lyricsdb"
	"github.com/phreer/music-station/internal/store/playlistdb"
	"github.com/phreer/music-station/internal/store/statsdb"
)

func main() {
	cfg := config.FromEnv()

	libraryFlag := flag.String("library", "", "path to the music library root (overrides MUSIC_LIBRARY_PATH)")
	portFlag := flag.String("port", "", "HTTP port to listen on (overrides MUSICSTATION_HTTP_PORT)")
	flag.Parse()
	if *libraryFlag != "" {
		cfg.LibraryRoot = *libraryFlag
	}
	if *portFlag != "" {
		cfg.HTTPPort = *portFlag
	}

	setUpLogging(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func setUpLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func run(cfg *config.Config) error {
	if _, err := os.Stat(cfg.LibraryRoot); err != nil {
		return err
	}

	cfg.ResolveDBPaths()
	if err := os.MkdirAll(filepath.Dir(cfg.LyricsDBPath), 0o755); err != nil {
		return err
	}

	lyricsDB, err := lyricsdb.Open(cfg.LyricsDBPath)
	if err != nil {
		return err
	}
	defer lyricsDB.Close()

	playlistDB, err := playlistdb.Open(cfg.PlaylistDBPath)
	if err != nil {
		return err
	}
	defer playlistDB.Close()

	statsDB, err := statsdb.Open(cfg.StatsDBPath)
	if err != nil {
		return err
	}
	defer statsDB.Close()

	lib := library.New(cfg.LibraryRoot)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	hasLyrics, err := lyricsDB.GetTracksWithLyrics(ctx)
	cancel()
	if err != nil {
		return err
	}
	if err := lib.Scan(context.Background(), hasLyrics); err != nil {
		return err
	}

	lyricsTimeout := time.Duration(cfg.LyricsTimeoutSecs) * time.Second
	neteaseProvider, err := netease.NewProvider(cfg.NetEaseCookie, lyricsTimeout)
	if err != nil {
		return err
	}
	aggregator := lyrics.NewAggregator(neteaseProvider, qqmusic.NewProvider(cfg.QQMusicCookie, lyricsTimeout))

	srv := &httpapi.Server{
		Library:    lib,
		LyricsDB:   lyricsDB,
		PlaylistDB: playlistDB,
		StatsDB:    statsDB,
		Aggregator: aggregator,
		Objects:    objstore.NewLocalFS(),
	}
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		srv.StaticDir = cfg.StaticDir
	}

	var stopChans []chan struct{}
	defer func() {
		for _, ch := range stopChans {
			close(ch)
		}
	}()

	if cfg.CacheEnabled {
		c := cache.New(cfg.RedisAddr, cfg.RedisDB)
		defer c.Close()
		srv.Cache = c
	}

	if cfg.EnrichEnabled {
		srv.MusicBrainz = musicbrainz.New(cfg.MusicBrainzBase, cfg.MusicBrainzAgent)
	}

	if cfg.DiscoveryEnabled {
		port := httpPort(cfg.HTTPPort)
		var features []string
		if cfg.CacheEnabled {
			features = append(features, "cache")
		}
		if cfg.EnrichEnabled {
			features = append(features, "enrich")
		}
		if cfg.WatchEnabled {
			features = append(features, "watch")
		}
		if cfg.BackupEnabled {
			features = append(features, "backup")
		}
		info := discovery.Info{TrackCount: lib.GetStats(0).TotalTracks, Features: features}
		disco, err := discovery.Start(port, cfg.DiscoveryName, info)
		if err != nil {
			slog.Warn("mdns discovery disabled: failed to start", "err", err)
		} else {
			defer disco.Shutdown()
		}
	}

	if cfg.WatchEnabled {
		stop := make(chan struct{})
		stopChans = append(stopChans, stop)
		go func() {
			if err := lib.Watch(stop); err != nil {
				slog.Error("library watcher exited", "err", err)
			}
		}()
	}

	if cfg.BackupEnabled {
		s3Store, err := objstore.NewS3(context.Background(), objstore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			slog.Warn("backup mirror disabled: failed to reach S3 endpoint", "err", err)
		} else {
			mirror := backup.New(s3Store, lib.Root())
			go mirror.MirrorAll(context.Background(), lib.GetTracks())
		}
	}

	handler := httpapi.NewRouter(srv)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func httpPort(s string) int {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 3000
	}
	return port
}
