// Package config loads server configuration from the environment: every
// setting has a sane default and can be overridden by an env var, no
// config file parsing.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds every setting the server and its optional extras need.
type Config struct {
	// Core
	LibraryRoot string
	HTTPPort    string
	LogLevel    string

	// Static web client; empty disables /web/*.
	StaticDir string

	// Side databases (SQLite file paths).
	LyricsDBPath   string
	PlaylistDBPath string
	StatsDBPath    string

	// Lyrics providers. Cookies are optional; anonymous access works for
	// search and lyric retrieval on both services.
	NetEaseCookie     string
	QQMusicCookie     string
	LyricsTimeoutSecs int

	// Optional: Redis metadata cache.
	CacheEnabled bool
	RedisAddr    string
	RedisDB      int

	// Optional: mDNS LAN discovery.
	DiscoveryEnabled bool
	DiscoveryName    string

	// Optional: MusicBrainz enrichment.
	EnrichEnabled    bool
	MusicBrainzBase  string
	MusicBrainzAgent string

	// Optional: S3 mirror/backup.
	BackupEnabled bool
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3UseSSL      bool

	// Optional: fsnotify incremental rescan.
	WatchEnabled bool
}

// FromEnv builds a Config from the process environment.
func FromEnv() *Config {
	return &Config{
		LibraryRoot: envOrDefault("MUSIC_LIBRARY_PATH", "./data/music"),
		HTTPPort:    envOrDefault("MUSICSTATION_HTTP_PORT", "3000"),
		LogLevel:    envOrDefault("MUSICSTATION_LOG_LEVEL", "info"),

		StaticDir: envOrDefault("MUSICSTATION_STATIC_DIR", "./static"),

		LyricsDBPath:   envOrDefault("MUSICSTATION_LYRICS_DB", ""),
		PlaylistDBPath: envOrDefault("MUSICSTATION_PLAYLIST_DB", ""),
		StatsDBPath:    envOrDefault("MUSICSTATION_STATS_DB", ""),

		NetEaseCookie:     envOrDefault("MUSICSTATION_NETEASE_COOKIE", ""),
		QQMusicCookie:     envOrDefault("MUSICSTATION_QQMUSIC_COOKIE", ""),
		LyricsTimeoutSecs: envInt("MUSICSTATION_LYRICS_TIMEOUT_SECS", 10),

		CacheEnabled: envBool("MUSICSTATION_CACHE_ENABLED", false),
		RedisAddr:    envOrDefault("MUSICSTATION_REDIS_ADDR", "localhost:6379"),
		RedisDB:      envInt("MUSICSTATION_REDIS_DB", 0),

		DiscoveryEnabled: envBool("MUSICSTATION_DISCOVERY_ENABLED", false),
		DiscoveryName:    envOrDefault("MUSICSTATION_DISCOVERY_NAME", "music-station"),

		EnrichEnabled:    envBool("MUSICSTATION_ENRICH_ENABLED", false),
		MusicBrainzBase:  envOrDefault("MUSICSTATION_MUSICBRAINZ_URL", "https://musicbrainz.org/ws/2"),
		MusicBrainzAgent: envOrDefault("MUSICSTATION_MUSICBRAINZ_AGENT", "music-station/0.1 (+https://example.invalid)"),

		BackupEnabled: envBool("MUSICSTATION_BACKUP_ENABLED", false),
		S3Endpoint:    envOrDefault("MUSICSTATION_S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:   envOrDefault("MUSICSTATION_S3_ACCESS_KEY", "musicstation"),
		S3SecretKey:   envOrDefault("MUSICSTATION_S3_SECRET_KEY", "musicstation-secret"),
		S3Bucket:      envOrDefault("MUSICSTATION_S3_BUCKET", "music-station-mirror"),
		S3UseSSL:      envBool("MUSICSTATION_S3_USE_SSL", false),

		WatchEnabled: envBool("MUSICSTATION_WATCH_ENABLED", false),
	}
}

// ResolveDBPaths fills in any side-database path left empty with its
// default location under <library>/.music-station/, the directory the
// server owns inside the library root.
func (c *Config) ResolveDBPaths() {
	dbDir := filepath.Join(c.LibraryRoot, ".music-station")
	if c.LyricsDBPath == "" {
		c.LyricsDBPath = filepath.Join(dbDir, "lyrics.db")
	}
	if c.PlaylistDBPath == "" {
		c.PlaylistDBPath = filepath.Join(dbDir, "playlists.db")
	}
	if c.StatsDBPath == "" {
		c.StatsDBPath = filepath.Join(dbDir, "stats.db")
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
