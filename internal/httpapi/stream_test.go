package httpapi

import "testing"

func TestParseRangeFull(t *testing.T) {
	start, end, err := parseRange("bytes=0-", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 0 || end != 999 {
		t.Fatalf("got [%d, %d], want [0, 999]", start, end)
	}
}

func TestParseRangeMiddle(t *testing.T) {
	start, end, err := parseRange("bytes=100-199", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 100 || end != 199 {
		t.Fatalf("got [%d, %d], want [100, 199]", start, end)
	}
}

func TestParseRangeSuffix(t *testing.T) {
	start, end, err := parseRange("bytes=-500", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 500 || end != 999 {
		t.Fatalf("got [%d, %d], want [500, 999]", start, end)
	}
}

func TestParseRangeSuffixLargerThanSize(t *testing.T) {
	start, end, err := parseRange("bytes=-5000", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 0 || end != 999 {
		t.Fatalf("got [%d, %d], want [0, 999] (clamped)", start, end)
	}
}

func TestParseRangeMalformedFallsBackToFull(t *testing.T) {
	cases := []string{
		"",
		"bogus",
		"bytes=abc-def",
		"bytes=500-100", // start after end
		"bytes=2000-3000", // beyond size
	}
	for _, c := range cases {
		if _, _, err := parseRange(c, 1000); err == nil && c != "" {
			t.Errorf("parseRange(%q) should have failed", c)
		}
	}
}

func TestMimeForFormat(t *testing.T) {
	cases := map[string]string{
		"flac": "audio/flac",
		"mp3":  "audio/mpeg",
		"ogg":  "audio/ogg",
		"m4a":  "audio/mp4",
		"wav":  "application/octet-stream",
	}
	for format, want := range cases {
		if got := mimeForFormat(format); got != want {
			t.Errorf("mimeForFormat(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestFilenameFor(t *testing.T) {
	if got := filenameFor("/music/Artist/Album/track.flac"); got != "track.flac" {
		t.Errorf("filenameFor = %q, want track.flac", got)
	}
	if got := filenameFor("track.flac"); got != "track.flac" {
		t.Errorf("filenameFor with no separator = %q, want track.flac", got)
	}
}
