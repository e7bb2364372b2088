package lyricformat

import (
	"testing"

	"github.com/phreer/music-station/internal/model"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    model.LyricFormat
	}{
		{"plain", "just some words\nwith no timing at all", model.LyricFormatPlain},
		{"lrc_line", "[00:12.34]Hello there\n[00:15.00]Second line", model.LyricFormatLRC},
		{
			"lrc_word",
			"[00:12.34]Hello(1000,200) there(1200,150)",
			model.LyricFormatLRCWord,
		},
		{"lrc_word_cjk", "挪(0,721)威(721,721)", model.LyricFormatLRCWord},
		{"lrc_offset_duration", "[1000,200]line with bracket timing", model.LyricFormatLRC},
		{"plain_parenthetical", "just text (a note)", model.LyricFormatPlain},
		{"empty", "", model.LyricFormatPlain},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Detect(c.content); got != c.want {
				t.Errorf("Detect(%q) = %q, want %q", c.content, got, c.want)
			}
		})
	}
}
