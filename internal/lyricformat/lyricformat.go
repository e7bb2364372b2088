// Package lyricformat auto-detects the timing scheme of a lyric's raw
// text content, the way a player needs to before it can render synced
// lines. It is a standalone leaf package so both the lyrics aggregator
// and the individual providers can call it without an import cycle.
package lyricformat

import (
	"regexp"

	"github.com/phreer/music-station/internal/model"
)

// wordTiming matches per-syllable timing tags like "hello(1000,200)",
// QQ Music QRC's word-level format.
var wordTiming = regexp.MustCompile(`\S+\(\d+,\d+\)`)

// lineTiming matches standard LRC line tags "[01:23.456]" or "[1000,200]".
var lineTiming = regexp.MustCompile(`\[\d+:\d{2}\.\d{2,3}\]|\[\d+,\d+\]`)

// Detect classifies content as word-timed, line-timed, or plain text.
func Detect(content string) model.LyricFormat {
	if wordTiming.MatchString(content) {
		return model.LyricFormatLRCWord
	}
	if lineTiming.MatchString(content) {
		return model.LyricFormatLRC
	}
	return model.LyricFormatPlain
}
