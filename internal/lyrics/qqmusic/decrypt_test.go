package qqmusic

import (
	"testing"

	"github.com/phreer/music-station/internal/model"
)

func queryWith(title string, artist *string) model.LyricsQuery {
	return model.LyricsQuery{Title: title, Artist: artist}
}

func TestResolveJSONPBody(t *testing.T) {
	body, ok := resolveJSONPBody("getOneSongInfoCallback", `getOneSongInfoCallback({"code":0})`)
	if !ok {
		t.Fatal("expected jsonp envelope to resolve")
	}
	if body != `{"code":0}` {
		t.Errorf("resolved body = %q, want %q", body, `{"code":0}`)
	}

	if _, ok := resolveJSONPBody("getOneSongInfoCallback", `{"code":0}`); ok {
		t.Error("bare JSON should not resolve as jsonp")
	}
}

func TestStripXMLComments(t *testing.T) {
	got := stripXMLComments("<!--<root>x</root>-->")
	if got != "<root>x</root>" {
		t.Errorf("stripXMLComments = %q", got)
	}
}

func TestExtractContentTag(t *testing.T) {
	body := []byte(`<root><miniversion value="1"/><content><![CDATA[
  DEADBEEF
]]></content><contentts>CAFEF00D</contentts></root>`)

	content, ok := extractContentTag(body, "content")
	if !ok {
		t.Fatal("content tag not found")
	}
	if got := content; got != "\n  DEADBEEF\n" {
		t.Errorf("content = %q", got)
	}

	ts, ok := extractContentTag(body, "contentts")
	if !ok || ts != "CAFEF00D" {
		t.Errorf("contentts = %q, ok = %v", ts, ok)
	}

	if _, ok := extractContentTag(body, "contentroma"); ok {
		t.Error("absent tag should not be found")
	}
}

func TestUnwrapQRC(t *testing.T) {
	wrapped := `<?xml version="1.0" encoding="utf-8"?><QrcInfos><Lyric_1 LyricContent="[1,2]hi(0,1)"/></QrcInfos>`
	if got := unwrapQRC(wrapped); got != "[1,2]hi(0,1)" {
		t.Errorf("unwrapQRC(xml) = %q", got)
	}
	if got := unwrapQRC("[00:01.00]plain lrc"); got != "[00:01.00]plain lrc" {
		t.Errorf("unwrapQRC(plain) = %q", got)
	}
}

func TestConfidenceScoring(t *testing.T) {
	artist := "Some Artist"
	cases := []struct {
		name          string
		queryArtist   *string
		title, artist string
		want          float64
	}{
		{"base only", nil, "unrelated", "whoever", 0.5},
		{"title match", nil, "My Song Title", "whoever", 0.8},
		{"title and artist match", &artist, "my song title (live)", "some artist feat. x", 1.0},
		{"artist match only", &artist, "unrelated", "SOME ARTIST", 0.7},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q := queryWith("My Song Title", c.queryArtist)
			if got := confidence(q, c.title, c.artist); got != c.want {
				t.Errorf("confidence = %v, want %v", got, c.want)
			}
		})
	}
}
