package qqmusic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phreer/music-station/internal/domainerr"
)

const (
	searchURL     = "https://u.y.qq.com/cgi-bin/musicu.fcg"
	lyricURL      = "https://c.y.qq.com/qqmusic/fcgi-bin/lyric_download.fcg"
	singleSongURL = "https://c.y.qq.com/v8/fcg-bin/fcg_play_single_song.fcg"
	playlistURL   = "https://c.y.qq.com/qzone/fcg-bin/fcg_ucc_getcdinfo_byids_cp.fcg"
	albumURL      = "https://c.y.qq.com/v8/fcg-bin/fcg_v8_album_info_cp.fcg"
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	refererBase   = "https://c.y.qq.com/"
)

// SearchHit is one song returned by Search.
type SearchHit struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// Client talks to QQ Music's public (unauthenticated) endpoints.
type Client struct {
	httpClient *http.Client
	cookie     string
}

// NewClient builds a Client. A zero timeout means the 10s default.
func NewClient(cookie string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cookie:     cookie,
	}
}

// Search queries musicu.fcg's DoSearchForQQMusicDesktop method for songs.
func (c *Client) Search(ctx context.Context, keyword string) ([]SearchHit, error) {
	envelope := map[string]any{
		"req_1": map[string]any{
			"method": "DoSearchForQQMusicDesktop",
			"module": "music.search.SearchCgiService",
			"param": map[string]any{
				"num_per_page": "20",
				"page_num":     "1",
				"query":        keyword,
				"search_type":  0,
			},
		},
	}

	body, err := c.postJSON(ctx, searchURL, envelope)
	if err != nil {
		return nil, err
	}

	var resp musicFcgResult
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode qqmusic search response", err)
	}
	if resp.Code != 0 || resp.Req1.Code != 0 || resp.Req1.Data.Code != 0 {
		return nil, domainerr.New(domainerr.Upstream, errMsgNetworkError)
	}

	hits := make([]SearchHit, 0, len(resp.Req1.Data.Body.Song.List))
	for _, s := range resp.Req1.Data.Body.Song.List {
		title := s.Title
		if title == "" {
			title = s.Name
		}
		var artist string
		if len(s.Singer) > 0 {
			artist = s.Singer[0].Name
		}
		hits = append(hits, SearchHit{
			ID:       s.ID.String(),
			Title:    title,
			Artist:   artist,
			Album:    s.Album.Name,
			Duration: time.Duration(s.Interval) * time.Second,
		})
	}
	return hits, nil
}

// Song fetches one song's full detail via fcg_play_single_song.fcg, which
// only speaks JSONP. A numeric id is sent as songid, anything else as
// songmid.
func (c *Client) Song(ctx context.Context, id string) (*Song, error) {
	const callback = "getOneSongInfoCallback"

	idField := "songmid"
	if isNumeric(id) {
		idField = "songid"
	}
	form := url.Values{
		idField:         {id},
		"tpl":           {"yqq_song_detail"},
		"format":        {"jsonp"},
		"callback":      {callback},
		"g_tk":          {"5381"},
		"jsonpCallback": {callback},
		"loginUin":      {"0"},
		"hostUin":       {"0"},
		"outCharset":    {"utf8"},
		"notice":        {"0"},
		"platform":      {"yqq"},
		"needNewCode":   {"0"},
	}

	body, err := c.postForm(ctx, singleSongURL, form)
	if err != nil {
		return nil, err
	}

	jsonBody, ok := resolveJSONPBody(callback, string(body))
	if !ok {
		return nil, domainerr.New(domainerr.Upstream, "qqmusic song response is not the expected jsonp envelope")
	}

	var resp songResult
	if err := json.Unmarshal([]byte(jsonBody), &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode qqmusic song response", err)
	}
	if resp.Code != 0 || len(resp.Data) == 0 {
		return nil, domainerr.New(domainerr.NotFound, errMsgSongNotExist)
	}
	return &resp.Data[0], nil
}

// Playlist fetches one playlist's metadata and song list via the qzone
// getcdinfo endpoint.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*PlaylistDetail, error) {
	form := url.Values{
		"disstid":    {playlistID},
		"format":     {"json"},
		"outCharset": {"utf8"},
		"type":       {"1"},
		"json":       {"1"},
		"utf8":       {"1"},
		"onlysong":   {"0"},
		"new_format": {"1"},
	}

	body, err := c.postForm(ctx, playlistURL, form)
	if err != nil {
		return nil, err
	}

	var resp playlistResult
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode qqmusic playlist response", err)
	}
	if resp.Code != 0 || len(resp.CDList) == 0 {
		return nil, domainerr.New(domainerr.NotFound, errMsgPlaylistMissing)
	}
	return &resp.CDList[0], nil
}

// Album fetches one album's metadata and song list. A numeric id is sent
// as albumid, anything else as albummid.
func (c *Client) Album(ctx context.Context, albumID string) (*AlbumDetail, error) {
	idField := "albummid"
	if isNumeric(albumID) {
		idField = "albumid"
	}
	form := url.Values{idField: {albumID}}

	body, err := c.postForm(ctx, albumURL, form)
	if err != nil {
		return nil, err
	}

	var resp albumResult
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode qqmusic album response", err)
	}
	if resp.Code != 0 {
		return nil, domainerr.New(domainerr.NotFound, errMsgAlbumMissing)
	}
	return &resp.Data, nil
}

// SongLink resolves a playable CDN URL for a song mid: one musicu.fcg call
// carrying a CDN-dispatch request and a vkey request, whose sip host and
// purl path concatenate into the link. An empty string means QQ Music will
// not serve this song anonymously.
func (c *Client) SongLink(ctx context.Context, songMid string) (string, error) {
	envelope := map[string]any{
		"req": map[string]any{
			"method": "GetCdnDispatch",
			"module": "CDN.SrfCdnDispatchServer",
			"param": map[string]any{
				"guid":     "8348972662",
				"calltype": "0",
				"userip":   "",
			},
		},
		"req_0": map[string]any{
			"method": "CgiGetVkey",
			"module": "vkey.GetVkeyServer",
			"param": map[string]any{
				"guid":      "8348972662",
				"songmid":   []string{songMid},
				"songtype":  []int{1},
				"uin":       "0",
				"loginflag": 1,
				"platform":  "20",
			},
		},
		"comm": map[string]any{
			"uin":    0,
			"format": "json",
			"ct":     24,
			"cv":     0,
		},
	}

	body, err := c.postJSON(ctx, searchURL, envelope)
	if err != nil {
		return "", err
	}

	var resp vkeyResult
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", domainerr.Wrap(domainerr.Upstream, "decode qqmusic vkey response", err)
	}
	if resp.Req.Code != 0 || resp.Req0.Code != 0 {
		return "", nil
	}
	if len(resp.Req.Data.SIP) == 0 || len(resp.Req0.Data.MidURLInfo) == 0 {
		return "", nil
	}
	purl := resp.Req0.Data.MidURLInfo[0].PURL
	if purl == "" {
		return "", nil
	}
	return resp.Req.Data.SIP[0] + purl, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Lyric fetches and decrypts the QRC lyric plus its translation and
// romanization siblings for a song ID via lyric_download.fcg.
func (c *Client) Lyric(ctx context.Context, songID string) (lyric, translated, romanized string, err error) {
	form := url.Values{
		"version":     {"15"},
		"miniversion": {"82"},
		"lrctype":     {"4"},
		"musicid":     {songID},
	}

	body, err := c.postForm(ctx, lyricURL, form)
	if err != nil {
		return "", "", "", err
	}

	cleaned := stripXMLComments(string(body))

	content, hasContent := extractContentTag([]byte(cleaned), "content")
	if !hasContent || strings.TrimSpace(content) == "" {
		return "", "", "", domainerr.New(domainerr.NotFound, errMsgLyricMissing)
	}

	lyric, err = decodeQRCField(content)
	if err != nil {
		return "", "", "", err
	}

	if ts, ok := extractContentTag([]byte(cleaned), "contentts"); ok && strings.TrimSpace(ts) != "" {
		if decoded, decErr := decodeQRCField(ts); decErr == nil {
			translated = decoded
		}
	}

	if roma, ok := extractContentTag([]byte(cleaned), "contentroma"); ok && strings.TrimSpace(roma) != "" {
		if decoded, decErr := decodeQRCField(roma); decErr == nil {
			romanized = decoded
		}
	}

	return lyric, translated, romanized, nil
}

// decodeQRCField decrypts one <content>/<contentts>/<contentroma> field,
// hex text that must be a multiple of 8 bytes once decoded, and unwraps a
// nested QRC XML envelope if present.
func decodeQRCField(hexField string) (string, error) {
	hexField = strings.TrimSpace(hexField)
	if len(hexField)%16 != 0 {
		return "", domainerr.New(domainerr.Upstream, "qqmusic lyric payload is not a whole number of 8-byte blocks")
	}
	decrypted, err := decryptLyrics(hexField)
	if err != nil {
		return "", domainerr.Wrap(domainerr.Upstream, "decrypt qqmusic lyric payload", err)
	}
	return unwrapQRC(decrypted), nil
}

func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setCommonHeaders(req)

	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, rawURL string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal qqmusic payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)

	return c.do(req)
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", refererBase)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, errMsgNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, errMsgNetworkError, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domainerr.New(domainerr.Upstream, fmt.Sprintf("qqmusic http %d", resp.StatusCode))
	}
	return body, nil
}

// resolveJSONPBody strips a `callback(...)` wrapper from a JSONP response.
// Only fcg_play_single_song.fcg wraps its body this way; the other
// endpoints return plain JSON or raw XML.
func resolveJSONPBody(callbackName, body string) (string, bool) {
	if !strings.HasPrefix(body, callbackName) {
		return "", false
	}
	trimmed := strings.TrimPrefix(body, callbackName+"(")
	trimmed = strings.TrimSuffix(strings.TrimRight(trimmed, "\n\r\t "), ")")
	return trimmed, true
}
