package netease

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
	baseURL   = "https://music.163.com"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// SearchHit is one song returned by Search.
type SearchHit struct {
	ID       int64
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// Client talks to NetEase Cloud Music's unofficial weapi.
type Client struct {
	httpClient *http.Client
	secretKey  string
	encSecKey  string
	cookie     string
}

// NewClient builds a Client, generating the per-instance AES secret key and
// its RSA-wrapped form once up front, matching NetEaseMusicApi::new. A
// zero timeout means the 10s default.
func NewClient(cookie string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	secretKey, err := createSecretKey(16)
	if err != nil {
		return nil, err
	}
	encSecKey, err := rsaEncode(secretKey)
	if err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		secretKey:  secretKey,
		encSecKey:  encSecKey,
		cookie:     cookie,
	}, nil
}

// Search queries cloudsearch/get/web for songs matching keyword.
func (c *Client) Search(ctx context.Context, keyword string) ([]SearchHit, error) {
	payload := map[string]any{
		"csrf_token": "",
		"s":          keyword,
		"type":       "1",
		"limit":      "20",
		"offset":     "0",
	}
	body, err := c.post(ctx, "/weapi/cloudsearch/get/web", payload)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode netease search response", err)
	}
	if codeNeedsAuth(resp.Code) {
		return nil, domainerr.New(domainerr.NeedsAuth, errMsgNeedLogin)
	}
	if resp.Code != 200 {
		return nil, domainerr.New(domainerr.Upstream, errMsgSongNotExist)
	}

	hits := make([]SearchHit, 0, len(resp.Result.Songs))
	for _, s := range resp.Result.Songs {
		var artist string
		if len(s.Artists) > 0 {
			artist = s.Artists[0].Name
		}
		hits = append(hits, SearchHit{
			ID:       s.ID,
			Title:    s.Name,
			Artist:   artist,
			Album:    s.Album.Name,
			Duration: time.Duration(s.Duration) * time.Millisecond,
		})
	}
	return hits, nil
}

// Lyric fetches the LRC lyric plus its translated and romanized siblings,
// whichever of the latter two NetEase actually has for this song.
func (c *Client) Lyric(ctx context.Context, songID int64) (lrc, translated, romanized string, err error) {
	payload := map[string]any{
		"id":         fmt.Sprintf("%d", songID),
		"os":         "pc",
		"lv":         "-1",
		"kv":         "-1",
		"tv":         "-1",
		"csrf_token": "",
	}
	body, err := c.post(ctx, "/weapi/song/lyric", payload)
	if err != nil {
		return "", "", "", err
	}

	var resp lyricResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", "", domainerr.Wrap(domainerr.Upstream, "decode netease lyric response", err)
	}
	if codeNeedsAuth(resp.Code) {
		return "", "", "", domainerr.New(domainerr.NeedsAuth, errMsgNeedLogin)
	}
	if resp.Uncollected || strings.TrimSpace(resp.LRC.Lyric) == "" {
		return "", "", "", domainerr.New(domainerr.NotFound, errMsgLyricMissing)
	}
	return resp.LRC.Lyric, resp.TLyric.Lyric, resp.RomaLRC.Lyric, nil
}

// Songs fetches full detail records for a batch of song IDs via
// v3/song/detail, returned keyed by ID. Unknown IDs are simply absent.
func (c *Client) Songs(ctx context.Context, songIDs []int64) (map[int64]Song, error) {
	if len(songIDs) == 0 {
		return map[int64]Song{}, nil
	}

	refs := make([]map[string]any, len(songIDs))
	for i, id := range songIDs {
		refs[i] = map[string]any{"id": fmt.Sprintf("%d", id)}
	}
	inner, err := json.Marshal(refs)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"c":          string(inner),
		"csrf_token": "",
	}

	body, err := c.post(ctx, "/weapi/v3/song/detail", payload)
	if err != nil {
		return nil, err
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode netease song detail response", err)
	}
	if codeNeedsAuth(resp.Code) {
		return nil, domainerr.New(domainerr.NeedsAuth, errMsgNeedLogin)
	}
	if resp.Code != 200 {
		return nil, domainerr.New(domainerr.NotFound, errMsgSongNotExist)
	}

	out := make(map[int64]Song, len(resp.Songs))
	for _, s := range resp.Songs {
		out[s.ID] = s
	}
	return out, nil
}

// Playlist fetches one playlist's metadata and ordered track references via
// v6/playlist/detail.
func (c *Client) Playlist(ctx context.Context, playlistID int64) (*PlaylistDetail, error) {
	payload := map[string]any{
		"csrf_token": "",
		"id":         fmt.Sprintf("%d", playlistID),
		"offset":     "0",
		"total":      "true",
		"limit":      "1000",
		"n":          "1000",
	}

	body, err := c.post(ctx, "/weapi/v6/playlist/detail", payload)
	if err != nil {
		return nil, err
	}

	var resp playlistResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode netease playlist response", err)
	}
	if codeNeedsAuth(resp.Code) {
		return nil, domainerr.New(domainerr.NeedsAuth, errMsgNeedLogin)
	}
	if resp.Code != 200 {
		return nil, domainerr.New(domainerr.NotFound, errMsgPlaylistMissing)
	}
	return &resp.Playlist, nil
}

// Album fetches one album's metadata and track list via v1/album/{id} — the
// one weapi endpoint whose ID rides in the URL path rather than the payload.
func (c *Client) Album(ctx context.Context, albumID int64) (*AlbumDetail, []Song, error) {
	payload := map[string]any{"csrf_token": ""}

	body, err := c.post(ctx, fmt.Sprintf("/weapi/v1/album/%d", albumID), payload)
	if err != nil {
		return nil, nil, err
	}

	var resp albumResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, domainerr.Wrap(domainerr.Upstream, "decode netease album response", err)
	}
	if codeNeedsAuth(resp.Code) {
		return nil, nil, domainerr.New(domainerr.NeedsAuth, errMsgNeedLogin)
	}
	if resp.Code != 200 {
		return nil, nil, domainerr.New(domainerr.NotFound, errMsgAlbumMissing)
	}
	return &resp.Album, resp.Songs, nil
}

// SongURLs resolves playable CDN links for a batch of song IDs via
// song/enhance/player/url, keyed by ID. Songs NetEase refuses to serve
// (region locks, missing catalog) come back with an empty URL and are
// omitted.
func (c *Client) SongURLs(ctx context.Context, songIDs []int64) (map[int64]SongURL, error) {
	ids := make([]string, len(songIDs))
	for i, id := range songIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	payload := map[string]any{
		"ids":        "[" + strings.Join(ids, ",") + "]",
		"br":         "999000",
		"csrf_token": "",
	}

	body, err := c.post(ctx, "/weapi/song/enhance/player/url", payload)
	if err != nil {
		return nil, err
	}

	var resp songURLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerr.Wrap(domainerr.Upstream, "decode netease song url response", err)
	}
	if codeNeedsAuth(resp.Code) {
		return nil, domainerr.New(domainerr.NeedsAuth, errMsgNeedLogin)
	}
	if resp.Code != 200 {
		return nil, domainerr.New(domainerr.NotFound, errMsgSongNotExist)
	}

	out := make(map[int64]SongURL, len(resp.Data))
	for _, d := range resp.Data {
		if d.URL == "" {
			continue
		}
		out[d.ID] = d
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal netease payload: %w", err)
	}

	form, err := prepareParams(string(raw), c.secretKey, c.encSecKey)
	if err != nil {
		return nil, fmt.Errorf("prepare netease params: %w", err)
	}

	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path+"?csrf_token=", strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://music.163.com/")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

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
		return nil, domainerr.New(domainerr.Upstream, fmt.Sprintf("netease http %d", resp.StatusCode))
	}
	return body, nil
}
