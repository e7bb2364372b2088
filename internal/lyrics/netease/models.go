// Package netease implements the NetEase Cloud Music lyrics provider: the
// weapi POST envelope (double AES-128-CBC wrap + textbook-RSA sec-key),
// song search, catalog lookups, and lyric fetch.
package netease

// searchResponse is the envelope returned by /weapi/cloudsearch/get/web.
type searchResponse struct {
	Code   int64 `json:"code"`
	Result struct {
		Songs []struct {
			ID      int64    `json:"id"`
			Name    string   `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			Duration int64 `json:"duration"`
		} `json:"songs"`
	} `json:"result"`
}

// lyricResponse is the envelope returned by /weapi/song/lyric.
type lyricResponse struct {
	Code int64 `json:"code"`
	LRC  struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
	TLyric struct {
		Lyric string `json:"lyric"`
	} `json:"tlyric"`
	RomaLRC struct {
		Lyric string `json:"lyric"`
	} `json:"romalrc"`
	Uncollected bool `json:"uncollected"`
}

// Song is one full detail record from /weapi/v3/song/detail.
type Song struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"ar"`
	Album struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		PicURL string `json:"picUrl"`
	} `json:"al"`
	Duration int64 `json:"dt"` // milliseconds
}

// detailResponse is the envelope returned by /weapi/v3/song/detail.
type detailResponse struct {
	Code  int64  `json:"code"`
	Songs []Song `json:"songs"`
}

// PlaylistDetail is the playlist object inside /weapi/v6/playlist/detail.
type PlaylistDetail struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int64  `json:"trackCount"`
	TrackIDs    []struct {
		ID int64 `json:"id"`
	} `json:"trackIds"`
}

type playlistResponse struct {
	Code     int64          `json:"code"`
	Playlist PlaylistDetail `json:"playlist"`
}

// AlbumDetail is the album object inside /weapi/v1/album/{id}.
type AlbumDetail struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PicURL      string `json:"picUrl"`
	Description string `json:"description"`
	Artist      struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
	PublishTime int64 `json:"publishTime"`
}

type albumResponse struct {
	Code  int64       `json:"code"`
	Album AlbumDetail `json:"album"`
	Songs []Song      `json:"songs"`
}

// SongURL is one resolved CDN link from /weapi/song/enhance/player/url.
type SongURL struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Bitrate int64  `json:"br"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
}

type songURLResponse struct {
	Code int64     `json:"code"`
	Data []SongURL `json:"data"`
}

// Chinese-language error messages matching what NetEase's own web client
// shows for the corresponding in-band `code` values, so a caller surfacing
// them sees the same wording the service itself uses.
const (
	errMsgNeedLogin       = "本请求需要登陆信息才可使用，请检查 Cookie 是否填写或过期"
	errMsgSongNotExist    = "歌曲信息暂未被收录或查询失败"
	errMsgLyricMissing    = "歌词信息暂未被收录或查询失败"
	errMsgAlbumMissing    = "专辑信息暂未被收录或查询失败"
	errMsgPlaylistMissing = "歌单信息暂未被收录或查询失败"
	errMsgNetworkError    = "网络错误，请检查网络链接"
)

// codeNeedsAuth reports whether an in-band weapi code demands a logged-in
// session: 50000005 (VIP-only resource) and 20001 (relogin required).
func codeNeedsAuth(code int64) bool {
	return code == 50000005 || code == 20001
}
