// Package qqmusic implements the QQ Music lyrics provider: a nested
// req_N-envelope search over musicu.fcg, JSONP and form-encoded catalog
// lookups on c.y.qq.com, and the QRC lyric_download.fcg pipeline
// (XML-unwrap, hex-decode, Triple-DES decrypt, zlib inflate).
package qqmusic

import "encoding/json"

// musicFcgResult is the nested req_1 envelope search.fcg wraps every
// response in.
type musicFcgResult struct {
	Code int `json:"code"`
	Req1 struct {
		Code int `json:"code"`
		Data struct {
			Code int `json:"code"`
			Body struct {
				Song struct {
					List []songBody `json:"list"`
				} `json:"song"`
			} `json:"body"`
		} `json:"data"`
	} `json:"req_1"`
}

// songBody is the slimmer per-hit shape inside the search envelope. The
// upstream serializes id as a bare number, hence json.Number rather than
// string.
type songBody struct {
	ID     json.Number `json:"id"`
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	Singer []struct {
		Name string `json:"name"`
	} `json:"singer"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	Interval int64 `json:"interval"` // seconds
}

// Song is one full detail record; fcg_play_single_song.fcg and the
// playlist/album lookups all return songs in this shape.
type Song struct {
	ID       json.Number `json:"id"`
	Mid      string      `json:"mid"`
	Name     string      `json:"name"`
	Title    string      `json:"title"`
	Interval int64       `json:"interval"` // seconds
	Album    struct {
		ID   int64  `json:"id"`
		Mid  string `json:"mid"`
		Name string `json:"name"`
	} `json:"album"`
	Singer []struct {
		ID   int64  `json:"id"`
		Mid  string `json:"mid"`
		Name string `json:"name"`
	} `json:"singer"`
}

// songResult is the JSONP-unwrapped envelope fcg_play_single_song.fcg
// returns.
type songResult struct {
	Code int    `json:"code"`
	Data []Song `json:"data"`
}

// PlaylistDetail is one playlist from fcg_ucc_getcdinfo_byids_cp.fcg.
type PlaylistDetail struct {
	Name        string `json:"dissname"`
	Author      string `json:"nickname"`
	Description string `json:"desc"`
	Songs       []Song `json:"songList"`
}

type playlistResult struct {
	Code   int              `json:"code"`
	CDList []PlaylistDetail `json:"cdlist"`
}

// AlbumDetail is the album record from fcg_v8_album_info_cp.fcg.
type AlbumDetail struct {
	Name        string      `json:"name"`
	Company     string      `json:"company"`
	Description string      `json:"desc"`
	PublishDate string      `json:"aDate"`
	Songs       []albumSong `json:"list"`
}

// albumSong uses the album endpoint's own field names, which predate the
// unified Song shape the newer endpoints share.
type albumSong struct {
	ID     int64  `json:"songid"`
	Mid    string `json:"songmid"`
	Name   string `json:"songname"`
	Singer []struct {
		Name string `json:"name"`
	} `json:"singer"`
}

type albumResult struct {
	Code int         `json:"code"`
	Data AlbumDetail `json:"data"`
}

// vkeyResult is the two-request musicu.fcg envelope SongLink sends: req
// resolves a CDN host, req_0 resolves the per-song vkey'd path.
type vkeyResult struct {
	Req struct {
		Code int `json:"code"`
		Data struct {
			SIP []string `json:"sip"`
		} `json:"data"`
	} `json:"req"`
	Req0 struct {
		Code int `json:"code"`
		Data struct {
			MidURLInfo []struct {
				PURL string `json:"purl"`
			} `json:"midurlinfo"`
		} `json:"data"`
	} `json:"req_0"`
}

const errMsgSongNotExist = "歌曲信息暂未被收录或查询失败"
const errMsgAlbumMissing = "专辑信息暂未被收录或查询失败"
const errMsgPlaylistMissing = "歌单信息暂未被收录或查询失败"
const errMsgLyricMissing = "歌词信息暂未被收录或查询失败"
const errMsgNetworkError = "网络错误，请检查网络链接"
