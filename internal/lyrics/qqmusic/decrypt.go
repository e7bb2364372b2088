package qqmusic

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/phreer/music-station/internal/crypto/tripledes"
)

// qqKey is QQ Music's fixed Triple-DES key for QRC lyric payloads.
var qqKey = []byte("!@#)(*$%123ZXC!@!@#)(NHL")

// decryptLyrics hex-decodes, Triple-DES-decrypts (8-byte blocks,
// independently, no chaining), zlib-inflates, and UTF-8 decodes an
// encrypted QRC lyric blob.
func decryptLyrics(encryptedHex string) (string, error) {
	raw, err := hex.DecodeString(encryptedHex)
	if err != nil {
		return "", fmt.Errorf("hex decode lyric payload: %w", err)
	}

	plain, err := tripledes.DecryptECB(qqKey, raw)
	if err != nil {
		return "", fmt.Errorf("triple-des decrypt lyric payload: %w", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(plain))
	if err != nil {
		return "", fmt.Errorf("zlib header: %w", err)
	}
	defer zr.Close()

	inflated, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("zlib inflate: %w", err)
	}

	return string(inflated), nil
}

// qrcXML is the wrapper some QRC payloads decode to: <?xml ...?><QrcInfos>
// <Lyric_1 LyricContent="..."/></QrcInfos>.
type qrcXML struct {
	XMLName xml.Name `xml:"QrcInfos"`
	Lyric1  struct {
		LyricContent string `xml:"LyricContent,attr"`
	} `xml:"Lyric_1"`
}

// unwrapQRC extracts the LyricContent attribute when the decrypted text is
// itself an XML document, otherwise returns it unchanged. Some songs come
// back as a bare QRC body, others inside this nested envelope.
func unwrapQRC(decrypted string) string {
	trimmed := strings.TrimSpace(decrypted)
	if !strings.HasPrefix(trimmed, "<?xml") {
		return decrypted
	}
	var doc qrcXML
	if err := xml.Unmarshal([]byte(trimmed), &doc); err != nil {
		return decrypted
	}
	if doc.Lyric1.LyricContent == "" {
		return decrypted
	}
	return doc.Lyric1.LyricContent
}

// extractContentTag parses the lyric_download.fcg response for a single
// top-level tag (content/contentts/contentroma), tolerating attributes,
// whitespace, and CDATA sections.
func extractContentTag(body []byte, tag string) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != tag {
			continue
		}
		var text strings.Builder
		for {
			inner, err := decoder.Token()
			if err != nil {
				return "", false
			}
			switch t := inner.(type) {
			case xml.CharData:
				text.Write(t)
			case xml.EndElement:
				if t.Name.Local == tag {
					return text.String(), true
				}
			}
		}
	}
}

// stripXMLComments removes the `<!--`/`-->` markers lyric_download.fcg
// wraps its body in.
func stripXMLComments(s string) string {
	s = strings.ReplaceAll(s, "<!--", "")
	s = strings.ReplaceAll(s, "-->", "")
	return s
}
