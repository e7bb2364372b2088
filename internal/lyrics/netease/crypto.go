package netease

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// nonce is the weapi's fixed first-pass AES key, and iv its fixed CBC
// initialization vector — both constants in the upstream web client.
const (
	nonce = "0CoJUm6Qyw8W8jud"
	iv    = "0102030405060708"
)

// modulusHex and exponentHex are the weapi's hardcoded RSA-like public
// key, shared by every NetEase web client.
const (
	modulusHex  = "00e0b509f6259df8642dbc35662901477df22677ec152b5ff68ace615bb7b725152b3ab17a876aea8a5aa76d2e417629ec4ee341f56135fccf695280104e0312ecbda92557c93870114af6c9d05c4f7f0c3685b7a46bee255932575cce10b424d813cfe4875d3e82047b97ddef52741d546b8e289dc6935b3ece0462db0a22b8e7"
	exponentHex = "010001"
)

const secretKeyCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// createSecretKey returns a random alphanumeric string of the given length,
// used as the per-request AES key.
func createSecretKey(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret key: %w", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = secretKeyCharset[int(b)%len(secretKeyCharset)]
	}
	return string(out), nil
}

// aesEncode runs AES-128-CBC+PKCS7 over plaintext with the given secret
// used as the key, returning base64 ciphertext. Applied twice in prepare:
// once with the fixed nonce, once with the per-request secret key.
func aesEncode(plaintext, secret string) (string, error) {
	block, err := aes.NewCipher([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("aes new cipher: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), block.BlockSize())
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, []byte(iv))
	mode.CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// rsaEncode reproduces the weapi's non-standard "RSA" sec-key derivation:
// reverse the secret key's characters, hex-encode, then raise to the
// public exponent mod the fixed modulus via textbook modpow (no padding
// scheme — this is deliberately not real RSA encryption), left-padded hex
// to 256 characters.
func rsaEncode(secretKey string) (string, error) {
	reversed := reverseString(secretKey)
	hexStr := hex.EncodeToString([]byte(reversed))

	a, ok := new(big.Int).SetString(hexStr, 16)
	if !ok {
		return "", fmt.Errorf("parse reversed secret as hex")
	}
	e, ok := new(big.Int).SetString(exponentHex, 16)
	if !ok {
		return "", fmt.Errorf("parse exponent")
	}
	n, ok := new(big.Int).SetString(modulusHex, 16)
	if !ok {
		return "", fmt.Errorf("parse modulus")
	}

	result := new(big.Int).Exp(a, e, n)
	key := result.Text(16)
	switch {
	case len(key) < 256:
		key = zeroPadLeft(key, 256)
	case len(key) > 256:
		key = key[len(key)-256:]
	}
	return key, nil
}

func zeroPadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	out := make([]byte, width)
	pad := width - len(s)
	for i := 0; i < pad; i++ {
		out[i] = '0'
	}
	copy(out[pad:], s)
	return string(out)
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// prepareParams builds the params/encSecKey form fields the weapi expects
// for any POST body.
func prepareParams(raw, secretKey, encSecKey string) (map[string]string, error) {
	first, err := aesEncode(raw, nonce)
	if err != nil {
		return nil, err
	}
	second, err := aesEncode(first, secretKey)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"params":    second,
		"encSecKey": encSecKey,
	}, nil
}
