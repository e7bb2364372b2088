package netease

import (
	"strings"
	"testing"
)

func TestAESEncodeEmptyPayloadIsDeterministic(t *testing.T) {
	got, err := aesEncode("", nonce)
	if err != nil {
		t.Fatalf("aesEncode: %v", err)
	}
	const want = "1xTJV2ZGPuPADQZntVnwzA=="
	if got != want {
		t.Errorf("aesEncode(\"\", nonce) = %q, want %q", got, want)
	}
}

func TestPrepareParamsDoubleWrap(t *testing.T) {
	secret := strings.Repeat("a", 16)
	form, err := prepareParams("", secret, "ignored-enc-sec-key")
	if err != nil {
		t.Fatalf("prepareParams: %v", err)
	}
	// Stage one encrypts the payload with the fixed nonce; stage two
	// encrypts stage one's base64 with the session secret.
	const want = "d8MmdpnQHlRkJrLFtkj8hVa0wO+32n8xhlKpO2ZVqX0="
	if form["params"] != want {
		t.Errorf("params = %q, want %q", form["params"], want)
	}
	if form["encSecKey"] != "ignored-enc-sec-key" {
		t.Errorf("encSecKey = %q, want pass-through", form["encSecKey"])
	}
}

func TestRSAEncodePinnedVector(t *testing.T) {
	got, err := rsaEncode(strings.Repeat("a", 16))
	if err != nil {
		t.Fatalf("rsaEncode: %v", err)
	}
	const want = "d473b9eca232f1b4090dd606b0df86de318748dd2eec307e4ed4345030fc4ee30331e598f41d5a6f5befaab94630ea1a1eda7cfade84fbec1a907913d2e4d2c8744bc572b99a050075e075b4537f645ecfa994f95906c32818e076aeda6bdb906bfa0bb96c4cf4bc3ed6d9ab76cf08441153d9d85e1ea3d78fa8d9210d581cee"
	if got != want {
		t.Errorf("rsaEncode = %q, want %q", got, want)
	}
}

func TestRSAEncodeAlways256HexChars(t *testing.T) {
	for _, secret := range []string{"0000000000000000", "zzzzzzzzzzzzzzzz", strings.Repeat("A", 16)} {
		got, err := rsaEncode(secret)
		if err != nil {
			t.Fatalf("rsaEncode(%q): %v", secret, err)
		}
		if len(got) != 256 {
			t.Errorf("rsaEncode(%q) length = %d, want 256", secret, len(got))
		}
	}
}

func TestCreateSecretKeyShapeAndUniqueness(t *testing.T) {
	a, err := createSecretKey(16)
	if err != nil {
		t.Fatalf("createSecretKey: %v", err)
	}
	b, err := createSecretKey(16)
	if err != nil {
		t.Fatalf("createSecretKey: %v", err)
	}
	if len(a) != 16 || len(b) != 16 {
		t.Fatalf("secret key lengths = %d, %d, want 16", len(a), len(b))
	}
	for _, r := range a + b {
		if !strings.ContainsRune(secretKeyCharset, r) {
			t.Fatalf("secret key contains %q outside the charset", r)
		}
	}
	if a == b {
		t.Error("two generated secret keys are identical")
	}
}
