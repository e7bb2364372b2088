package tripledes

import (
	"bytes"
	"testing"
)

func TestDecryptECB_PinnedVector(t *testing.T) {
	key := []byte("!@#)(*$%123ZXC!@!@#)(NHL")
	ciphertext := []byte{0x00, 0x36, 0x7F, 0xE8, 0xE5, 0x05, 0x42, 0xAB}
	want := []byte{0x78, 0x9C, 0x45, 0x58, 0xDB, 0x6E, 0x55, 0xD7}

	got, err := DecryptECB(key, ciphertext)
	if err != nil {
		t.Fatalf("DecryptECB: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("DecryptECB(%x) = %x, want %x", ciphertext, got, want)
	}
}

func TestDecryptECB_RejectsShortBlock(t *testing.T) {
	key := []byte("!@#)(*$%123ZXC!@!@#)(NHL")
	if _, err := DecryptECB(key, []byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected error for input not a multiple of the block size")
	}
}

func TestDecryptECB_MultiBlockIndependence(t *testing.T) {
	// Each 8-byte block is decrypted independently (no CBC chaining), so
	// decrypting the same block twice in a row must reproduce the single-
	// block result in both halves.
	key := []byte("!@#)(*$%123ZXC!@!@#)(NHL")
	block := []byte{0x00, 0x36, 0x7F, 0xE8, 0xE5, 0x05, 0x42, 0xAB}
	doubled := append(append([]byte{}, block...), block...)

	got, err := DecryptECB(key, doubled)
	if err != nil {
		t.Fatalf("DecryptECB: %v", err)
	}
	if !bytes.Equal(got[:8], got[8:]) {
		t.Fatalf("expected identical halves, got %x and %x", got[:8], got[8:])
	}
}
