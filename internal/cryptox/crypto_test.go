package cryptox

import (
	"bytes"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	k1, err := DeriveKey([]byte("process-secret"), "totp")
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := DeriveKey([]byte("process-secret"), "totp")
	if len(k1) != 32 || !bytes.Equal(k1, k2) {
		t.Fatalf("expected stable 32-byte key, got %x / %x", k1, k2)
	}

	k3, _ := DeriveKey([]byte("process-secret"), "other")
	if bytes.Equal(k1, k3) {
		t.Error("different info must give different keys")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key, _ := DeriveKey([]byte("s"), "totp")

	sealed, err := Seal([]byte("JBSWY3DPEHPK3PXP"), key)
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	again, _ := Seal([]byte("JBSWY3DPEHPK3PXP"), key)
	if sealed == again {
		t.Error("nonce must differ between calls")
	}

	got, err := Open(sealed, key)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if string(got) != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("unexpected plaintext %q", got)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	key, _ := DeriveKey([]byte("a"), "totp")
	other, _ := DeriveKey([]byte("b"), "totp")

	sealed, _ := Seal([]byte("secret"), key)
	if _, err := Open(sealed, other); err == nil {
		t.Fatal("expected authentication failure")
	}
}

func TestOpen_Malformed(t *testing.T) {
	key, _ := DeriveKey([]byte("a"), "totp")
	for _, in := range []string{"", "!!!", "c2hvcnQ="} {
		if _, err := Open(in, key); err == nil {
			t.Errorf("Open(%q) expected error", in)
		}
	}
}
