package crypto

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	enc, err := NewEncryptor("test-secret")
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}

	plaintext := "olm_abc123-secret-token"
	sealed, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if sealed == plaintext {
		t.Fatal("Encrypt() returned plaintext")
	}
	if !strings.Contains(sealed, ":") {
		t.Errorf("Encrypt() output missing nonce separator: %s", sealed)
	}

	got, err := enc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != plaintext {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestEncryptNonceUnique(t *testing.T) {
	enc, _ := NewEncryptor("test-secret")
	a, _ := enc.Encrypt("same input")
	b, _ := enc.Encrypt("same input")
	if a == b {
		t.Error("two encryptions of the same input produced identical output")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	enc1, _ := NewEncryptor("key-one")
	enc2, _ := NewEncryptor("key-two")

	sealed, _ := enc1.Encrypt("secret")
	if _, err := enc2.Decrypt(sealed); err == nil {
		t.Error("Decrypt() with wrong key should fail")
	}
}

func TestDecryptInvalidFormat(t *testing.T) {
	enc, _ := NewEncryptor("test-secret")
	for _, in := range []string{"", "nocolon", "zz:zz", "abcd"} {
		if _, err := enc.Decrypt(in); err == nil {
			t.Errorf("Decrypt(%q) should fail", in)
		}
	}
}

func TestDisabledEncryptor(t *testing.T) {
	enc, err := NewEncryptor("")
	if err != nil {
		t.Fatalf("NewEncryptor(\"\") error = %v", err)
	}
	if enc.Enabled() {
		t.Error("empty secret should disable the encryptor")
	}
	if _, err := enc.Encrypt("x"); err != ErrKeyMissing {
		t.Errorf("Encrypt() error = %v, want ErrKeyMissing", err)
	}
	if _, err := enc.Decrypt("a:b"); err != ErrKeyMissing {
		t.Errorf("Decrypt() error = %v, want ErrKeyMissing", err)
	}
}
