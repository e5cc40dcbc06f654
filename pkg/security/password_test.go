package security_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/drytrack/drytrack-backend/pkg/config"
	"github.com/drytrack/drytrack-backend/pkg/security"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

func testHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("very-secure-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty string")
	}
	if h.NeedsRehash(hash) {
		t.Fatal("fresh argon2id hash should not need rehash")
	}

	ok, err := h.Verify("very-secure-password", hash)
	if err != nil {
		t.Fatalf("Verify returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("Verify failed for the correct password")
	}

	ok, err = h.Verify("bogus-password", hash)
	if err != nil {
		t.Fatalf("Verify returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("Verify returned true for incorrect password")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := testHasher().Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := testHasher().Verify("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestVerifyLegacyPBKDF2(t *testing.T) {
	digest := pbkdf2.Key([]byte("palay2024"), []byte("somesalt"), 1000, 32, sha256.New)
	encoded := "pbkdf2:sha256:1000$somesalt$" + hex.EncodeToString(digest)

	h := testHasher()
	ok, err := h.Verify("palay2024", encoded)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected legacy pbkdf2 hash to verify")
	}
	if ok, _ := h.Verify("wrong", encoded); ok {
		t.Fatal("expected wrong password to fail")
	}
	if !h.NeedsRehash(encoded) {
		t.Fatal("legacy hash should need rehash")
	}
}

func TestVerifyLegacyScrypt(t *testing.T) {
	digest, err := scrypt.Key([]byte("palay2024"), []byte("salty"), 1024, 8, 1, 64)
	if err != nil {
		t.Fatalf("scrypt: %v", err)
	}
	encoded := "scrypt:1024:8:1$salty$" + hex.EncodeToString(digest)

	ok, err := testHasher().Verify("palay2024", encoded)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected legacy scrypt hash to verify")
	}
}
