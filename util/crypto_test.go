package util

import (
	"encoding/base64"
	"testing"

	"github.com/tj/assert"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	raw, dErr := base64.StdEncoding.DecodeString(hash)
	if dErr != nil {
		t.Fatal(dErr)
	}
	if len(raw) != saltLen+scryptKeyLen {
		t.Fatal("unexpected hash length")
	}

	// fresh salt every time
	hash2, _ := HashPassword("s3cret")
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not base64!!", "s3cret"))
	assert.False(t, VerifyPassword(base64.StdEncoding.EncodeToString([]byte("short")), "s3cret"))
}
