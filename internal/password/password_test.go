// internal/password/password_test.go
//
// Unit-tests for argon2id hashing and verification.
//
// Run: go test ./internal/password -v

package password

import (
	"errors"
	"strings"
	"testing"
)

func TestHashVerify_Roundtrip(t *testing.T) {
	hash, err := Hash("wonder-word-532")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash shape: %q", hash)
	}

	ok, err := Verify(hash, "wonder-word-532")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	hash, err := Hash("wonder-word-532")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := Verify(hash, "wonder-word-533")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	h1, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same input are identical; salt missing")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=2$notbase64!!$alsobad!!",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$a2V5", // wrong variant
		"$argon2id$v=19$m=65536,t=3$c2FsdA$a2V5",    // missing p
	}
	for _, c := range cases {
		if _, err := Verify(c, "whatever"); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("Verify(%q) err = %v, want ErrMalformedHash", c, err)
		}
	}
}
