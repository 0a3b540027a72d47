package security_test

import (
	"testing"

	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/security"
)

func testHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := testHasher()
	hash, err := h.Hash("very-secure-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	ok, err := h.Verify("very-secure-password", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("bogus-password", hash)
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := testHasher().Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyBadHash(t *testing.T) {
	t.Parallel()

	for _, encoded := range []string{"not-a-hash", "$argon2id$v=19$m=x$a$b", "$bcrypt$v=19$m=1,t=1,p=1$a$b"} {
		if _, err := testHasher().Verify("irrelevant", encoded); err == nil {
			t.Fatalf("expected error for %q", encoded)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	weak := testHasher()
	hash, err := weak.Hash("pw-123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if weak.NeedsRehash(hash) {
		t.Fatal("same params should not need rehash")
	}
	strong := security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 65536, ArgonTime: 3, ArgonParallelism: 2, ArgonSaltLen: 16, ArgonKeyLen: 32})
	if !strong.NeedsRehash(hash) {
		t.Fatal("stronger params should require rehash")
	}
}
