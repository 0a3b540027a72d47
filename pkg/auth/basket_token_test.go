package auth

import (
	"strings"
	"testing"
	"time"
)

func TestBasketTokenRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewBasketTokenCodec("basket-secret", "homeshop", time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := codec.Sign(42, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	id, ok := codec.Verify(token)
	if !ok || id != 42 {
		t.Fatalf("expected basket 42, got %d ok=%v", id, ok)
	}
}

func TestBasketTokenRejectsTampering(t *testing.T) {
	t.Parallel()

	codec, err := NewBasketTokenCodec("basket-secret", "homeshop", time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := codec.Sign(7, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other, _ := NewBasketTokenCodec("other-secret", "homeshop", time.Hour)
	cases := map[string]struct {
		codec *BasketTokenCodec
		token string
	}{
		"empty":         {codec: codec, token: ""},
		"garbage":       {codec: codec, token: "not-a-token"},
		"bad signature": {codec: codec, token: token[:strings.LastIndex(token, ".")+1] + "AAAA"},
		"different key": {codec: other, token: token},
		"raw basket id": {codec: codec, token: "7"},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if id, ok := tc.codec.Verify(tc.token); ok {
				t.Fatalf("expected rejection, got basket %d", id)
			}
		})
	}
}

func TestBasketTokenExpired(t *testing.T) {
	t.Parallel()

	codec, err := NewBasketTokenCodec("basket-secret", "", time.Minute)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := codec.Sign(9, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, ok := codec.Verify(token); ok {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestNewBasketTokenCodecValidates(t *testing.T) {
	t.Parallel()

	if _, err := NewBasketTokenCodec("", "x", time.Hour); err == nil {
		t.Fatal("expected secret error")
	}
	if _, err := NewBasketTokenCodec("s", "x", 0); err == nil {
		t.Fatal("expected lifetime error")
	}
}
