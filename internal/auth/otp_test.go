package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestOTPStore(t *testing.T, ttl time.Duration) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewOTPStore(client, ttl), mr
}

func TestOTPGenerateAndVerify(t *testing.T) {
	store, _ := newTestOTPStore(t, 10*time.Minute)
	ctx := context.Background()

	code, err := store.Generate(ctx, PurposeVerify, "anshul@student.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	ok, err := store.Verify(ctx, PurposeVerify, "anshul@student.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("fresh code must verify")
	}

	// The code is consumed on first success.
	ok, err = store.Verify(ctx, PurposeVerify, "anshul@student.com", code)
	if err != nil {
		t.Fatalf("replay verify: %v", err)
	}
	if ok {
		t.Fatalf("code must not be replayable")
	}
}

func TestOTPWrongCode(t *testing.T) {
	store, _ := newTestOTPStore(t, 10*time.Minute)
	ctx := context.Background()

	code, err := store.Generate(ctx, PurposeVerify, "anshul@student.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ok, err := store.Verify(ctx, PurposeVerify, "anshul@student.com", "000000")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok && code != "000000" {
		t.Fatalf("wrong code must not verify")
	}

	// A mismatch does not consume the stored code.
	ok, err = store.Verify(ctx, PurposeVerify, "anshul@student.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("correct code must still verify after a mismatch")
	}
}

func TestOTPPurposesAreIsolated(t *testing.T) {
	store, _ := newTestOTPStore(t, 10*time.Minute)
	ctx := context.Background()

	code, err := store.Generate(ctx, PurposeReset, "anshul@student.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ok, err := store.Verify(ctx, PurposeVerify, "anshul@student.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("a reset code must not pass verification for the verify purpose")
	}
}

func TestOTPExpiry(t *testing.T) {
	store, mr := newTestOTPStore(t, time.Minute)
	ctx := context.Background()

	code, err := store.Generate(ctx, PurposeVerify, "anshul@student.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	ok, err := store.Verify(ctx, PurposeVerify, "anshul@student.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("expired code must not verify")
	}
}

func TestOTPRegenerateReplaces(t *testing.T) {
	store, _ := newTestOTPStore(t, 10*time.Minute)
	ctx := context.Background()

	first, err := store.Generate(ctx, PurposeVerify, "anshul@student.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := store.Generate(ctx, PurposeVerify, "anshul@student.com")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	if first != second {
		ok, err := store.Verify(ctx, PurposeVerify, "anshul@student.com", first)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatalf("a replaced code must not verify")
		}
	}

	ok, err := store.Verify(ctx, PurposeVerify, "anshul@student.com", second)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("latest code must verify")
	}
}
