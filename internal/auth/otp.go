package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTP purposes; each purpose keeps its own code per email.
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// OTPStore keeps one-time codes in Redis with a TTL; a code disappears on
// expiry or on first successful verification.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore creates an OTP store.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

// Generate creates a 6-digit code for (purpose, email), replacing any
// previous one, and returns it.
func (s *OTPStore) Generate(ctx context.Context, purpose, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)
	if err := s.client.Set(ctx, otpKey(purpose, email), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Verify checks the submitted code. A match consumes the code so it cannot
// be replayed; a mismatch or an expired code reports false.
func (s *OTPStore) Verify(ctx context.Context, purpose, email, code string) (bool, error) {
	key := otpKey(purpose, email)
	stored, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("load code: %w", err)
	}
	if stored != code {
		return false, nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	return true, nil
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}
