package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "sai@example.com", "instructor")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "sai@example.com" || claims.Role != "instructor" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	if _, err := svc.Validate("not-a-token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "sai@example.com", "instructor")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTService("secret-b", 1).Validate(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -1)
	token, err := svc.Generate(uuid.New(), "sai@example.com", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}
