package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"medishare/core/audit"
	"medishare/types/ids"
)

func signedProviderToken(t *testing.T, key *rsa.PrivateKey, sub string, expired bool) string {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}
	claims := ProviderClaims{
		Sub:   sub,
		Org:   "mercy-general",
		Roles: []string{"doctor"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "medishare-idp",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestVerifyProviderToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	verifier := &ProviderVerifier{
		KeyProvider: &StaticKeyProvider{PublicKey: &key.PublicKey},
		Audit:       audit.NopAuditLogger{},
	}

	providerID := ids.IDFromString("provider-42")
	claims, id, err := verifier.VerifyProviderToken(signedProviderToken(t, key, providerID.String(), false))
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if id != providerID {
		t.Errorf("identity = %s, want %s", id.Short(), providerID.Short())
	}
	if claims.Org != "mercy-general" {
		t.Errorf("org = %q", claims.Org)
	}
}

func TestVerifyProviderTokenFailures(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	otherKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	verifier := &ProviderVerifier{
		KeyProvider: &StaticKeyProvider{PublicKey: &key.PublicKey},
		Audit:       audit.NopAuditLogger{},
	}
	providerID := ids.IDFromString("provider-42")

	if _, _, err := verifier.VerifyProviderToken(signedProviderToken(t, key, providerID.String(), true)); err == nil {
		t.Error("expected error for expired token")
	}
	if _, _, err := verifier.VerifyProviderToken(signedProviderToken(t, otherKey, providerID.String(), false)); err == nil {
		t.Error("expected error for wrong signing key")
	}
	if _, _, err := verifier.VerifyProviderToken(signedProviderToken(t, key, "not-an-identity", false)); err == nil {
		t.Error("expected error for malformed sub")
	}
	if _, _, err := verifier.VerifyProviderToken("garbage.token.here"); err == nil {
		t.Error("expected error for garbage token")
	}
}
