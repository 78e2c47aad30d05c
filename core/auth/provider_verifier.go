package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"medishare/core/audit"
	"medishare/types/ids"
)

// ProviderClaims are the claims carried by a healthcare-provider
// identity token. Sub is the provider's 32-byte identity in hex.
type ProviderClaims struct {
	Sub    string   `json:"sub"`
	Org    string   `json:"org"`
	Roles  []string `json:"roles"`
	Reason string   `json:"reason"`
	jwt.RegisteredClaims
}

// ProviderVerifier validates provider identity tokens (RS256, key
// selected by kid header).
type ProviderVerifier struct {
	KeyProvider KeyProvider
	Audit       audit.AuditLogger
}

// VerifyProviderToken parses and validates a provider token, returning
// the claims and the provider's identity.
func (v *ProviderVerifier) VerifyProviderToken(tokenString string) (*ProviderClaims, ids.ID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ProviderClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		return v.KeyProvider.GetPublicKey(kid)
	})
	if err != nil {
		v.logVerdict("", "failure", err.Error())
		return nil, ids.Empty, err
	}
	claims, ok := token.Claims.(*ProviderClaims)
	if !ok || !token.Valid {
		v.logVerdict("", "failure", "invalid provider token or claims")
		return nil, ids.Empty, errors.New("invalid provider token or claims")
	}
	provider, err := ids.FromString(claims.Sub)
	if err != nil {
		v.logVerdict(claims.Sub, "failure", "sub is not a 32-byte identity")
		return nil, ids.Empty, fmt.Errorf("provider token sub is not a valid identity: %v", err)
	}
	v.logVerdict(claims.Sub, "success", "provider token verified")
	return claims, provider, nil
}

func (v *ProviderVerifier) logVerdict(entity, result, reason string) {
	if v.Audit == nil {
		return
	}
	v.Audit.LogEvent(audit.NewEvent("ProviderTokenVerification", entity, result, reason, nil))
}
