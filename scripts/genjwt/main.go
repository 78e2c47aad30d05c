package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"medishare/types/ids"
)

// Mints a provider identity token (RS256) for dev and testing. Nodes
// verify these against the public key at MEDISHARE_PROVIDER_PUBKEY_PATH.
func main() {
	if len(os.Args) < 3 {
		log.Fatalf("Usage: %s <provider_private.pem> <provider-id-hex> [role,role,...]", os.Args[0])
	}
	privPath := os.Args[1]
	providerID := os.Args[2]
	if _, err := ids.FromString(providerID); err != nil {
		log.Fatalf("provider-id must be a 64-char hex identity: %v", err)
	}
	roles := []string{"doctor"}
	if len(os.Args) > 3 {
		roles = strings.Split(os.Args[3], ",")
	}

	privPem, err := os.ReadFile(privPath)
	if err != nil {
		log.Fatal(err)
	}
	block, _ := pem.Decode(privPem)
	if block == nil {
		log.Fatalf("Failed to decode PEM block from %s", privPath)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		log.Fatal(err)
	}
	privKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		log.Fatal("Not an RSA private key")
	}

	claims := jwt.MapClaims{
		"sub":   providerID,
		"org":   "dev",
		"roles": roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "provider-issuer"
	signed, err := token.SignedString(privKey)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("JWT:", signed)
}
