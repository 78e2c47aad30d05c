package main

import (
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mints an HS256 API token for the node. Pass a record owner ID as the
// subject to scope the token to that owner's re-share path; any other
// subject makes a general service token.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <subject> [secret]", os.Args[0])
	}
	subject := os.Args[1]
	secret := os.Getenv("MEDISHARE_API_JWT_SECRET")
	if len(os.Args) > 2 {
		secret = os.Args[2]
	}
	if secret == "" {
		log.Fatal("MEDISHARE_API_JWT_SECRET not set and no secret argument given")
	}

	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		log.Fatal(err)
	}
	log.Println("JWT:", signed)
}
