package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/curve25519"
)

var (
	keygenType string
	keygenOut  string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate owner signing keys or x25519 exchange keys",
	Long: `Generate key material for working with a MediShare node.

Key types:
  owner     ed25519 signing keypair. The owner ID (SHA-256 of the public key)
            is what records are stored under; the private key signs store
            envelopes.
  exchange  x25519 keypair for re-share key exchange. The public key and a
            fresh nonce go into the reshare envelope as destinationKey and
            destinationNonce (or callerKey/callerNonce).

Examples:
  medishare keygen --type owner --out owner.key
  medishare keygen --type exchange
`,
	Run: func(cmd *cobra.Command, args []string) {
		switch keygenType {
		case "owner":
			generateOwnerKey()
		case "exchange":
			generateExchangeKey()
		default:
			fmt.Printf("Unknown key type %q. Use --type owner or --type exchange.\n", keygenType)
			os.Exit(1)
		}
	},
}

func generateOwnerKey() {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		fmt.Printf("Error generating key: %v\n", err)
		os.Exit(1)
	}
	key := ownerKeyFile{
		OwnerID:    hex.EncodeToString(sha256Sum(pub)),
		PublicKey:  base64.StdEncoding.EncodeToString(pub),
		PrivateKey: base64.StdEncoding.EncodeToString(priv),
	}
	jsonBytes, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding key: %v\n", err)
		os.Exit(1)
	}
	if keygenOut != "" {
		if err := os.WriteFile(keygenOut, jsonBytes, 0600); err != nil {
			fmt.Printf("Error writing key file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Owner key written to %s\n", keygenOut)
		fmt.Printf("Owner ID: %s\n", key.OwnerID)
		return
	}
	fmt.Println(string(jsonBytes))
}

func generateExchangeKey() {
	var priv [32]byte
	if _, err := rand.Read(priv[:]); err != nil {
		fmt.Printf("Error generating key: %v\n", err)
		os.Exit(1)
	}
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		fmt.Printf("Error deriving public key: %v\n", err)
		os.Exit(1)
	}
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		fmt.Printf("Error generating nonce: %v\n", err)
		os.Exit(1)
	}

	out := map[string]string{
		"publicKey":  hex.EncodeToString(pub),
		"privateKey": hex.EncodeToString(priv[:]),
		"nonce":      hex.EncodeToString(nonce[:]),
	}
	jsonBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding key: %v\n", err)
		os.Exit(1)
	}
	if keygenOut != "" {
		if err := os.WriteFile(keygenOut, jsonBytes, 0600); err != nil {
			fmt.Printf("Error writing key file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exchange key written to %s\n", keygenOut)
		return
	}
	fmt.Println(string(jsonBytes))
}

func sha256Sum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVar(&keygenType, "type", "owner", "Key type: owner|exchange")
	keygenCmd.Flags().StringVar(&keygenOut, "out", "", "Write the key to a file instead of stdout")
}
