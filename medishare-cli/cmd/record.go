package cmd

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medishare-cli/api"
)

var (
	recordFile    string
	recordKeyFile string
	recordRegion  bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record operations (store, get)",
}

var recordStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Submit an encrypted record envelope to the node",
	Long: `Submit an encrypted record envelope to the node.

Usage:
  medishare record store --file=<envelope.json> [flags]

Flags:
  --file    (required) Path to the store envelope JSON
  --key     Owner key file (from 'medishare keygen --type owner'). When given,
            the envelope is signed locally before submission.

The envelope must carry schemaVersion, ownerId, ownerPubKey, nonce and exactly
152 base64 field blocks. Without --key the envelope must already contain a
valid owner signature.

Examples:
  # Submit a pre-signed envelope
  medishare record store --file=envelope.json

  # Sign locally and submit
  medishare record store --file=envelope.json --key=owner.key

Troubleshooting:
- 401 Unauthorized means the owner signature does not match ownerId/ownerPubKey.
- 409 means a record already exists for that owner; records are create-only.
`,
	Run: func(cmd *cobra.Command, args []string) {
		if recordFile == "" {
			fmt.Println("Error: --file is required.")
			cmd.Usage()
			os.Exit(1)
		}
		raw, err := os.ReadFile(recordFile)
		if err != nil {
			fmt.Printf("Error reading envelope file: %v\n", err)
			os.Exit(1)
		}
		var envelope map[string]interface{}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			fmt.Printf("Error parsing envelope JSON: %v\n", err)
			os.Exit(1)
		}

		if recordKeyFile != "" {
			if err := signEnvelopeWithKeyFile(envelope, recordKeyFile); err != nil {
				fmt.Printf("Error signing envelope: %v\n", err)
				os.Exit(1)
			}
		}
		if _, ok := envelope["signature"]; !ok {
			fmt.Println("Envelope has no signature. Supply --key to sign locally, or pre-sign the file.")
			os.Exit(1)
		}

		body, err := json.Marshal(envelope)
		if err != nil {
			fmt.Printf("Error encoding envelope: %v\n", err)
			os.Exit(1)
		}
		receipt, err := api.SubmitRecord(body, api.FromEnv())
		if err != nil {
			fmt.Println("Submission failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Record stored for owner %v\n", receipt["ownerId"])
	},
}

var recordGetCmd = &cobra.Command{
	Use:   "get <ownerId>",
	Short: "Fetch a stored record (or its region handle) by owner ID",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ownerID := args[0]
		var (
			out map[string]interface{}
			err error
		)
		if recordRegion {
			out, err = api.GetRecordRegion(ownerID, api.FromEnv())
		} else {
			out, err = api.GetRecord(ownerID, api.FromEnv())
		}
		if err != nil {
			fmt.Println("Lookup failed:", err)
			os.Exit(1)
		}
		jsonBytes, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Printf("Error encoding output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonBytes))
	},
}

// ownerKeyFile matches the format written by 'medishare keygen --type owner'.
type ownerKeyFile struct {
	OwnerID    string `json:"ownerId"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// signEnvelopeWithKeyFile signs the envelope in place the same way the node
// verifies it: the signature covers the JSON encoding of the envelope with
// the signature field removed. It also fills ownerId and ownerPubKey from
// the key so the file only has to carry the payload fields.
func signEnvelopeWithKeyFile(envelope map[string]interface{}, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var key ownerKeyFile
	if err := json.Unmarshal(raw, &key); err != nil {
		return fmt.Errorf("key file is not valid JSON: %v", err)
	}
	privBytes, err := base64.StdEncoding.DecodeString(key.PrivateKey)
	if err != nil {
		return fmt.Errorf("invalid private key encoding: %v", err)
	}
	if len(privBytes) != ed25519.PrivateKeySize {
		return fmt.Errorf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(privBytes)
	pub := priv.Public().(ed25519.PublicKey)

	envelope["ownerPubKey"] = base64.StdEncoding.EncodeToString(pub)
	envelope["ownerId"] = hex.EncodeToString(sha256Sum(pub))

	canonical := make(map[string]interface{}, len(envelope))
	for k, v := range envelope {
		if k == "signature" {
			continue
		}
		canonical[k] = v
	}
	payload, err := json.Marshal(canonical)
	if err != nil {
		return err
	}
	envelope["signature"] = base64.StdEncoding.EncodeToString(ed25519.Sign(priv, payload))
	return nil
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.AddCommand(recordStoreCmd)
	recordCmd.AddCommand(recordGetCmd)
	recordStoreCmd.Flags().StringVar(&recordFile, "file", "", "Path to the store envelope JSON (required)")
	recordStoreCmd.Flags().StringVar(&recordKeyFile, "key", "", "Owner key file for local signing")
	recordGetCmd.Flags().BoolVar(&recordRegion, "region", false, "Return the region handle instead of domain views")
}
