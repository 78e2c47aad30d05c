package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medishare-cli/api"
)

var (
	reshareOwner        string
	reshareOffset       uint64
	reshareDestKey      string
	reshareDestNonce    string
	reshareCallerKey    string
	reshareCallerNonce  string
	reshareRole         string
	reshareTokenAccount string
)

var reshareCmd = &cobra.Command{
	Use:   "reshare",
	Short: "Re-share operations (submit, roles)",
}

var reshareSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Queue a confidential re-share of a stored record",
	Long: `Queue a confidential re-share of a stored record.

Usage:
  medishare reshare submit --owner=<ownerId> --offset=<n> [flags]

Flags:
  --owner          (required) Owner ID of the stored record (hex)
  --offset         (required) Computation offset, unique per re-share
  --dest-key       (required) Destination x25519 public key (hex)
  --dest-nonce     (required) Destination nonce (hex, 16 bytes)
  --caller-key     (required) Caller x25519 public key (hex)
  --caller-nonce   (required) Caller nonce (hex, 16 bytes)
  --role           Submit through a role-gated endpoint (e.g. doctor)
  --token-account  Credential token account (hex, required with --role)

Role-gated submissions also need a provider token in MEDISHARE_CLI_PROVIDER_TOKEN.
Without --role, the JWT in MEDISHARE_CLI_JWT must carry the owner ID as its
subject (the node API key is the unscoped operator credential).
Generate exchange keys and nonces with 'medishare keygen --type exchange'.

Examples:
  # Owner's own re-share
  medishare reshare submit --owner=ab12... --offset=7 \
    --dest-key=... --dest-nonce=... --caller-key=... --caller-nonce=...

  # Credentialed re-share through the doctor endpoint
  medishare reshare submit --owner=ab12... --offset=8 --role=doctor \
    --token-account=cd34... \
    --dest-key=... --dest-nonce=... --caller-key=... --caller-nonce=...

Troubleshooting:
- 409 means the computation offset was already used; pick a fresh one.
- 403 means the credential checks failed (wrong owner, kind, or zero balance).
- 422 means the credential mint is malformed (non-zero decimals).
`,
	Run: func(cmd *cobra.Command, args []string) {
		if reshareOwner == "" || reshareOffset == 0 {
			fmt.Println("Error: --owner and --offset are required.")
			cmd.Usage()
			os.Exit(1)
		}
		if reshareDestKey == "" || reshareDestNonce == "" || reshareCallerKey == "" || reshareCallerNonce == "" {
			fmt.Println("Error: --dest-key, --dest-nonce, --caller-key and --caller-nonce are all required.")
			cmd.Usage()
			os.Exit(1)
		}
		if reshareRole != "" && reshareTokenAccount == "" {
			fmt.Println("Error: --token-account is required with --role.")
			os.Exit(1)
		}

		envelope := map[string]interface{}{
			"schemaVersion":     "1",
			"ownerId":           reshareOwner,
			"computationOffset": reshareOffset,
			"destinationKey":    reshareDestKey,
			"destinationNonce":  reshareDestNonce,
			"callerKey":         reshareCallerKey,
			"callerNonce":       reshareCallerNonce,
		}
		if reshareTokenAccount != "" {
			envelope["tokenAccount"] = reshareTokenAccount
		}
		body, err := json.Marshal(envelope)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}

		receipt, err := api.SubmitReShare(reshareRole, body, api.FromEnv())
		if err != nil {
			fmt.Println("Re-share failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Re-share queued: receipt %v (offset %v)\n", receipt["receiptId"], receipt["computationOffset"])
	},
}

var reshareRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the role-gated re-share endpoints the node exposes",
	Run: func(cmd *cobra.Command, args []string) {
		roles, err := api.ListRoles()
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		if len(roles) == 0 {
			fmt.Println("No role-gated endpoints configured.")
			return
		}
		fmt.Println("Role-gated re-share endpoints:")
		for _, role := range roles {
			fmt.Printf("  /api/v1/reshare/%s\n", role)
		}
	},
}

func init() {
	rootCmd.AddCommand(reshareCmd)
	reshareCmd.AddCommand(reshareSubmitCmd)
	reshareCmd.AddCommand(reshareRolesCmd)
	reshareSubmitCmd.Flags().StringVar(&reshareOwner, "owner", "", "Owner ID of the stored record (required)")
	reshareSubmitCmd.Flags().Uint64Var(&reshareOffset, "offset", 0, "Computation offset (required)")
	reshareSubmitCmd.Flags().StringVar(&reshareDestKey, "dest-key", "", "Destination x25519 public key, hex (required)")
	reshareSubmitCmd.Flags().StringVar(&reshareDestNonce, "dest-nonce", "", "Destination nonce, hex (required)")
	reshareSubmitCmd.Flags().StringVar(&reshareCallerKey, "caller-key", "", "Caller x25519 public key, hex (required)")
	reshareSubmitCmd.Flags().StringVar(&reshareCallerNonce, "caller-nonce", "", "Caller nonce, hex (required)")
	reshareSubmitCmd.Flags().StringVar(&reshareRole, "role", "", "Role-gated endpoint to use")
	reshareSubmitCmd.Flags().StringVar(&reshareTokenAccount, "token-account", "", "Credential token account, hex")
}
