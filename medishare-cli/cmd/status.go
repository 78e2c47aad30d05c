package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medishare-cli/api"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query node status and health",
	Example: `  medishare status
  medishare status --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		status, err := api.GetStatus()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if output == "json" {
			fmt.Println(status.ToJSON())
		} else {
			fmt.Printf("Status: %s\nRecords: %d\nQueued Jobs: %d\nVersion: %s\n", status.Status, status.RecordCount, status.QueuedJobs, status.Version)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("output", "o", "plain", "Output format: plain|json")
}
