package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medishare-cli/api"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect computation offsets still tracked as in flight",
	Run: func(cmd *cobra.Command, args []string) {
		jobs, err := api.InspectJobs()
		if err != nil {
			fmt.Println("Failed to fetch jobs:", err)
			os.Exit(1)
		}
		output, _ := cmd.Flags().GetString("output")
		if output == "json" {
			b, _ := json.MarshalIndent(jobs, "", "  ")
			fmt.Println(string(b))
		} else {
			fmt.Printf("%d computation(s) in flight:\n", len(jobs))
			for i, offset := range jobs {
				fmt.Printf("%d. offset %d\n", i+1, offset)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.Flags().StringP("output", "o", "plain", "Output format: plain|json")
}
