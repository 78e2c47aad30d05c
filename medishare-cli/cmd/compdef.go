package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medishare-cli/api"
)

var compdefCmd = &cobra.Command{
	Use:   "compdef",
	Short: "Computation definition operations",
}

var compdefInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Register the re-share computation definition with the engine",
	Run: func(cmd *cobra.Command, args []string) {
		receipt, err := api.InitCompDef(api.FromEnv())
		if err != nil {
			fmt.Println("Definition registration failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Definition %v registered (status: %v)\n", receipt["definition"], receipt["status"])
	},
}

func init() {
	rootCmd.AddCommand(compdefCmd)
	compdefCmd.AddCommand(compdefInitCmd)
}
