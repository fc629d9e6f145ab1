package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the smcbt CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("smcbt version %s\n", version)
		fmt.Println("A market-structure strategy backtester for forex and metals")
		fmt.Println("https://github.com/rustyeddy/smcbt")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
