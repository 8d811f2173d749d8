package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the stockfeed CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockfeed version %s\n", version)
		fmt.Println("A near-real-time stock price resolution and broadcast service")
		fmt.Println("https://github.com/rustyeddy/stockfeed")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
