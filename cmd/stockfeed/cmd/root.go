package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stockfeed",
	Short: "A near-real-time stock price resolution and broadcast service",
	Long: `Stockfeed resolves latest prices for ticker symbols and streams
periodic updates to subscribed websocket clients.

It provides:
  - A layered quote lookup: local cache, price history, upstream API
  - An append-only SQLite price history
  - A periodic broadcast loop pushing updates per subscribed ticker
  - A websocket gateway with per-ticker topics
  - CSV export of stored price history

Complete documentation is available at https://github.com/rustyeddy/stockfeed`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
