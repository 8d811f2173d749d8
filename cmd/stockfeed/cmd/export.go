package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockfeed/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a ticker's price history to CSV",
	Long: `Write the stored price history for one ticker to a CSV file,
most recent record first.

Example:
  stockfeed export -d stockfeed.db -t AAPL -o aapl.csv`,
	RunE: runExport,
}

var (
	exportDBPath string
	exportTicker string
	exportOutput string
	exportLimit  int
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportDBPath, "db", "d", "", "path to the price database (required)")
	exportCmd.Flags().StringVarP(&exportTicker, "ticker", "t", "", "ticker symbol (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output CSV path (default stdout)")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 1000, "maximum records to export")
	exportCmd.MarkFlagRequired("db")
	exportCmd.MarkFlagRequired("ticker")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := store.NewSQLite(exportDBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	n, err := store.ExportCSV(cmd.Context(), db, exportTicker, exportLimit, out)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if exportOutput != "" {
		fmt.Printf("✓ Exported %d records for %s to %s\n", n, exportTicker, exportOutput)
	}
	return nil
}
