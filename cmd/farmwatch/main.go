// Package main provides the farmwatch CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "farmwatch",
		Short: "Farmer distress scoring for poultry procurement",
		Long: `Farmwatch scores poultry farms on inventory, sales, financial,
production, and market-access signals, ranks farmers by distress, and
recommends procurement order allocations.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newRankCmd(),
		newFarmCmd(),
		newRecommendCmd(),
		newSummaryCmd(),
		newRecalcCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
