package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

func newFarmCmd() *cobra.Command {
	var (
		server    string
		apiKey    string
		refresh   bool
		history   bool
		days      int
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "farm <farm-id>",
		Short: "Show one farm's distress assessment or trend history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			farmID := args[0]
			c := newClient(server, apiKey)

			if history {
				query := url.Values{}
				if days > 0 {
					query.Set("days", strconv.Itoa(days))
				}
				var resp struct {
					FarmID  string                  `json:"farm_id"`
					Count   int                     `json:"count"`
					History []distress.HistoryEntry `json:"history"`
				}
				if err := c.get(cmd.Context(), "/api/v1/farms/"+farmID+"/distress/history", query, &resp); err != nil {
					return err
				}
				if outputFmt == "json" {
					return printJSON(resp)
				}
				fmt.Printf("%d calculations for %s\n", resp.Count, resp.FarmID)
				for _, e := range resp.History {
					fmt.Printf("  %s  %5.1f  %-8s  %s\n",
						e.CalculatedAt.Format("2006-01-02 15:04"), e.Score, e.Level, e.CalculatedBy)
				}
				return nil
			}

			query := url.Values{}
			if refresh {
				query.Set("refresh", "true")
			}
			var a distress.Assessment
			if err := c.get(cmd.Context(), "/api/v1/farms/"+farmID+"/distress", query, &a); err != nil {
				return err
			}
			if outputFmt == "json" {
				return printJSON(a)
			}
			renderAssessment(&a)
			return nil
		},
	}

	addServerFlags(cmd, &server, &apiKey)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Force a fresh calculation")
	cmd.Flags().BoolVar(&history, "history", false, "Show trend history instead of the current assessment")
	cmd.Flags().IntVar(&days, "days", 0, "History window in days (default 90)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func renderAssessment(a *distress.Assessment) {
	fmt.Printf("%s (%s, %s)\n", a.FarmName, a.Region, a.District)
	fmt.Printf("Distress: %.1f %s\n\n", a.Score, a.Level)

	for _, factor := range []distress.Factor{
		distress.FactorInventoryStagnation,
		distress.FactorSalesPerformance,
		distress.FactorFinancialStress,
		distress.FactorProductionIssues,
		distress.FactorMarketAccess,
	} {
		if b, ok := a.Breakdown[factor]; ok {
			fmt.Printf("  %-22s %3d x %4.1f%% = %5.2f\n", factor, b.Score, b.Weight, b.Contribution)
		}
	}
	if len(a.Factors) > 0 {
		fmt.Println("\nMaterial factors:")
		for _, f := range a.Factors {
			fmt.Printf("  %-22s %3d  %s\n", f.Factor, f.Score, f.Detail)
		}
	}

	fmt.Printf("\nAvailable birds: %d", a.Capacity.AvailableBirds)
	if a.Capacity.AverageWeightKg != nil {
		fmt.Printf(" (avg %.1f kg)", *a.Capacity.AverageWeightKg)
	}
	fmt.Println()
	if a.Sales.DaysSinceLastSale != nil {
		fmt.Printf("Last sale: %d days ago\n", *a.Sales.DaysSinceLastSale)
	} else {
		fmt.Println("Last sale: never")
	}
	fmt.Printf("Sales 30d/90d: GHS %.2f / %.2f\n", a.Sales.Total30d, a.Sales.Total90d)
	fmt.Printf("Completed assignments: %d (GHS %.2f)\n", a.Procurement.CompletedCount, a.Procurement.TotalValue)
}
