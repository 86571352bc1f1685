package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

func newRecommendCmd() *cobra.Command {
	var (
		server    string
		apiKey    string
		limit     int
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "recommend <order-id>",
		Short: "Recommend farms for a procurement order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var result distress.AllocationResult
			c := newClient(server, apiKey)
			if err := c.get(cmd.Context(), "/api/v1/orders/"+args[0]+"/recommendations", query, &result); err != nil {
				return err
			}

			if outputFmt == "json" {
				return printJSON(result)
			}
			renderRecommendations(&result)
			return nil
		},
	}

	addServerFlags(cmd, &server, &apiKey)
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum recommendations (default 10)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func renderRecommendations(result *distress.AllocationResult) {
	fulfil := "cannot fulfill"
	if result.Summary.CanFulfill {
		fulfil = "can fulfill"
	}
	fmt.Printf("Order %s: %d birds still needed, %d available across %d farms (%s)\n\n",
		result.OrderID, result.RemainingNeed,
		result.Summary.TotalAvailable, result.Summary.TotalFarms, fulfil)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tLEVEL\tFARM\tREGION\tAVAILABLE\tRECOMMENDED")
	for _, rec := range result.Recommendations {
		region := rec.Region
		if rec.RegionMatch {
			region += " *"
		}
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\t%d\t%d\n",
			rec.DistressScore, rec.DistressLevel, rec.FarmName, region,
			rec.AvailableQuantity, rec.RecommendedQuantity)
	}
	w.Flush()
}
