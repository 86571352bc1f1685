package main

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

func newSummaryCmd() *cobra.Command {
	var (
		server    string
		apiKey    string
		region    string
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the distress rollup across all farms",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if region != "" {
				query.Set("region", region)
			}

			var summary distress.Summary
			c := newClient(server, apiKey)
			if err := c.get(cmd.Context(), "/api/v1/distress/summary", query, &summary); err != nil {
				return err
			}

			if outputFmt == "json" {
				return printJSON(summary)
			}
			renderSummary(&summary)
			return nil
		},
	}

	addServerFlags(cmd, &server, &apiKey)
	cmd.Flags().StringVar(&region, "region", "", "Restrict to one region")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func renderSummary(s *distress.Summary) {
	o := s.Overview
	fmt.Printf("%d farms, average distress %.1f\n", o.TotalFarms, o.AvgScore)
	fmt.Printf("  critical %d, high %d, moderate %d, low %d, stable %d\n\n",
		o.Critical, o.High, o.Moderate, o.Low, o.Stable)

	if len(s.Regions) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REGION\tFARMS\tDISTRESSED\tCRITICAL\tAVG")
		for _, r := range s.Regions {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\n", r.Region, r.TotalFarms, r.Distressed, r.Critical, r.AvgScore)
		}
		w.Flush()
		fmt.Println()
	}

	if len(s.Types) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tFARMS\tDISTRESSED\tAVG")
		for _, t := range s.Types {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\n", t.ProductionType, t.TotalFarms, t.Distressed, t.AvgScore)
		}
		w.Flush()
		fmt.Println()
	}

	fmt.Printf("Last 30 days: %d farmers supported, GHS %.2f in assignments (trend %s)\n",
		s.Trends.FarmersSupported30d, s.Trends.SupportValue30d, s.Trends.DistressTrend30d)
}
