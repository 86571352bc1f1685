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

func newRankCmd() *cobra.Command {
	var (
		server         string
		apiKey         string
		productionType string
		region         string
		district       string
		minScore       float64
		minCapacity    int
		hasStock       bool
		limit          int
		ordering       string
		outputFmt      string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "List farmers ranked by distress",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if productionType != "" {
				query.Set("production_type", productionType)
			}
			if region != "" {
				query.Set("region", region)
			}
			if district != "" {
				query.Set("district", district)
			}
			if minScore > 0 {
				query.Set("min_distress_score", strconv.FormatFloat(minScore, 'f', -1, 64))
			}
			if minCapacity > 0 {
				query.Set("min_capacity", strconv.Itoa(minCapacity))
			}
			if hasStock {
				query.Set("has_available_stock", "true")
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if ordering != "" {
				query.Set("ordering", ordering)
			}

			var result distress.RankResult
			c := newClient(server, apiKey)
			if err := c.get(cmd.Context(), "/api/v1/farmers/distressed", query, &result); err != nil {
				return err
			}

			if outputFmt == "json" {
				return printJSON(result)
			}
			renderRank(&result)
			return nil
		},
	}

	addServerFlags(cmd, &server, &apiKey)
	cmd.Flags().StringVar(&productionType, "production-type", "", "Filter by production type (Broilers or Layers)")
	cmd.Flags().StringVar(&region, "region", "", "Filter by region")
	cmd.Flags().StringVar(&district, "district", "", "Filter by district")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Minimum distress score")
	cmd.Flags().IntVar(&minCapacity, "min-capacity", 0, "Minimum farm capacity")
	cmd.Flags().BoolVar(&hasStock, "has-stock", false, "Only farms with birds on hand")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (default 50)")
	cmd.Flags().StringVar(&ordering, "ordering", "", "Ordering: -distress_score, distress_score, farm_name, -farm_name")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func renderRank(result *distress.RankResult) {
	fmt.Printf("%d of %d farms (critical %d, high %d, moderate %d)\n\n",
		result.Count, result.Summary.Total,
		result.Summary.Critical, result.Summary.High, result.Summary.Moderate)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tLEVEL\tFARM\tREGION\tDISTRICT\tFACTORS")
	for _, a := range result.Results {
		factors := ""
		for i, f := range a.Factors {
			if i > 0 {
				factors += ","
			}
			factors += string(f.Factor)
		}
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\t%s\t%s\n",
			a.Score, a.Level, a.FarmName, a.Region, a.District, factors)
	}
	w.Flush()
}
