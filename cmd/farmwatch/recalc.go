package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farmwatch/farmwatch/internal/task"
)

func newRecalcCmd() *cobra.Command {
	var (
		server    string
		apiKey    string
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Trigger a full distress recalculation",
		Long:  `Recalculates every active farm's distress score synchronously and prints the run report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report task.RunReport
			c := newClient(server, apiKey)
			if err := c.post(cmd.Context(), "/api/v1/distress/recalculate", &report); err != nil {
				return err
			}

			if outputFmt == "json" {
				return printJSON(report)
			}
			fmt.Printf("Scored %d of %d farms in %s (%d errors)\n",
				report.Processed, report.Total, report.Duration, report.Errors)
			fmt.Printf("Now critical: %d, high: %d\n", report.Critical, report.High)
			return nil
		},
	}

	addServerFlags(cmd, &server, &apiKey)
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}
