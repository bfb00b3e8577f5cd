package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCommand(cctx *commandContext) *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize payment state for lessons in a range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cctx.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			from, to, err := resolveRange(app.cfg, fromFlag, toFlag, time.Now())
			if err != nil {
				return err
			}

			summary, err := app.timeline.PaymentSummaryForRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"paid", fmt.Sprintf("%d", summary.Paid), fmt.Sprintf("%.2f", summary.PaidAmount), fmt.Sprintf("%.1f%%", summary.PaidPercent)},
				{"pending", fmt.Sprintf("%d", summary.Pending), fmt.Sprintf("%.2f", summary.PendingAmount), fmt.Sprintf("%.1f%%", summary.PendingPercent)},
				{"cancelled", fmt.Sprintf("%d", summary.Cancelled), "-", "-"},
				{"total", fmt.Sprintf("%d", summary.Total), fmt.Sprintf("%.2f", summary.TotalAmount), ""},
			}

			fmt.Fprintf(cmd.OutOrStdout(), "lessons from %s to %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Status", "Lessons", "Amount", "Share"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Range start (RFC 3339 or YYYY-MM-DD; default now)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Range end, inclusive (RFC 3339 or YYYY-MM-DD; default now plus the configured window)")
	return cmd
}
