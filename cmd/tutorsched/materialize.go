package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

func newMaterializeCommand(cctx *commandContext) *cobra.Command {
	var fromFlag, toFlag string
	var daysFlag int

	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Persist upcoming recurring slots as pending lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cctx.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			// One materializer at a time; concurrent runs against the same
			// database would just race each other into duplicate skips.
			lock := flock.New(app.cfg.LockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock %s: %w", app.cfg.LockPath, err)
			}
			if !locked {
				return errors.New("another materialize run is already in progress")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			cfg := app.cfg
			if daysFlag > 0 {
				cfg.MaterializeWindowDays = daysFlag
			}
			from, to, err := resolveRange(cfg, fromFlag, toFlag, time.Now())
			if err != nil {
				return err
			}

			result, err := app.timeline.Materialize(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d lessons, skipped %d\n", result.Created, result.Skipped)
			if len(result.Errors) > 0 {
				for _, detail := range result.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", detail)
				}
				return fmt.Errorf("%d occurrences failed to materialize", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Range start (RFC 3339 or YYYY-MM-DD; default now)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Range end, inclusive (RFC 3339 or YYYY-MM-DD; default now plus the configured window)")
	cmd.Flags().IntVar(&daysFlag, "days", 0, "Materialize this many days ahead instead of the configured window")
	return cmd
}
