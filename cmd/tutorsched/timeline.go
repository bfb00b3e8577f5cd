package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/tutor-scheduler/internal/persistence"
	"github.com/example/tutor-scheduler/internal/scheduler"
)

func newTimelineCommand(cctx *commandContext) *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show booked lessons and upcoming recurring slots",
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

			entries, err := app.timeline.Timeline(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no lessons in range")
				return nil
			}

			names, err := studentNames(cmd.Context(), app)
			if err != nil {
				return err
			}
			location, err := app.cfg.Location()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				source := "booked"
				if entry.Generated {
					source = "planned"
				}
				rows = append(rows, []string{
					entry.StartsAt.In(location).Format("2006-01-02 15:04"),
					studentLabel(names, entry.StudentID),
					fmt.Sprintf("%d min", entry.DurationMinutes),
					fmt.Sprintf("%.2f", entry.Price),
					string(entry.PaymentStatus),
					source,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Start", "Student", "Duration", "Price", "Payment", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))

			slots := make([]scheduler.Slot, 0, len(entries))
			for _, entry := range entries {
				slots = append(slots, scheduler.Slot{
					ID:              entry.ID,
					StudentID:       entry.StudentID,
					Start:           entry.StartsAt,
					DurationMinutes: entry.DurationMinutes,
				})
			}
			for _, conflict := range scheduler.DetectOverlaps(slots) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: lessons %s and %s overlap by %s\n",
					conflict.FirstID, conflict.SecondID, conflict.Overlap)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Range start (RFC 3339 or YYYY-MM-DD; default now)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Range end, inclusive (RFC 3339 or YYYY-MM-DD; default now plus the configured window)")
	return cmd
}

func studentNames(ctx context.Context, app *app) (map[string]persistence.Student, error) {
	students, err := app.students.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading students: %w", err)
	}
	names := make(map[string]persistence.Student, len(students))
	for _, student := range students {
		names[student.ID] = student
	}
	return names, nil
}

func studentLabel(names map[string]persistence.Student, id string) string {
	if student, ok := names[id]; ok {
		return student.FirstName + " " + student.LastName
	}
	return id
}
