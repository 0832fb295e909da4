package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/playkit/store"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage calendar events",
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events (today by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireSignIn(); err != nil {
			return err
		}

		events := store.NewEventStore(app.API, app.Session, nil)
		if err := events.Fetch(cmd.Context()); err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		items := events.Events()
		if !all {
			items = events.EventsOn(time.Now())
		}
		if len(items) == 0 {
			fmt.Println(app.Locale.T("calendar.title") + ": -")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, event := range items {
			when := event.StartAt.Local().Format("2006-01-02 15:04")
			if event.AllDay {
				when = event.StartAt.Local().Format("2006-01-02") + " " + app.Locale.T("calendar.all_day")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", when, event.ID, event.Title)
		}
		return w.Flush()
	},
}

var eventAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireSignIn(); err != nil {
			return err
		}

		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		allDay, _ := cmd.Flags().GetBool("all-day")

		start, err := time.ParseInLocation("2006-01-02 15:04", startStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --start, want YYYY-MM-DD HH:MM: %w", err)
		}
		end := start.Add(time.Hour)
		if endStr != "" {
			if end, err = time.ParseInLocation("2006-01-02 15:04", endStr, time.Local); err != nil {
				return fmt.Errorf("invalid --end, want YYYY-MM-DD HH:MM: %w", err)
			}
		}

		events := store.NewEventStore(app.API, app.Session, nil)
		created, err := events.Add(cmd.Context(), store.EventInput{
			Title:   args[0],
			StartAt: start,
			EndAt:   end,
			AllDay:  allDay,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", created.Title, created.ID)
		return nil
	},
}

func init() {
	eventListCmd.Flags().Bool("all", false, "List every event, not just today's")
	eventAddCmd.Flags().String("start", "", "Start time, YYYY-MM-DD HH:MM (required)")
	eventAddCmd.Flags().String("end", "", "End time (defaults to start + 1h)")
	eventAddCmd.Flags().Bool("all-day", false, "All-day event")
	_ = eventAddCmd.MarkFlagRequired("start")
	eventCmd.AddCommand(eventListCmd, eventAddCmd)
	rootCmd.AddCommand(eventCmd)
}
