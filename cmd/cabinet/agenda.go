package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/agenda"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// agendaCmd is the terminal view of the calendar: it loads a board for the
// requested window and applies gestures through it.
func agendaCmd() *cobra.Command {
	var view, date string

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show the calendar for a day, three days or a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, view, date, func(a *app, b *agenda.Board) error {
				printEvents(cmd.OutOrStdout(), b.Events(), a.appointments.Location())
				return nil
			})
		},
	}
	cmd.PersistentFlags().StringVar(&view, "view", string(appointment.ViewDay), "day, 3-day or week")
	cmd.PersistentFlags().StringVar(&date, "date", "", "first day shown, YYYY-MM-DD (default today)")

	cmd.AddCommand(&cobra.Command{
		Use:   "move <appointment-id> <start>",
		Short: "Move an appointment shown in the window, keeping its length",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("appointment id: %w", err)
			}
			return withBoard(cmd, view, date, func(a *app, b *agenda.Board) error {
				start, err := appointment.ParseStart(args[1], a.appointments.Location())
				if err != nil {
					return err
				}
				ev, err := b.Move(cmd.Context(), id, start)
				if err != nil {
					return err
				}
				printEvents(cmd.OutOrStdout(), []appointment.Event{ev}, a.appointments.Location())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resize <appointment-id> <start> <end>",
		Short: "Change an appointment's length by giving its new start and end",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("appointment id: %w", err)
			}
			return withBoard(cmd, view, date, func(a *app, b *agenda.Board) error {
				loc := a.appointments.Location()
				start, err := appointment.ParseStart(args[1], loc)
				if err != nil {
					return err
				}
				end, err := appointment.ParseStart(args[2], loc)
				if err != nil {
					return fmt.Errorf("end: %w", err)
				}
				ev, err := b.Resize(cmd.Context(), id, start, end)
				if err != nil {
					return err
				}
				printEvents(cmd.OutOrStdout(), []appointment.Event{ev}, loc)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <appointment-id> <status>",
		Short: "Change an appointment's status (planifié, confirmé, annulé, terminé)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("appointment id: %w", err)
			}
			return withBoard(cmd, view, date, func(a *app, b *agenda.Board) error {
				ev, err := b.ChangeStatus(cmd.Context(), id, args[1])
				if err != nil {
					return err
				}
				printEvents(cmd.OutOrStdout(), []appointment.Event{ev}, a.appointments.Location())
				return nil
			})
		},
	})

	return cmd
}

func withBoard(cmd *cobra.Command, view, date string, fn func(*app, *agenda.Board) error) error {
	kind, err := appointment.ParseViewKind(view)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := service.WithCaller(cmd.Context(), service.Caller{Actor: "cli"})
	cmd.SetContext(ctx)

	var window appointment.Window
	if date != "" {
		day, perr := time.ParseInLocation("2006-01-02", date, a.appointments.Location())
		if perr != nil {
			return fmt.Errorf("--date must be YYYY-MM-DD: %w", perr)
		}
		window, err = a.appointments.VisibleWindow(kind, day)
	} else {
		window, err = a.appointments.CurrentWindow(kind)
	}
	if err != nil {
		return err
	}

	board := agenda.NewBoard(a.appointments, a.log)
	if err := board.Load(ctx, &window); err != nil {
		return err
	}
	return fn(a, board)
}

func printEvents(w io.Writer, events []appointment.Event, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tSTATUS\tTITLE\tID")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			ev.Start.In(loc).Format("Mon 02/01 15:04"),
			ev.End.In(loc).Format("15:04"),
			ev.Props.Status,
			ev.Title,
			ev.ID,
		)
	}
	_ = tw.Flush()
}
