package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/auth"
)

func newAuditCmd(opts *options) *cobra.Command {
	var email string
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show a user's recent account activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, _, err := opts.connect(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := svc.Auth.GetUserByEmail(cmd.Context(), email)
			if err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					return fmt.Errorf("no user with email %s", email)
				}
				return err
			}
			events, err := svc.Audit.History(cmd.Context(), user.ID, limit)
			if err != nil {
				return err
			}
			renderEvents(cmd.OutOrStdout(), user.Email, events)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func renderEvents(w io.Writer, email string, events []*audit.Event) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Activity for %s (%d)", email, len(events))))
	if len(events) == 0 {
		fmt.Fprintln(w, labelStyle.Render("  no events"))
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s  %-22s %s", labelStyle.Render(e.CreatedAt.Format("2006-01-02 15:04")), e.EventType, e.IPAddress)
		if e.Result == audit.ResultError {
			line = warnStyle.Render(line + "  " + e.Error)
		}
		fmt.Fprintln(w, line)
	}
}
