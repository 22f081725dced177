package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afterus/afterus-backend/internal/auth"
)

func newCreateUserCmd(opts *options) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account with the default closure activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, _, err := opts.connect(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := svc.Auth.SignUp(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name; must match the sender name in uploaded exports")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSetPasswordCmd(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Reset a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ValidatePassword(password); err != nil {
				return err
			}

			svc, db, _, err := opts.connect(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := svc.Auth.ResetPassword(cmd.Context(), email, password); err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					return fmt.Errorf("no user with email %s", email)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
