package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var phone, code string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a one-time code sent to your phone",
		Long: `Sign in with a one-time code.

Without --code an OTP is requested for --phone and the code is read from
stdin. With --code the request step is skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if phone == "" {
				return errors.New("--phone is required")
			}
			ctx := cmd.Context()
			if code == "" {
				if err := a.client.RequestOTP(ctx, phone); err != nil {
					return fmt.Errorf("request code: %w", err)
				}
				var err error
				if code, err = a.prompt("Code sent. Enter code: "); err != nil {
					return fmt.Errorf("read code: %w", err)
				}
			}
			profile, err := a.client.VerifyOTP(ctx, phone, code)
			if err != nil {
				return fmt.Errorf("verify code: %w", err)
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s).\n", profile.Username, profile.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&code, "code", "", "one-time code (skips requesting a new one)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := a.identity()
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(me)
			}
			fmt.Fprintf(a.out, "%s\t%s\t%s\n", me.Username, me.Phone, me.Role)
			return nil
		},
	}
}
