package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/favs/internal/auth"
)

func newLoginCmd(_ *rootOptions) *cobra.Command {
	var (
		token   string
		expires time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for the favorites service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := auth.DefaultPath()
			if err != nil {
				return err
			}
			var until *time.Time
			if expires > 0 {
				t := time.Now().Add(expires)
				until = &t
			}
			if _, err := auth.Save(path, token, until); err != nil {
				return err
			}
			if until != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in until %s\n", until.Format(time.RFC3339))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed in")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "access token")
	cmd.Flags().DurationVar(&expires, "expires", 0, "token lifetime, e.g. 24h")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := auth.DefaultPath()
			if err != nil {
				return err
			}
			if err := auth.Clear(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
