package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/favs/internal/linkcheck"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
		private     []string
		prune       bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check place URLs and report dead links",
		Long:  "Check the URL of every saved place. With --prune, places whose URL is gone (404/410) are unfavorited.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(opts, func(e *env) error {
				ctx := cmd.Context()
				list := e.ctl.ListFolders(ctx)
				if list.LoggedOut {
					return errNotSignedIn
				}
				if list.Err != nil {
					return fmt.Errorf("refresh favorites: %w", list.Err)
				}

				errOut := cmd.ErrOrStderr()
				results := linkcheck.Check(ctx, e.ctl.CachedFavorites(), linkcheck.Params{
					Concurrency:    concurrency,
					Timeout:        timeout,
					PrivateDomains: private,
					OnProgress: func(done, total int) {
						fmt.Fprintf(errOut, "\rChecked %d/%d", done, total)
					},
				})
				if len(results) > 0 {
					fmt.Fprintln(errOut)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, r := range results {
					if r.Status == linkcheck.Healthy || r.Status == linkcheck.Skipped {
						continue
					}
					reason := r.Error
					if reason == "" {
						reason = fmt.Sprintf("HTTP %d", r.StatusCode)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Status, r.Place.Name, r.Place.URL, reason)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				dead := linkcheck.DeadPlaces(results)
				fmt.Fprintf(cmd.OutOrStdout(), "%d places checked, %d dead\n", len(results), len(dead))
				if !prune {
					return nil
				}
				for _, p := range dead {
					if err := e.ctl.Unfavorite(ctx, p.ID); err != nil {
						return fmt.Errorf("unfavorite %s: %w", p.ID, err)
					}
				}
				if len(dead) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d dead places\n", len(dead))
				}
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&concurrency, "concurrency", "c", 8, "parallel requests")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flags.StringSliceVar(&private, "private", nil, "domains where 404 means login required")
	flags.BoolVar(&prune, "prune", false, "unfavorite places with dead URLs")
	return cmd
}
