package main

import (
	"fmt"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/favs/internal/model"
	"github.com/nikbrunner/favs/internal/picker"
	"github.com/nikbrunner/favs/internal/search"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		place  model.Place
		folder string
	)
	cmd := &cobra.Command{
		Use:   "add <placeId>",
		Short: "Save a place, optionally into a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			place.ID = args[0]
			if place.Name == "" {
				place.Name = place.ID
			}
			return withEnv(opts, func(e *env) error {
				folderID := model.DefaultFolderID
				if folder != "" {
					var err error
					if folderID, err = resolveFolder(e, cmd, folder); err != nil {
						return err
					}
				}
				fav, err := e.ctl.AddToFolder(cmd.Context(), place, folderID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %q\n", fav.Place.Name)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&place.Name, "name", "n", "", "place name")
	flags.StringVar(&place.Address, "address", "", "place address")
	flags.StringVar(&place.PhotoURL, "photo", "", "photo URL")
	flags.StringVar(&place.URL, "url", "", "place URL")
	flags.StringVarP(&folder, "folder", "f", "", "folder ID or name")
	return cmd
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "rm <placeId>",
		Short: "Remove a place from a folder, or unfavorite it everywhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, func(e *env) error {
				if folder == "" {
					if err := e.ctl.Unfavorite(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Removed from favorites")
					return nil
				}
				id, err := resolveFolder(e, cmd, folder)
				if err != nil {
					return err
				}
				if err := e.ctl.RemoveFromFolder(cmd.Context(), args[0], id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed from folder")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder ID or name; empty removes the place everywhere")
	return cmd
}

func newFindCmd(opts *rootOptions) *cobra.Command {
	var open bool
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-find a saved place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			return withEnv(opts, func(e *env) error {
				if list := e.ctl.ListFolders(cmd.Context()); list.LoggedOut {
					return errNotSignedIn
				}
				results := search.FuzzySearchFavorites(e.ctl.CachedFavorites(), query)
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintf(out, "No places found for '%s'\n", query)
					return nil
				}

				var chosen *model.Favorite
				if len(results) == 1 {
					chosen = &results[0].Favorite
				} else {
					names := folderNames(e.ctl.CachedFolders())
					p := picker.New(picker.Params{
						Results:    results,
						Query:      query,
						FolderName: func(id string) string { return names[id] },
					})
					final, err := tea.NewProgram(p, tea.WithContext(cmd.Context())).Run()
					if err != nil {
						return fmt.Errorf("run picker: %w", err)
					}
					chosen = final.(picker.Picker).Selected()
				}
				if chosen == nil {
					return nil
				}

				fmt.Fprintln(out, chosen.Place.Name)
				if chosen.Place.Address != "" {
					fmt.Fprintln(out, chosen.Place.Address)
				}
				if chosen.Place.URL != "" {
					fmt.Fprintln(out, chosen.Place.URL)
					if open {
						return openURL(chosen.Place.URL)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&open, "open", "o", false, "open the place URL in the browser")
	return cmd
}

func folderNames(folders []model.Folder) map[string]string {
	names := make(map[string]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}
	return names
}

// openURL opens a URL in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
