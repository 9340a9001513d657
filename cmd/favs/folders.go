package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/favs/internal/favorites"
	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

var errNotSignedIn = errors.New("not signed in, run `favs login --token <token>`")

func newFoldersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List folders with their place counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(opts, func(e *env) error {
				list := e.ctl.ListFolders(cmd.Context())
				if list.LoggedOut {
					return errNotSignedIn
				}
				if list.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: showing cached folders: %v\n", list.Err)
				}
				return printFolders(cmd.OutOrStdout(), list.Folders)
			})
		},
	}
}

func printFolders(out io.Writer, folders []model.Folder) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPLACES")
	for _, f := range folders {
		fmt.Fprintf(w, "%s\t%s\t%d\n", f.ID, f.Name, f.ItemCount)
	}
	return w.Flush()
}

func newFolderCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Create, rename or delete folders",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a folder",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(opts, func(e *env) error {
					folder, err := e.ctl.CreateFolder(cmd.Context(), strings.Join(args, " "))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Created folder %q (%s)\n", folder.Name, folder.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename <folder> <name>",
			Short: "Rename a folder",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(opts, func(e *env) error {
					id, err := resolveFolder(e, cmd, args[0])
					if err != nil {
						return err
					}
					folder, err := e.ctl.RenameFolder(cmd.Context(), id, strings.Join(args[1:], " "))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Renamed folder to %q\n", folder.Name)
					return nil
				})
			},
		},
		newFolderDeleteCmd(opts),
	)
	return cmd
}

func newFolderDeleteCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete <folder>",
		Short: "Delete a folder",
		Long:  "Delete a folder. A folder that still holds places is only deleted with --all, which removes its places first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, func(e *env) error {
				id, err := resolveFolder(e, cmd, args[0])
				if err != nil {
					return err
				}
				if all {
					err = e.ctl.DeleteFolderWithContents(cmd.Context(), id)
				} else {
					err = e.ctl.DeleteFolder(cmd.Context(), id)
				}
				if errors.Is(err, favorites.ErrFolderNotEmpty) && !all {
					return fmt.Errorf("%w; rerun with --all to delete its places too", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted folder")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also remove the places in the folder")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list [folder]",
		Short: "List the places in a folder (default: Favourites)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, func(e *env) error {
				id := model.DefaultFolderID
				if len(args) == 1 {
					var err error
					if id, err = resolveFolder(e, cmd, args[0]); err != nil {
						return err
					}
				}
				res := e.ctl.ListByFolder(cmd.Context(), id, gateway.Page{Number: page, Size: e.cfg.PageSize})
				if res.LoggedOut {
					return errNotSignedIn
				}
				if res.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: showing cached places: %v\n", res.Err)
				}
				if len(res.Favorites) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No places")
					return nil
				}
				return printFavorites(cmd.OutOrStdout(), res.Favorites)
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func printFavorites(out io.Writer, favs []model.Favorite) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLACE\tNAME\tADDRESS\tADDED")
	for _, f := range favs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.PlaceID, f.Place.Name, f.Place.Address, humanize.Time(f.CreatedAt))
	}
	return w.Flush()
}

// resolveFolder accepts a folder ID or a case-insensitive folder name.
func resolveFolder(e *env, cmd *cobra.Command, arg string) (string, error) {
	if model.IsDefaultID(arg) || strings.EqualFold(arg, model.DefaultFolderName) {
		return model.DefaultFolderID, nil
	}
	list := e.ctl.ListFolders(cmd.Context())
	if list.LoggedOut {
		return "", errNotSignedIn
	}
	for _, f := range list.Folders {
		if f.ID == arg {
			return f.ID, nil
		}
	}
	var match []model.Folder
	for _, f := range list.Folders {
		if strings.EqualFold(f.Name, arg) {
			match = append(match, f)
		}
	}
	switch len(match) {
	case 0:
		return "", fmt.Errorf("%w: %s", favorites.ErrUnknownFolder, arg)
	case 1:
		return match[0].ID, nil
	default:
		return "", fmt.Errorf("%d folders are named %q, use the folder ID", len(match), arg)
	}
}
