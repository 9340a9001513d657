package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/favs/internal/exporter"
	"github.com/nikbrunner/favs/internal/importer"
	"github.com/nikbrunner/favs/internal/model"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export folders and places as bookmark HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				var err error
				if path, err = exporter.DefaultExportPath(); err != nil {
					return err
				}
			}
			return withEnv(opts, func(e *env) error {
				list := e.ctl.ListFolders(cmd.Context())
				if list.LoggedOut {
					return errNotSignedIn
				}
				if list.Err != nil {
					return fmt.Errorf("refresh favorites: %w", list.Err)
				}
				favs := e.ctl.CachedFavorites()
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(path, []byte(exporter.ExportHTML(list.Folders, favs)), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d folders and %d places to %s\n", len(list.Folders)-1, len(favs), path)
				return nil
			})
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import places from bookmark HTML",
		Long:  "Import places from bookmark HTML. Folders are matched by name and created when missing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			folders, err := importer.ParseHTML(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			return withEnv(opts, func(e *env) error {
				ctx := cmd.Context()
				list := e.ctl.ListFolders(ctx)
				if list.LoggedOut {
					return errNotSignedIn
				}
				byName := map[string]string{}
				for _, folder := range list.Folders {
					if !folder.IsDefault {
						byName[strings.ToLower(folder.Name)] = folder.ID
					}
				}

				var added, failed int
				for _, imp := range folders {
					folderID := model.DefaultFolderID
					if !imp.Default {
						id, ok := byName[strings.ToLower(imp.Name)]
						if !ok {
							created, err := e.ctl.CreateFolder(ctx, imp.Name)
							if err != nil {
								e.log.Warn().Err(err).Str("folder", imp.Name).Msg("skipping folder")
								failed += len(imp.Places)
								continue
							}
							id = created.ID
							byName[strings.ToLower(imp.Name)] = id
						}
						folderID = id
					}
					for _, p := range imp.Places {
						if _, err := e.ctl.AddToFolder(ctx, p.Place, folderID); err != nil {
							e.log.Warn().Err(err).Str("place", p.Place.ID).Msg("skipping place")
							failed++
							continue
						}
						added++
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d places\n", added)
				if failed > 0 {
					return fmt.Errorf("%d places could not be imported", failed)
				}
				return nil
			})
		},
	}
}
