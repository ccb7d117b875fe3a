package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"recept/internal/core/importer"
	"recept/internal/core/recipe"
	"recept/internal/infrastructure/config"
	"recept/internal/infrastructure/storage"

	"github.com/spf13/cobra"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		categories []string
		source     string
		save       bool
		message    string
	)

	cmd := &cobra.Command{
		Use:   "import <url|file.html>",
		Short: "Convert a WordPress recipe page into a recipe document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importCfg := config.ImportConfig{}
			if cfg, err := ctx.ensureConfig(); err == nil {
				importCfg = cfg.Import
			}

			page, sourceURL, err := readPage(cmd, importCfg, args[0])
			if err != nil {
				return err
			}
			if source != "" {
				sourceURL = source
			}

			draft, err := importer.New(importer.DefaultLayout(), importCfg.DefaultImage).
				Convert(page, importer.Options{Categories: categories, SourceURL: sourceURL})
			if err != nil {
				return err
			}

			out, err := recipe.ToJSON(draft)
			if err != nil {
				return err
			}
			if !save {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}

			return ctx.withService(func(svc *recipe.Service, _ storage.Store) error {
				saved, err := svc.Save(cmd.Context(), out, message)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", saved.Slug, svc.StoreName())
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "Category to assign (repeatable)")
	cmd.Flags().StringVar(&source, "source", "", "Source URL when importing from a file")
	cmd.Flags().BoolVar(&save, "save", false, "Save the draft to the configured backend")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message when saving")
	return cmd
}

// readPage 參數是既有檔案時讀檔，否則當作網址抓取
func readPage(cmd *cobra.Command, cfg config.ImportConfig, arg string) (string, string, error) {
	data, err := os.ReadFile(arg)
	if err == nil {
		return string(data), "", nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", "", fmt.Errorf("read %s: %w", arg, err)
	}

	target, err := importer.NormalizeURL(arg)
	if err != nil {
		return "", "", err
	}
	page, err := importer.NewFetcher(cfg).Fetch(cmd.Context(), target)
	if err != nil {
		return "", "", err
	}
	return page, target, nil
}
