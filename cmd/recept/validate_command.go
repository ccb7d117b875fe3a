package main

import (
	"fmt"
	"strings"

	"recept/internal/core/recipe"
	"recept/internal/infrastructure/storage"

	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every stored recipe document",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return validateStore(cmd, store, quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print invalid recipes")
	return cmd
}

func validateStore(cmd *cobra.Command, store storage.Store, quiet bool) error {
	slugs, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, slug := range slugs {
		text, err := store.Load(cmd.Context(), slug)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "%s: %v\n", slug, err)
			continue
		}
		res := recipe.ParseRecipe(text)
		if !res.OK() {
			invalid++
			fmt.Fprintf(out, "%s: %s\n", slug, strings.Join(res.Errors, "; "))
			continue
		}
		if res.Recipe.Slug != slug {
			invalid++
			fmt.Fprintf(out, "%s: slug %q does not match the document name\n", slug, res.Recipe.Slug)
			continue
		}
		if !quiet {
			fmt.Fprintf(out, "ok  %s\n", slug)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d recipes are invalid", invalid, len(slugs))
	}
	fmt.Fprintf(out, "All %d recipes are valid\n", len(slugs))
	return nil
}
