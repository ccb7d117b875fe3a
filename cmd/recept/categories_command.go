package main

import (
	"fmt"
	"strconv"

	"recept/internal/core/recipe"
	"recept/internal/infrastructure/storage"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List derived categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *recipe.Service, _ storage.Store) error {
				cats, err := svc.Categories(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, cats)
				}
				rows := make([][]string, 0, len(cats))
				for _, c := range cats {
					rows = append(rows, []string{c.Name, c.Slug, c.Image, strconv.Itoa(c.Count)})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Slug", "Image", "Recipes"}, rows))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newTagsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags with recipe counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *recipe.Service, _ storage.Store) error {
				tags, err := svc.Tags(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, tags)
				}
				rows := make([][]string, 0, len(tags))
				for _, t := range tags {
					rows = append(rows, []string{t.Tag, strconv.Itoa(t.Count)})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tag", "Recipes"}, rows))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
