// Command recept 是食譜目錄的維運工具：驗證、匯入、列出分類與產生提示詞。
package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFlag string
	var dirFlag string

	ctx := newCommandContext(&envFlag, &dirFlag)

	rootCmd := &cobra.Command{
		Use:           "recept",
		Short:         "Recipe catalogue tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFlag, "env", ".env", "Path to the .env file")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "Read recipes from this directory instead of the configured backend")

	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))
	rootCmd.AddCommand(newTagsCommand(ctx))
	rootCmd.AddCommand(newPromptCommand())
	rootCmd.AddCommand(newTemplateCommand())

	return rootCmd
}
