package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"recept/internal/core/recipe"

	"github.com/spf13/cobra"
)

func newPromptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt [file|-]",
		Short: "Print the LLM conversion prompt, optionally filled with recipe text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), recipe.ConversionPrompt)
				return err
			}

			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read recipe text: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), recipe.BuildPrompt(string(data)))
			return err
		},
	}
}

func newTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Print a starter recipe document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := recipe.ToJSON(recipe.EmptyRecipe(time.Now()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}
