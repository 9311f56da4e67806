package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"attestry/internal/recipe"
)

var validateCmd = &cobra.Command{
	Use:   "validate [recipe.json]",
	Short: "Validate a recipe declaration without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recipe.ParseFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: valid (%d queries)\n", rec.Name, len(rec.Queries))
		return nil
	},
}
