package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"attestry/internal/recipe"
	"attestry/internal/schema"
)

var uidCmd = &cobra.Command{
	Use:   "uid [recipe.json]",
	Short: "Derive the schema identifier for a recipe",
	Long: `Computes the deterministic schema identifier from the recipe's static
declaration (schema, resolver, revokable). No queries are fetched and no
script is executed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recipe.ParseFile(args[0])
		if err != nil {
			return err
		}
		uid, err := schema.DeriveUID(rec.Schema, rec.Resolver, rec.Revokable)
		if err != nil {
			return err
		}
		fmt.Println(uid.Hex())
		return nil
	},
}
