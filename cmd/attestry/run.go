package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"attestry/internal/pipeline"
	"attestry/internal/recipe"
)

var runCmd = &cobra.Command{
	Use:   "run [recipe.json]",
	Short: "Run a recipe end to end",
	Long: `Parses and validates the recipe, fetches its queries with the user
context substituted, executes the transform script in the sandbox,
validates the resulting items, and prints them together with the encoded
bytes and the schema identifier.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recipe.ParseFile(args[0])
		if err != nil {
			return err
		}

		runner, cleanup, err := newRunner()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := runner.Run(ctx, rec, userContext())
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

func printResult(result *pipeline.Result) {
	fmt.Println("Items:")
	for _, item := range result.Items {
		value, err := json.Marshal(item.Value)
		if err != nil {
			value = []byte("<unprintable>")
		}
		fmt.Printf("  %-20s %-12s %s\n", item.Name, item.Type, value)
	}
	fmt.Printf("Schema UID: %s\n", result.UID.Hex())
	fmt.Printf("Encoded (%d bytes): %s\n", len(result.Encoded), hex.EncodeToString(result.Encoded))
}
