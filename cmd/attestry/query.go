package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"attestry/internal/recipe"
)

var queryCmd = &cobra.Command{
	Use:   "query [recipe.json]",
	Short: "Fetch a recipe's queries without transforming",
	Long: `Substitutes the user context (or the zero address when none is given)
into the recipe's queries, fetches them, and prints the raw responses.
Useful for inspecting what a transform script will receive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recipe.ParseFile(args[0])
		if err != nil {
			return err
		}

		client, cleanup, err := newFetchClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		responses, err := client.FetchAll(ctx, rec.Queries, userContext())
		if err != nil {
			return err
		}
		for i, response := range responses {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, response, "", "  "); err != nil {
				pretty.Write(response)
			}
			fmt.Printf("--- query %d (%s)\n%s\n", i, rec.Queries[i].Endpoint, pretty.String())
		}
		return nil
	},
}
