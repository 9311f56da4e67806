package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attestry/internal/recipe"
)

// Editors typically replace files on save, so the watcher follows the
// recipe's directory and filters events by name.
var devCmd = &cobra.Command{
	Use:   "dev [recipe.json]",
	Short: "Watch a recipe file and re-run it on change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipePath, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		runner, cleanup, err := newRunner()
		if err != nil {
			return err
		}
		defer cleanup()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(recipePath)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(recipePath), err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runOnce := func() {
			rec, err := recipe.ParseFile(recipePath)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				return
			}
			result, err := runner.Run(ctx, rec, userContext())
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				return
			}
			printResult(result)
		}

		runOnce()
		fmt.Printf("watching %s\n", recipePath)

		// Debounce bursts of write events from a single save.
		var pending *time.Timer
		rerun := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-rerun:
				runOnce()
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != recipePath {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(200*time.Millisecond, func() {
					select {
					case rerun <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", zap.Error(err))
			}
		}
	},
}
