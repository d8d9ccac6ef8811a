package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"scriptqueue/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			running := daemonRunning(cfg.LockFilePath())
			if running {
				fmt.Fprintln(stdout, "Daemon: running")
				if healthOK(cmd.Context(), cfg.Paths.APIBind) {
					fmt.Fprintf(stdout, "API: responding on %s\n", cfg.Paths.APIBind)
				} else {
					fmt.Fprintf(stdout, "API: not responding on %s\n", cfg.Paths.APIBind)
				}
			} else {
				fmt.Fprintln(stdout, "Daemon: not running")
			}
			fmt.Fprintf(stdout, "Database: %s\n", cfg.DatabasePath())

			return ctx.withStore(func(store *queue.Store) error {
				counts, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Queue: %d pending, %d in progress, %d completed\n",
					counts[queue.StatusPending],
					counts[queue.StatusInProgress],
					counts[queue.StatusCompleted],
				)
				return nil
			})
		},
	}
}

// daemonRunning probes the daemon lock. Acquiring it means no daemon holds
// it; the lock is released immediately.
func daemonRunning(path string) bool {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = lock.Unlock()
		return false
	}
	return true
}

func healthOK(ctx context.Context, bind string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+bind+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
