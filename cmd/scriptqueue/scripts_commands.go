package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scriptqueue/internal/queue"
)

func newScriptsCommand(ctx *commandContext) *cobra.Command {
	scriptsCmd := &cobra.Command{
		Use:   "scripts",
		Short: "Inspect and extend a job's script history",
	}

	scriptsCmd.AddCommand(newScriptsListCommand(ctx))
	scriptsCmd.AddCommand(newScriptsShowCommand(ctx))
	scriptsCmd.AddCommand(newScriptsAddCommand(ctx))

	return scriptsCmd
}

func newScriptsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <item-id>",
		Short: "List script versions for a job, latest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}
				scripts, err := store.ListScripts(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if len(scripts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scripts submitted")
					return nil
				}

				rows := make([][]string, 0, len(scripts))
				for _, script := range scripts {
					rows = append(rows, []string{
						fmt.Sprintf("v%d", script.Version),
						script.SubmittedBy,
						script.CreatedAt.Local().Format(time.RFC1123),
						fmt.Sprintf("%d chars", len(script.Content)),
					})
				}
				out := renderTable(
					[]string{"Version", "Submitted By", "Created", "Size"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newScriptsShowCommand(ctx *commandContext) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Print a script version's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}

				if version == 0 {
					latest, err := store.LatestScript(cmd.Context(), item.ID)
					if err != nil {
						return err
					}
					if latest == nil {
						return fmt.Errorf("no scripts submitted for %s", item.Title)
					}
					fmt.Fprint(cmd.OutOrStdout(), latest.Content)
					return nil
				}

				scripts, err := store.ListScripts(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				for _, script := range scripts {
					if script.Version == version {
						fmt.Fprint(cmd.OutOrStdout(), script.Content)
						return nil
					}
				}
				return fmt.Errorf("no version %d for %s", version, item.Title)
			})
		},
	}
	cmd.Flags().IntVarP(&version, "version", "v", 0, "Version to show (default latest)")
	return cmd
}

func newScriptsAddCommand(ctx *commandContext) *cobra.Command {
	var submittedBy string

	cmd := &cobra.Command{
		Use:   "add <item-id> <file>",
		Short: "Resubmit a corrected script as a new version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}
				content, err := readScriptFile(args[1])
				if err != nil {
					return err
				}
				script, err := store.AppendScript(cmd.Context(), item.ID, content, submittedBy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted v%d for %s\n", script.Version, item.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&submittedBy, "by", "", "Submitter username")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}
