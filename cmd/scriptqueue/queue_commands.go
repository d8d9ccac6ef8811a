package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scriptqueue/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueEditCommand(ctx))
	queueCmd.AddCommand(newQueueClaimCommand(ctx))
	queueCmd.AddCommand(newQueueCompleteCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				var statuses []queue.Status
				if statusFlag != "" {
					status, err := queue.ParseStatus(statusFlag)
					if err != nil {
						return err
					}
					statuses = append(statuses, status)
				}

				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						shortID(item.ID),
						item.Title,
						string(item.Status),
						item.ClaimedBy,
						formatMoney(item.Price),
						formatDeadline(item.Deadline),
					})
				}
				out := renderTable(
					[]string{"ID", "Title", "Status", "Claimed By", "Price", "Deadline"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (pending, in-progress, completed)")
	return cmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var (
		description string
		price       float64
		deadlineStr string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Post a new job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				var deadline *time.Time
				if deadlineStr != "" {
					parsed, err := parseDeadline(deadlineStr)
					if err != nil {
						return err
					}
					deadline = parsed
				}

				item, err := store.Add(cmd.Context(), args[0], description, price, deadline)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", item.Title, shortID(item.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Job description")
	cmd.Flags().Float64VarP(&price, "price", "p", 0, "Job price")
	cmd.Flags().StringVar(&deadlineStr, "deadline", "", "Deadline (YYYY-MM-DD or RFC 3339)")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one queue item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %s\n", item.ID)
				fmt.Fprintf(out, "Title:       %s\n", item.Title)
				fmt.Fprintf(out, "Description: %s\n", item.Description)
				fmt.Fprintf(out, "Price:       %s\n", formatMoney(item.Price))
				fmt.Fprintf(out, "Status:      %s\n", item.Status)
				if item.ClaimedBy != "" {
					fmt.Fprintf(out, "Claimed by:  %s\n", item.ClaimedBy)
				}
				fmt.Fprintf(out, "Deadline:    %s\n", formatDeadline(item.Deadline))
				fmt.Fprintf(out, "Created:     %s\n", item.CreatedAt.Local().Format(time.RFC1123))
				if item.CompletedAt != nil {
					fmt.Fprintf(out, "Completed:   %s\n", item.CompletedAt.Local().Format(time.RFC1123))
				}

				scripts, err := store.ListScripts(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if len(scripts) > 0 {
					fmt.Fprintf(out, "Scripts:     %d version(s), latest v%d by %s\n",
						len(scripts), scripts[0].Version, scripts[0].SubmittedBy)
				}
				return nil
			})
		},
	}
}

func newQueueEditCommand(ctx *commandContext) *cobra.Command {
	var (
		title       string
		description string
		price       float64
		deadlineStr string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a job's fields (not its lifecycle state)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}

				newTitle := item.Title
				if cmd.Flags().Changed("title") {
					newTitle = title
				}
				newDescription := item.Description
				if cmd.Flags().Changed("description") {
					newDescription = description
				}
				newPrice := item.Price
				if cmd.Flags().Changed("price") {
					newPrice = price
				}
				newDeadline := item.Deadline
				if cmd.Flags().Changed("deadline") {
					if deadlineStr == "" {
						newDeadline = nil
					} else {
						parsed, err := parseDeadline(deadlineStr)
						if err != nil {
							return err
						}
						newDeadline = parsed
					}
				}

				updated, err := store.Update(cmd.Context(), item.ID, newTitle, newDescription, newPrice, newDeadline)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", updated.Title, shortID(updated.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().Float64VarP(&price, "price", "p", 0, "New price")
	cmd.Flags().StringVar(&deadlineStr, "deadline", "", "New deadline, empty to clear")
	return cmd
}

func newQueueClaimCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <id> <username>",
		Short: "Claim a pending job for a worker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}
				claimed, err := store.Claim(cmd.Context(), item.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s claimed by %s\n", claimed.Title, claimed.ClaimedBy)
				return nil
			})
		},
	}
}

func newQueueCompleteCommand(ctx *commandContext) *cobra.Command {
	var scriptFile string

	cmd := &cobra.Command{
		Use:   "complete <id> <username>",
		Short: "Mark an in-progress job completed, optionally submitting a script",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}

				var content string
				if scriptFile != "" {
					data, err := readScriptFile(scriptFile)
					if err != nil {
						return err
					}
					content = data
				}

				completed, err := store.Complete(cmd.Context(), item.ID, content, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s completed\n", completed.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&scriptFile, "script", "s", "", "Path to the script file to submit")
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a job and its script history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				item, err := resolveItem(cmd, store, args[0])
				if err != nil {
					return err
				}
				if err := store.Remove(cmd.Context(), item.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", item.Title)
				return nil
			})
		},
	}
}

// resolveItem accepts a full id or an unambiguous prefix.
func resolveItem(cmd *cobra.Command, store *queue.Store, ref string) (*queue.Item, error) {
	item, err := store.GetByID(cmd.Context(), ref)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}

	items, err := store.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	var match *queue.Item
	for _, candidate := range items {
		if strings.HasPrefix(candidate.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no queue item matches %q", ref)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDeadline(deadline *time.Time) string {
	if deadline == nil {
		return "-"
	}
	return deadline.Local().Format("2006-01-02")
}

func parseDeadline(value string) (*time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts, nil
	}
	ts, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q: use YYYY-MM-DD or RFC 3339", value)
	}
	// Treat a date-only deadline as end of that day.
	eod := ts.Add(24*time.Hour - time.Second)
	return &eod, nil
}
