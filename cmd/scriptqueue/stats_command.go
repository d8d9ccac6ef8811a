package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scriptqueue/internal/queue"
	"scriptqueue/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue totals, revenue, and the worker leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				fetched, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				items := make([]queue.Item, 0, len(fetched))
				for _, item := range fetched {
					items = append(items, *item)
				}

				summary := stats.Summarize(items)
				out := cmd.OutOrStdout()

				rows := [][]string{
					{"Total jobs", strconv.Itoa(summary.TotalJobs)},
					{"Pending", strconv.Itoa(summary.PendingJobs)},
					{"In progress", strconv.Itoa(summary.InProgressJobs)},
					{"Completed", strconv.Itoa(summary.CompletedJobs)},
					{"Total revenue", formatMoney(summary.TotalRevenue)},
					{"Pending revenue", formatMoney(summary.PendingRevenue)},
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))

				board := stats.Leaderboard(items)
				if len(board) == 0 {
					fmt.Fprintln(out, "No completed jobs yet")
					return nil
				}
				boardRows := make([][]string, 0, len(board))
				for _, standing := range board {
					boardRows = append(boardRows, []string{
						standing.Name,
						strconv.Itoa(standing.CompletedJobs),
						formatMoney(standing.TotalEarnings),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Worker", "Completed", "Earnings"},
					boardRows,
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}
