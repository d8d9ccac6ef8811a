package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scriptqueue/internal/identity"
	"scriptqueue/internal/policy"
	"scriptqueue/internal/queue"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage account approval",
	}

	usersCmd.AddCommand(newUsersPendingCommand(ctx))
	usersCmd.AddCommand(newUsersApproveCommand(ctx))

	return usersCmd
}

func (c *commandContext) withIdentity(fn func(*identity.Service) error) error {
	return c.withStore(func(store *queue.Store) error {
		cfg, err := c.ensureConfig()
		if err != nil {
			return err
		}
		return fn(identity.NewService(store.DB(), cfg))
	})
}

func newUsersPendingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List accounts awaiting approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withIdentity(func(svc *identity.Service) error {
				users, err := svc.PendingUsers(cmd.Context())
				if err != nil {
					return err
				}
				if len(users) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No accounts awaiting approval")
					return nil
				}

				rows := make([][]string, 0, len(users))
				for _, user := range users {
					rows = append(rows, []string{
						shortID(user.ID),
						user.Username,
						user.Email,
						user.CreatedAt.Local().Format(time.RFC1123),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Username", "Email", "Signed Up"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newUsersApproveCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "approve <user-id>",
		Short: "Grant a role to a pending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withIdentity(func(svc *identity.Service) error {
				role := policy.ParseRole(roleFlag)
				if err := svc.Approve(cmd.Context(), args[0], role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Granted role %s\n", role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&roleFlag, "role", "user", "Role to grant (user or admin)")
	return cmd
}
