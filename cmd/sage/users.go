package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spend-sage/internal/cli"
	"github.com/Veraticus/spend-sage/internal/model"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users and their financial profile",
	}

	cmd.AddCommand(usersAddCmd())
	cmd.AddCommand(usersListCmd())
	cmd.AddCommand(usersShowCmd())

	return cmd
}

func usersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add a user with goals and a monthly budget",
		Example: `  sage users add alice --email alice@example.com \
    --goal "save for a house" --goal "cut takeout" --budget 1500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			email, _ := cmd.Flags().GetString("email")
			goals, _ := cmd.Flags().GetStringArray("goal")
			budget, _ := cmd.Flags().GetFloat64("budget")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user := &model.User{
				Username: args[0],
				Email:    email,
				Goals:    goals,
				Budget:   budget,
			}
			if err := store.CreateUser(ctx, user); err != nil {
				return fmt.Errorf("failed to add user: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added user %s (%s)", user.Username, user.ID)))
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().StringArray("goal", nil, "Financial goal (repeatable)")
	cmd.Flags().Float64("budget", 0, "Monthly budget")

	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			users, err := store.ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No users yet. Add one with 'sage users add'."))
				return nil
			}

			fmt.Fprintln(out, cli.TableHeaderStyle.Render(fmt.Sprintf("%-20s %-30s %10s", "USERNAME", "EMAIL", "BUDGET")))
			for _, u := range users {
				fmt.Fprintln(out, cli.TableCellStyle.Render(fmt.Sprintf("%-20s %-30s %10.2f", u.Username, u.Email, u.Budget)))
			}
			return nil
		},
	}
}

func usersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <username>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := store.LookupUser(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatUser(user))
			return nil
		},
	}
}

func formatUser(user *model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:      %s\n", user.ID)
	fmt.Fprintf(&b, "Email:   %s\n", user.Email)
	fmt.Fprintf(&b, "Budget:  %.2f\n", user.Budget)
	fmt.Fprintf(&b, "Created: %s\n", user.CreatedAt.Format("2006-01-02"))
	if len(user.Goals) == 0 {
		b.WriteString("Goals:   none")
	} else {
		b.WriteString("Goals:")
		for _, g := range user.Goals {
			fmt.Fprintf(&b, "\n  - %s", g)
		}
	}
	return cli.RenderBox(user.Username, b.String())
}
