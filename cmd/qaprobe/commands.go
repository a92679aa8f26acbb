package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qa-testbed/testbed-api/pkg/client"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("ok=%v version=%s ts=%s\n", h.OK, h.Version, h.TS)
			return nil
		},
	}
}

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "User CRUD operations",
	}

	var (
		page, pageSize                        int
		search, sortBy, sortDir, status, role string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users with filtering, sorting and pagination",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			result, err := c.Users(cmd.Context(), client.UsersParams{
				Page:     page,
				PageSize: pageSize,
				Search:   search,
				SortBy:   sortBy,
				SortDir:  sortDir,
				Status:   status,
				Role:     role,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tUPDATED")
			for _, u := range result.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					u.ID, u.Name, u.Email, u.Role, u.Status, u.UpdatedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			fmt.Printf("page %d/%d, %d total\n", result.Page, result.TotalPages, result.Total)
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")
	listCmd.Flags().IntVar(&pageSize, "page-size", 10, "page size")
	listCmd.Flags().StringVar(&search, "search", "", "substring match on name or email")
	listCmd.Flags().StringVar(&sortBy, "sort-by", "", "name | email | updatedAt")
	listCmd.Flags().StringVar(&sortDir, "sort-dir", "", "asc | desc")
	listCmd.Flags().StringVar(&status, "status", "", "active | inactive | pending")
	listCmd.Flags().StringVar(&role, "role", "", "User | Manager | Admin")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			u, err := c.User(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(u)
		},
	}

	var name, email, createRole, createStatus string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			u, err := c.CreateUser(cmd.Context(), client.CreateUserInput{
				Name:   name,
				Email:  email,
				Role:   createRole,
				Status: createStatus,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created %s (%s)\n", u.Name, u.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "user name")
	createCmd.Flags().StringVar(&email, "email", "", "user email")
	createCmd.Flags().StringVar(&createRole, "role", "", "User | Manager | Admin")
	createCmd.Flags().StringVar(&createStatus, "status", "", "active | inactive | pending")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("email")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}

	usersCmd.AddCommand(listCmd, getCmd, createCmd, deleteCmd)
	return usersCmd
}

func newSimulateCmd() *cobra.Command {
	simCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Hit the backend simulation endpoints",
	}

	simCmd.AddCommand(&cobra.Command{
		Use:   "slow",
		Short: "GET /api/slow (random 2-5s delay)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			r, err := c.SimulateSlow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s (%dms)\n", r.Message, r.DelayMs)
			return nil
		},
	})

	simCmd.AddCommand(&cobra.Command{
		Use:   "unreliable",
		Short: "GET /api/unreliable (50% failure)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			r, err := c.SimulateUnreliable(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(r.Message)
			return nil
		},
	})

	simCmd.AddCommand(&cobra.Command{
		Use:   "error",
		Short: "GET /api/error (always 500)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			err = c.SimulateError(cmd.Context())
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				fmt.Printf("got expected failure: status=%d body=%s\n", apiErr.Status, apiErr.Body)
				return nil
			}
			return err
		},
	})

	var ms int
	delayCmd := &cobra.Command{
		Use:   "delay",
		Short: "GET /api/delay?ms= (clamped to 10s)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			r, err := c.SimulateDelay(cmd.Context(), ms)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%dms)\n", r.Message, r.DelayMs)
			return nil
		},
	}
	delayCmd.Flags().IntVar(&ms, "ms", 1000, "requested delay in milliseconds")
	simCmd.AddCommand(delayCmd)

	simCmd.AddCommand(&cobra.Command{
		Use:   "ratelimit",
		Short: "GET /api/ratelimit (always 429)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			err = c.SimulateRateLimit(cmd.Context())
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				fmt.Printf("got expected failure: status=%d body=%s\n", apiErr.Status, apiErr.Body)
				return nil
			}
			return err
		},
	})

	return simCmd
}

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the persisted request history",
	}

	historyCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print recorded requests, most recent first",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, recorder, err := newClient()
			if err != nil {
				return err
			}
			items := recorder.Items()
			if len(items) == 0 {
				fmt.Println("history is empty")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tMETHOD\tENDPOINT\tSTATUS\tMS\tERROR")
			for _, it := range items {
				status := "-"
				if it.Status != 0 {
					status = fmt.Sprint(it.Status)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					it.Timestamp.Format("15:04:05"), it.Method, it.Endpoint, status, it.DurationMs, it.Error)
			}
			return w.Flush()
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the history and remove persisted state",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, recorder, err := newClient()
			if err != nil {
				return err
			}
			recorder.Clear()
			fmt.Println("history cleared")
			return nil
		},
	})

	return historyCmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the backend's seed data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			count, err := c.ResetData(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("reset complete, %d users restored\n", count)
			return nil
		},
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
