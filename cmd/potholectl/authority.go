package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ompisal63/smart-pothole-system/api"
	"github.com/ompisal63/smart-pothole-system/casework"
	"github.com/ompisal63/smart-pothole-system/session"
)

func loginCmd(newEnv func() (*env, error)) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <authority-id>",
		Short: "Log in as an authority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			if password == "" {
				fmt.Print("Password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			token, err := e.client.Login(cmd.Context(), args[0], password)
			if err != nil {
				if api.IsServer(err) || api.IsUnauthorized(err) {
					return fmt.Errorf("incorrect authority ID or password")
				}
				return err
			}
			if err := e.store.Save(token); err != nil {
				return err
			}

			who := session.AuthorityID(token)
			if who == "" {
				who = args[0]
			}
			color.Green("Logged in as %s", who)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Authority password (prompted when omitted)")
	return cmd
}

func logoutCmd(newEnv func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the stored authority session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.store.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func listCmd(newEnv func() (*env, error)) *cobra.Command {
	var (
		filterMode string
		search     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints on the authority dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			manager := casework.NewManager(e.client, e.store, e.logger)

			complaints, err := manager.List(cmd.Context())
			if err != nil {
				return authorityErr(err)
			}

			filtered := casework.Filter(complaints, search,
				casework.ParseFilterMode(filterMode), time.Now())

			if len(filtered) == 0 {
				fmt.Println("No complaints")
				return nil
			}

			fmt.Printf("%-4s %-20s %-12s %-20s %s\n", "No", "Complaint ID", "Status", "Reported By", "Timestamp")
			for i, c := range filtered {
				fmt.Printf("%-4d %-20s %-12s %-20s %s\n",
					i+1, c.ComplaintID, statusBadge(c.Status), c.FullName, c.Timestamp)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filterMode, "filter", "all", "Status filter (all, today, open, resolved)")
	cmd.Flags().StringVar(&search, "search", "", "Substring match over id, name, mobile")
	return cmd
}

func showCmd(newEnv func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "show <complaint-id>",
		Short: "Show one complaint with its workflow constraints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			manager := casework.NewManager(e.client, e.store, e.logger)

			detail, err := manager.Detail(cmd.Context(), args[0])
			if err != nil {
				return authorityErr(err)
			}

			c := detail.Complaint
			fmt.Printf("Case %s\n\n", c.ComplaintID)
			fmt.Printf("  Status:       %s\n", statusBadge(c.Status))
			fmt.Printf("  Reported by:  %s (%s, %s)\n", c.FullName, c.Mobile, c.Email)
			fmt.Printf("  Location:     %s (%s, %s)\n", c.LocationDescription, c.Latitude, c.Longitude)
			fmt.Printf("  Reported at:  %s\n", c.Timestamp)
			fmt.Printf("  Evidence:     %s\n", detail.Media.ImageURL)
			if c.AssignedTo != "" {
				fmt.Printf("  Assigned to:  %s (by %s at %s)\n", c.AssignedTo, c.AssignedBy, c.AssignedAt)
			} else {
				fmt.Printf("  Assigned to:  unassigned\n")
			}
			fmt.Printf("  Last updated: %s\n\n", c.LastUpdated)
			fmt.Printf("  Allowed status:    %s\n", strings.Join(detail.Workflow.AllowedStatus, ", "))
			fmt.Printf("  Allowed assignees: %s\n", strings.Join(detail.Workflow.AllowedAssignees, ", "))
			return nil
		},
	}
}

func updateCmd(newEnv func() (*env, error)) *cobra.Command {
	var (
		status   string
		assignee string
	)

	cmd := &cobra.Command{
		Use:   "update <complaint-id>",
		Short: "Update status and assignee for one complaint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			manager := casework.NewManager(e.client, e.store, e.logger)

			// The allowed sets come from the same detail fetch the
			// update is guarded against.
			detail, err := manager.Detail(cmd.Context(), args[0])
			if err != nil {
				return authorityErr(err)
			}

			if status == "" {
				status = detail.Complaint.Status
			}
			if assignee == "" {
				assignee = detail.Complaint.AssignedTo
			}

			if err := manager.Update(cmd.Context(), args[0], status, assignee, detail.Workflow); err != nil {
				return authorityErr(err)
			}

			color.Green("Changes saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "New status (must be in the allowed set)")
	cmd.Flags().StringVar(&assignee, "assign", "", "New assignee (must be in the allowed set)")
	return cmd
}

// authorityErr rewords the unauthorized sentinel for the terminal.
func authorityErr(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("session expired or not logged in; run `%s login`", appName)
	}
	return err
}

func statusBadge(status string) string {
	switch status {
	case "OPEN":
		return color.RedString(status)
	case "RESOLVED":
		return color.GreenString(status)
	default:
		return color.YellowString(status)
	}
}
