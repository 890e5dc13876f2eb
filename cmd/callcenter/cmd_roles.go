package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callcenter-go/internal/types"
)

func (a *app) printMembers(members []types.Member) error {
	if a.asJSON {
		return a.printJSON(members)
	}
	t := a.table("USER", "NAME", "PHONE", "ROLE")
	for _, m := range members {
		role := m.DisplayRole
		if role == "" {
			role = m.Role
		}
		t.row(m.UserID, m.Username, m.Phone, role)
	}
	return t.flush()
}

func (a *app) rolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Project roles: members, toggle, your own role",
	}

	members := &cobra.Command{
		Use:   "members",
		Short: "List project members and their roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			ms, err := a.admin().Members(cmd.Context(), pid)
			if err != nil {
				return err
			}
			return a.printMembers(ms)
		},
	}

	var current string
	toggle := &cobra.Command{
		Use:   "toggle <user-id>",
		Short: "Switch a member between caller and contact",
		Long: `Switch a member between caller and contact. The member list is
fetched again afterwards and printed as the backend reports it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			uid, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc := a.admin()
			if current == "" {
				ms, err := svc.Members(cmd.Context(), pid)
				if err != nil {
					return err
				}
				for _, m := range ms {
					if m.UserID == uid {
						current = m.Role
					}
				}
				if current == "" {
					return fmt.Errorf("user %d is not a member of project %d", uid, pid)
				}
			}
			ms, err := svc.ToggleRole(cmd.Context(), pid, uid, current)
			if err != nil {
				return err
			}
			return a.printMembers(ms)
		},
	}
	toggle.Flags().StringVar(&current, "from", "", "current role (looked up when omitted)")

	me := &cobra.Command{
		Use:   "me",
		Short: "Show your role in the project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			role, err := a.admin().MyRole(cmd.Context(), pid)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(role)
			}
			fmt.Fprintln(a.out, role.DisplayRole)
			return nil
		},
	}

	cmd.AddCommand(members, toggle, me)
	return cmd
}
