package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"callcenter-go/internal/authz"
	"callcenter-go/internal/dataset"
	"callcenter-go/internal/report"
	"callcenter-go/internal/roster"
	"callcenter-go/internal/types"
)

func (a *app) roster(projectID int64, matchPhone bool) *roster.Roster {
	opts := []roster.Option{roster.WithLogger(a.log)}
	if matchPhone {
		opts = append(opts, roster.MatchPhone())
	}
	return roster.New(a.client, projectID, opts...)
}

func (a *app) printContacts(me types.Profile, contacts []types.Contact) error {
	if a.asJSON {
		return a.printJSON(contacts)
	}
	t := a.table("ID", "NAME", "PHONE", "ASSIGNED", "STATUS", "CAN CALL")
	for _, c := range contacts {
		can := "no"
		if authz.CanCall(me, c) {
			can = "yes"
		}
		assigned := c.AssignedCallerPhone
		if assigned == "" {
			assigned = "-"
		}
		t.row(c.ID, c.FullName, c.Phone, assigned, c.CallStatus, can)
	}
	return t.flush()
}

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Browse and manage the contact roster of a project",
	}

	var (
		filter     string
		matchPhone bool
		callable   bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List the project's contacts",
		Long: `List the project's contacts. A failed fetch shows an empty list.

--filter matches names case-insensitively; with --match-phone it also
matches phone numbers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := a.identity()
			if err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			r := a.roster(pid, matchPhone)
			r.Load(cmd.Context())
			contacts := r.Filter(filter)
			if callable {
				contacts = authz.Callable(me, contacts)
			}
			return a.printContacts(me, contacts)
		},
	}
	list.Flags().StringVar(&filter, "filter", "", "search term")
	list.Flags().BoolVar(&matchPhone, "match-phone", false, "let --filter match phone numbers too")
	list.Flags().BoolVar(&callable, "callable", false, "only contacts you may call")

	var in types.ContactInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a contact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			in.Project = pid
			c, err := a.client.CreateContact(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created contact %d.\n", c.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.FullName, "name", "", "full name")
	create.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	create.Flags().StringVar(&in.Address, "address", "", "address")
	create.Flags().StringVar(&in.AssignedCallerPhone, "assign", "", "phone of the caller the contact is assigned to")

	var caller string
	assign := &cobra.Command{
		Use:   "assign <contact-id>",
		Short: "Assign a contact to a caller (empty --caller unassigns)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := a.identity()
			if err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r := a.roster(pid, false)
			err = r.Refetch(cmd.Context(), func(ctx context.Context) error {
				_, err := a.client.PatchContact(ctx, id, map[string]interface{}{"assigned_caller_phone": caller})
				return err
			})
			if err != nil {
				return err
			}
			c, ok := r.Get(id)
			if !ok {
				fmt.Fprintf(a.out, "Contact %d updated.\n", id)
				return nil
			}
			return a.printContacts(me, []types.Contact{c})
		},
	}
	assign.Flags().StringVar(&caller, "caller", "", "caller phone")

	del := &cobra.Command{
		Use:   "delete <contact-id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteContact(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted contact %d.\n", id)
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create contacts from the first sheet of a workbook",
		Long: `Create contacts from a workbook. Name, phone, address and assigned
caller columns are detected from the header row; rows without a phone are
skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			res, err := dataset.Import(cmd.Context(), a.client, a.log, args[0], pid)
			fmt.Fprintf(a.out, "Imported %d of %d contacts (%d failed).\n", res.Created, res.Read, res.Failed)
			return err
		},
	}

	var exportFilter string
	export := &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the (filtered) roster to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			r := a.roster(pid, true)
			r.Load(cmd.Context())
			contacts := r.Filter(exportFilter)
			if err := report.ExportRoster(contacts, args[0]); err != nil {
				return err
			}
			a.log.WithField("path", args[0]).WithField("count", len(contacts)).Info("roster exported")
			fmt.Fprintf(a.out, "Exported %d contacts to %s.\n", len(contacts), args[0])
			return nil
		},
	}
	export.Flags().StringVar(&exportFilter, "filter", "", "search term (name or phone)")

	cmd.AddCommand(list, create, assign, del, importCmd, export)
	return cmd
}
