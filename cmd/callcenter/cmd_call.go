package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"callcenter-go/internal/roster"
	"callcenter-go/internal/types"
	"callcenter-go/internal/workflow"
)

// controller loads the project roster and wraps it in a call workflow for
// the signed-in user.
func (a *app) controller(cmd *cobra.Command, me types.Profile, pid int64, mark bool) (*workflow.Controller, *roster.Roster) {
	r := a.roster(pid, true)
	r.Load(cmd.Context())
	c := workflow.New(a.client, r, a.dialer, me,
		workflow.MarkInProgress(mark),
		workflow.WithLogger(a.log),
	)
	return c, r
}

func (a *app) dialerFor(mode string) (workflow.Dialer, error) {
	switch mode {
	case "", "print":
		return a.dialer, nil
	case "open":
		return workflow.CommandDialer{}, nil
	}
	return nil, fmt.Errorf("unknown --dial %q (print or open)", mode)
}

func (a *app) callCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Start, end or release calls one at a time",
		Long: `Drive the call workflow of a single contact.

Each invocation reloads the roster. The in-progress state only survives
between invocations when the backend records it, so "call end" after
"call start" needs --mark (or mark_in_progress_on_start). The interactive
"work" command keeps the state locally instead.`,
	}

	var (
		mark bool
		dial string
	)
	start := &cobra.Command{
		Use:   "start <contact-id>",
		Short: "Dial a contact assigned to you",
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
			d, err := a.dialerFor(dial)
			if err != nil {
				return err
			}
			a.dialer = d
			if !cmd.Flags().Changed("mark") {
				mark = a.cfg.MarkInProgressOnStart
			}
			c, _ := a.controller(cmd, me, pid, mark)
			if err := c.Start(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Calling contact %d.\n", id)
			return nil
		},
	}
	start.Flags().BoolVar(&mark, "mark", false, "record in_progress on the backend before dialing")
	start.Flags().StringVar(&dial, "dial", "print", "print the tel: link or open it with the system handler")

	end := &cobra.Command{
		Use:   "end <contact-id>",
		Short: "End an in-progress call and point to its feedback form",
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
			c, _ := a.controller(cmd, me, pid, false)
			route, err := c.End(cmd.Context(), id)
			if errors.Is(err, workflow.ErrInvalidTransition) {
				return fmt.Errorf("%w: contact %d has no call in progress", err, id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Call ended. Feedback: %s\n", route.Path())
			fmt.Fprintf(a.out, "  callcenter feedback %d -p %d --status <status>\n", route.ContactID, route.ProjectID)
			return nil
		},
	}

	release := &cobra.Command{
		Use:   "release <contact-id>",
		Short: "Hand a contact back to the project pool",
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
			c, _ := a.controller(cmd, me, pid, false)
			if err := c.Release(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Released contact %d.\n", id)
			return nil
		},
	}

	next := &cobra.Command{
		Use:   "next",
		Short: "Ask the backend to assign you a new contact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := a.identity()
			if err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			c, _ := a.controller(cmd, me, pid, false)
			contact, err := c.RequestNew(cmd.Context())
			if err != nil {
				return err
			}
			return a.printContacts(me, []types.Contact{contact})
		},
	}

	cmd.AddCommand(start, end, release, next)
	return cmd
}
