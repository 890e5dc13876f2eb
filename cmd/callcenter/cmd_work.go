package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"callcenter-go/internal/authz"
	"callcenter-go/internal/feedback"
	"callcenter-go/internal/roster"
	"callcenter-go/internal/types"
	"callcenter-go/internal/workflow"
)

const workHelp = `Commands:
  list [term]     show contacts, optionally filtered by name or phone
  start <id>      dial a contact
  end <id>        end the call and fill in feedback
  release <id>    hand the contact back to the pool
  next            get a new contact assigned
  refresh         reload the roster
  help            show this help
  quit            leave`

type workSession struct {
	a      *app
	me     types.Profile
	pid    int64
	ctrl   *workflow.Controller
	roster *roster.Roster
}

func (a *app) workCmd() *cobra.Command {
	var mark bool
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Interactive calling session for one project",
		Long:  "Interactive calling session. Call states are kept for the whole session.\n\n" + workHelp,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := a.identity()
			if err != nil {
				return err
			}
			pid, err := a.project()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("mark") {
				mark = a.cfg.MarkInProgressOnStart
			}
			ctrl, r := a.controller(cmd, me, pid, mark)
			s := &workSession{a: a, me: me, pid: pid, ctrl: ctrl, roster: r}
			return s.loop(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&mark, "mark", false, "record in_progress on the backend before dialing")
	return cmd
}

func (s *workSession) loop(ctx context.Context) error {
	s.list("")
	for {
		line, err := s.a.prompt("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		verb, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch strings.ToLower(verb) {
		case "":
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(s.a.out, workHelp)
		case "list", "ls":
			s.list(arg)
		case "refresh":
			s.roster.Load(ctx)
			s.list("")
		case "next":
			c, err := s.ctrl.RequestNew(ctx)
			if err != nil {
				s.notify(err)
				continue
			}
			fmt.Fprintf(s.a.out, "Assigned %s (#%d).\n", c.FullName, c.ID)
		case "start", "end", "release":
			id, err := parseID(arg)
			if err != nil {
				s.notify(err)
				continue
			}
			s.act(ctx, verb, id)
		default:
			fmt.Fprintf(s.a.out, "unknown command %q, try help\n", verb)
		}
	}
}

func (s *workSession) act(ctx context.Context, verb string, id int64) {
	switch verb {
	case "start":
		if err := s.ctrl.Start(ctx, id); err != nil {
			s.notify(err)
			return
		}
		fmt.Fprintf(s.a.out, "Calling #%d. Type \"end %d\" when done.\n", id, id)
	case "end":
		route, err := s.ctrl.End(ctx, id)
		if err != nil {
			s.notify(err)
			return
		}
		fmt.Fprintf(s.a.out, "Call ended (%s).\n", route.Path())
		s.collectFeedback(ctx, route)
	case "release":
		if err := s.ctrl.Release(ctx, id); err != nil {
			s.notify(err)
			return
		}
		fmt.Fprintf(s.a.out, "Released #%d.\n", id)
	}
}

// collectFeedback prompts for the form until it is submitted or skipped with
// an empty status.
func (s *workSession) collectFeedback(ctx context.Context, route workflow.Route) {
	for {
		status, err := s.a.prompt(fmt.Sprintf("Status [%s] (empty to skip): ", strings.Join(feedback.Statuses(), "/")))
		if err != nil || status == "" {
			fmt.Fprintf(s.a.out, "Feedback skipped; submit later with: callcenter feedback %d -p %d\n", route.ContactID, route.ProjectID)
			return
		}
		form := feedback.Form{ContactID: route.ContactID, ProjectID: route.ProjectID, Status: status}
		if status == types.StatusAnswered {
			if form.Result, err = s.a.prompt(fmt.Sprintf("Result [%s]: ", strings.Join(feedback.Results(), "/"))); err != nil {
				return
			}
		}
		if err := form.Validate(); err != nil {
			s.notify(err)
			continue
		}
		if form.Notes, err = s.a.prompt("Notes: "); err != nil {
			return
		}
		if err := feedback.Submit(ctx, s.a.client, form); err != nil {
			s.notify(err)
			continue
		}
		fmt.Fprintln(s.a.out, "Feedback saved.")
		return
	}
}

func (s *workSession) list(term string) {
	contacts := s.roster.Filter(term)
	if len(contacts) == 0 {
		fmt.Fprintln(s.a.out, "No contacts.")
		return
	}
	t := s.a.table("ID", "NAME", "PHONE", "STATE", "ACTIONS")
	for _, c := range contacts {
		state, _ := s.ctrl.State(c.ID)
		actions := "-"
		if s.ctrl.Busy(c.ID) {
			actions = "busy"
		} else if acts := s.ctrl.Actions(c.ID); len(acts) > 0 {
			names := make([]string, len(acts))
			for i, act := range acts {
				names[i] = string(act)
			}
			actions = strings.Join(names, ",")
		} else if !authz.CanCall(s.me, c) {
			actions = "assigned to " + c.AssignedCallerPhone
		}
		t.row(c.ID, c.FullName, c.Phone, state, actions)
	}
	_ = t.flush()
}

// notify prints a transient error line and keeps the session going.
func (s *workSession) notify(err error) {
	fmt.Fprintln(s.a.out, "!", describe(err))
	s.a.log.WithError(err).Debug("action failed")
}
