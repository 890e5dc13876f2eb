package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"callcenter-go/internal/actionable"
	"callcenter-go/internal/aggregator"
	"callcenter-go/internal/types"
)

func (a *app) callsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Call records: list, amend, summarize, follow-ups",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded calls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			calls, err := a.client.ListCalls(cmd.Context(), a.projectID)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(calls)
			}
			t := a.table("ID", "CONTACT", "CALLER", "STATUS", "RESULT", "FOLLOW-UP", "NOTES")
			for _, c := range calls {
				name := c.ContactName
				if name == "" {
					name = fmt.Sprintf("#%d", c.Contact)
				}
				t.row(c.ID, name, c.Caller, c.CallStatus, dash(c.CallResult), dash(c.FollowUpDate), c.Notes)
			}
			return t.flush()
		},
	}

	var upd types.CallUpdate
	patch := &cobra.Command{
		Use:   "patch <call-id>",
		Short: "Amend a recorded call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if upd == (types.CallUpdate{}) {
				return fmt.Errorf("nothing to change")
			}
			rec, err := a.client.PatchCall(cmd.Context(), id, upd)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(rec)
			}
			fmt.Fprintf(a.out, "Updated call %d.\n", rec.ID)
			return nil
		},
	}
	pf := patch.Flags()
	pf.StringVar(&upd.CallStatus, "status", "", "call status")
	pf.StringVar(&upd.CallResult, "result", "", "call result")
	pf.StringVar(&upd.Notes, "notes", "", "notes")
	pf.StringVar(&upd.FollowUpDate, "follow-up", "", "follow-up date (YYYY-MM-DD)")
	pf.StringVar(&upd.FollowUpNotes, "follow-up-notes", "", "follow-up notes")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Break calls down by status, result and caller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			calls, err := a.client.ListCalls(cmd.Context(), a.projectID)
			if err != nil {
				return err
			}
			s := aggregator.Aggregate(calls)
			if a.asJSON {
				return a.printJSON(s)
			}
			fmt.Fprintf(a.out, "Calls: %d  answered: %.0f%%  interested: %.0f%%  avg duration: %.0fs\n",
				s.TotalCalls, s.AnswerRate*100, s.InterestRate*100, s.AvgDurationSecs)
			t := a.table("BREAKDOWN", "VALUE", "COUNT")
			for _, k := range sortedKeys(s.StatusCounts) {
				t.row("status", k, s.StatusCounts[k])
			}
			for _, k := range sortedKeys(s.ResultCounts) {
				t.row("result", k, s.ResultCounts[k])
			}
			callers := make([]string, 0, len(s.ByCaller))
			for k := range s.ByCaller {
				callers = append(callers, k)
			}
			sort.Strings(callers)
			for _, k := range callers {
				t.row("caller", k, s.ByCaller[k].TotalCalls)
			}
			return t.flush()
		},
	}

	var day string
	followups := &cobra.Command{
		Use:   "followups",
		Short: "Contacts whose follow-up date is due",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.identity(); err != nil {
				return err
			}
			when := time.Now()
			if day != "" {
				var err error
				if when, err = time.Parse("2006-01-02", day); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}
			calls, err := a.client.ListCalls(cmd.Context(), a.projectID)
			if err != nil {
				return err
			}
			due := actionable.Generate(calls, when)
			if a.asJSON {
				return a.printJSON(due)
			}
			if len(due) == 0 {
				fmt.Fprintln(a.out, "No follow-ups due.")
				return nil
			}
			for _, f := range due {
				fmt.Fprintln(a.out, f)
			}
			return nil
		},
	}
	followups.Flags().StringVar(&day, "date", "", "agenda day (YYYY-MM-DD), default today")

	cmd.AddCommand(list, patch, summary, followups)
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
