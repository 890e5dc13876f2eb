package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"callcenter-go/internal/feedback"
)

// parseAnswers reads question=choice pairs.
func parseAnswers(pairs []string) (map[int64]int64, error) {
	out := map[int64]int64{}
	for _, p := range pairs {
		q, c, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q: want question=choice", p)
		}
		qid, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("answer %q: bad question id", p)
		}
		cid, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("answer %q: bad choice id", p)
		}
		out[qid] = cid
	}
	return out, nil
}

func (a *app) feedbackCmd() *cobra.Command {
	var (
		form     feedback.Form
		duration int
		answers  []string
	)
	cmd := &cobra.Command{
		Use:   "feedback <contact-id>",
		Short: "Record the outcome of a call",
		Long: fmt.Sprintf(`Record the outcome of a call.

--status is one of %s. --result (%s) is required when the
call was answered and ignored otherwise.`,
			strings.Join(feedback.Statuses(), ", "), strings.Join(feedback.Results(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.identity(); err != nil {
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
			form.ContactID, form.ProjectID = id, pid
			if cmd.Flags().Changed("duration") {
				form.Duration = &duration
			}
			if form.Answers, err = parseAnswers(answers); err != nil {
				return err
			}
			if err := feedback.Submit(cmd.Context(), a.client, form); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Feedback saved for contact %d.\n", id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Status, "status", "", "call status")
	f.StringVar(&form.Result, "result", "", "call result (answered calls)")
	f.StringVar(&form.Notes, "notes", "", "free-text notes")
	f.IntVar(&duration, "duration", 0, "call duration in seconds")
	f.StringVar(&form.FollowUpDate, "follow-up", "", "follow-up date (YYYY-MM-DD)")
	f.StringVar(&form.FollowUpNotes, "follow-up-notes", "", "follow-up notes")
	f.StringArrayVar(&answers, "answer", nil, "question=choice, repeatable")
	return cmd
}
