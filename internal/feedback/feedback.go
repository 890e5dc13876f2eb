package feedback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"callcenter-go/internal/apiclient"
	"callcenter-go/internal/types"
)

var (
	ErrStatusRequired = errors.New("call status is required")
	ErrUnknownStatus  = errors.New("unknown call status")
	ErrResultRequired = errors.New("call result is required when the call was answered")
	ErrUnknownResult  = errors.New("unknown call result")
	ErrBadFollowUp    = errors.New("follow-up date must be YYYY-MM-DD")
	ErrBadDuration    = errors.New("call duration cannot be negative")
)

var statuses = []string{types.StatusAnswered, types.StatusPending, types.StatusNoAnswer, types.StatusWrongNumber}

var results = []string{types.ResultInterested, types.ResultNoTime, types.ResultNotInterested}

// Statuses lists the accepted call statuses in display order.
func Statuses() []string { return append([]string(nil), statuses...) }

// Results lists the accepted call results in display order.
func Results() []string { return append([]string(nil), results...) }

// Form is the post-call outcome for one contact.
type Form struct {
	ContactID     int64
	ProjectID     int64
	Status        string
	Result        string
	Notes         string
	Duration      *int
	FollowUpDate  string
	FollowUpNotes string
	// Answers maps question id to the selected choice id.
	Answers map[int64]int64
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Validate reports the first reason the form cannot be submitted. Only the
// status, and the result for answered calls, are mandatory.
func (f Form) Validate() error {
	switch {
	case f.Status == "":
		return ErrStatusRequired
	case !contains(statuses, f.Status):
		return fmt.Errorf("%w: %q", ErrUnknownStatus, f.Status)
	case f.Status == types.StatusAnswered && f.Result == "":
		return ErrResultRequired
	case f.Status == types.StatusAnswered && !contains(results, f.Result):
		return fmt.Errorf("%w: %q", ErrUnknownResult, f.Result)
	case f.Duration != nil && *f.Duration < 0:
		return ErrBadDuration
	}
	if f.FollowUpDate != "" {
		if _, err := time.Parse("2006-01-02", f.FollowUpDate); err != nil {
			return ErrBadFollowUp
		}
	}
	return nil
}

// Submission builds the request body. A result given for a call that was not
// answered is dropped.
func (f Form) Submission() types.CallSubmission {
	sub := types.CallSubmission{
		Contact:       f.ContactID,
		Project:       f.ProjectID,
		CallStatus:    f.Status,
		Notes:         strings.TrimSpace(f.Notes),
		CallDuration:  f.Duration,
		FollowUpDate:  f.FollowUpDate,
		FollowUpNotes: strings.TrimSpace(f.FollowUpNotes),
	}
	if f.Status == types.StatusAnswered {
		sub.CallResult = f.Result
	}
	for q, c := range f.Answers {
		sub.Answers = append(sub.Answers, types.AnswerInput{Question: q, SelectedChoice: c})
	}
	sort.Slice(sub.Answers, func(i, j int) bool { return sub.Answers[i].Question < sub.Answers[j].Question })
	return sub
}

// Submitter is the backend call that records a call outcome.
type Submitter interface {
	SubmitCall(ctx context.Context, sub types.CallSubmission) error
}

// Submit validates the form and posts it once. Server rejections carry the
// raw response body in the error.
func Submit(ctx context.Context, s Submitter, f Form) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := s.SubmitCall(ctx, f.Submission()); err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("submit feedback rejected: %s: %w", strings.TrimSpace(string(apiErr.Body)), err)
		}
		return fmt.Errorf("submit feedback: %w", err)
	}
	return nil
}
