// Package admin holds project and role administration: role toggles that are
// always followed by a members refetch, and the bulk project editor save.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"callcenter-go/internal/logger"
	"callcenter-go/internal/types"
)

var ErrUnknownRole = errors.New("unknown project role")

// API is the subset of the backend client used here.
type API interface {
	ToggleUserRole(ctx context.Context, projectID, userID int64, role string) error
	Members(ctx context.Context, projectID int64) ([]types.Member, error)
	UserRole(ctx context.Context, projectID int64) (types.UserRole, error)

	CreateProject(ctx context.Context, p types.Project) (types.Project, error)
	UpdateProject(ctx context.Context, p types.Project) (types.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	CreateQuestion(ctx context.Context, projectID int64, q types.Question) (types.Question, error)
	UpdateQuestion(ctx context.Context, projectID int64, q types.Question) (types.Question, error)
	DeleteQuestion(ctx context.Context, projectID, questionID int64) error
	CreateChoice(ctx context.Context, projectID, questionID int64, ch types.Choice) (types.Choice, error)
	UpdateChoice(ctx context.Context, projectID, questionID int64, ch types.Choice) (types.Choice, error)
	DeleteChoice(ctx context.Context, projectID, questionID, choiceID int64) error
}

// OppositeRole flips caller and contact.
func OppositeRole(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case types.ProjectRoleCaller:
		return types.ProjectRoleContact, nil
	case types.ProjectRoleContact:
		return types.ProjectRoleCaller, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

type Service struct {
	api API
	log *logger.Logger
}

func New(api API, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{api: api, log: log}
}

// ToggleRole moves userID to the opposite of currentRole and returns the
// refetched member list. The POST response is ignored; only the refetch is
// trusted.
func (s *Service) ToggleRole(ctx context.Context, projectID, userID int64, currentRole string) ([]types.Member, error) {
	next, err := OppositeRole(currentRole)
	if err != nil {
		return nil, err
	}
	if err := s.api.ToggleUserRole(ctx, projectID, userID, next); err != nil {
		return nil, fmt.Errorf("toggle role of user %d: %w", userID, err)
	}
	s.log.WithField("project_id", projectID).WithField("user_id", userID).WithField("role", next).Info("role toggled")

	members, err := s.api.Members(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("refetch members: %w", err)
	}
	return members, nil
}

func (s *Service) Members(ctx context.Context, projectID int64) ([]types.Member, error) {
	return s.api.Members(ctx, projectID)
}

// MyRole is the signed-in user's role within projectID.
func (s *Service) MyRole(ctx context.Context, projectID int64) (types.UserRole, error) {
	return s.api.UserRole(ctx, projectID)
}

// SaveProject writes the project and then every question and choice: items
// with an id are updated, the rest created. Saving is not transactional; it
// keeps going past failures and returns them all joined. The returned project
// carries whatever ids the backend assigned.
func (s *Service) SaveProject(ctx context.Context, p types.Project) (types.Project, error) {
	var (
		saved types.Project
		err   error
	)
	if p.ID == 0 {
		saved, err = s.api.CreateProject(ctx, types.Project{Name: p.Name, Description: p.Description})
	} else {
		saved, err = s.api.UpdateProject(ctx, types.Project{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	if err != nil {
		return p, fmt.Errorf("save project %q: %w", p.Name, err)
	}
	out := saved
	out.Questions = make([]types.Question, 0, len(p.Questions))

	var errs []error
	for _, q := range p.Questions {
		sq, err := s.saveQuestion(ctx, saved.ID, q)
		if err != nil {
			errs = append(errs, err)
			out.Questions = append(out.Questions, q)
			continue
		}
		sq.Choices = make([]types.Choice, 0, len(q.Choices))
		for _, ch := range q.Choices {
			sc, err := s.saveChoice(ctx, saved.ID, sq.ID, ch)
			if err != nil {
				errs = append(errs, err)
				sc = ch
			}
			sq.Choices = append(sq.Choices, sc)
		}
		out.Questions = append(out.Questions, sq)
	}
	if len(errs) > 0 {
		s.log.WithField("project_id", saved.ID).WithField("failures", len(errs)).Warn("project saved with errors")
	}
	return out, errors.Join(errs...)
}

func (s *Service) saveQuestion(ctx context.Context, projectID int64, q types.Question) (types.Question, error) {
	in := types.Question{ID: q.ID, Text: q.Text}
	if q.ID == 0 {
		out, err := s.api.CreateQuestion(ctx, projectID, in)
		if err != nil {
			return q, fmt.Errorf("create question %q: %w", q.Text, err)
		}
		return out, nil
	}
	out, err := s.api.UpdateQuestion(ctx, projectID, in)
	if err != nil {
		return q, fmt.Errorf("update question %d: %w", q.ID, err)
	}
	return out, nil
}

func (s *Service) saveChoice(ctx context.Context, projectID, questionID int64, ch types.Choice) (types.Choice, error) {
	if ch.ID == 0 {
		out, err := s.api.CreateChoice(ctx, projectID, questionID, ch)
		if err != nil {
			return ch, fmt.Errorf("create choice %q: %w", ch.Text, err)
		}
		return out, nil
	}
	out, err := s.api.UpdateChoice(ctx, projectID, questionID, ch)
	if err != nil {
		return ch, fmt.Errorf("update choice %d: %w", ch.ID, err)
	}
	return out, nil
}

func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	return s.api.DeleteProject(ctx, id)
}

func (s *Service) DeleteQuestion(ctx context.Context, projectID, questionID int64) error {
	return s.api.DeleteQuestion(ctx, projectID, questionID)
}

func (s *Service) DeleteChoice(ctx context.Context, projectID, questionID, choiceID int64) error {
	return s.api.DeleteChoice(ctx, projectID, questionID, choiceID)
}
