package roster

import (
	"context"
	"strings"
	"sync"

	"callcenter-go/internal/authz"
	"callcenter-go/internal/logger"
	"callcenter-go/internal/types"
)

// Source fetches a project's contacts from the backend.
type Source interface {
	ListContacts(ctx context.Context, projectID int64) ([]types.Contact, error)
}

// Roster is the cached contact list of one project. Reads fail soft: a failed
// fetch leaves an empty roster, never a stale one.
type Roster struct {
	src        Source
	projectID  int64
	matchPhone bool
	log        *logger.Logger

	mu       sync.RWMutex
	contacts []types.Contact
}

type Option func(*Roster)

// MatchPhone makes Filter also match on phone numbers.
func MatchPhone() Option {
	return func(r *Roster) { r.matchPhone = true }
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Roster) { r.log = l }
}

func New(src Source, projectID int64, opts ...Option) *Roster {
	r := &Roster{src: src, projectID: projectID, log: logger.New()}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.With("component", "roster").With("project_id", projectID)
	return r
}

func (r *Roster) ProjectID() int64 { return r.projectID }

// Load replaces the roster with a fresh fetch and returns it. Any failure
// yields an empty roster.
func (r *Roster) Load(ctx context.Context) []types.Contact {
	contacts, err := r.src.ListContacts(ctx, r.projectID)
	if err != nil {
		r.log.WithError(err).Warn("roster fetch failed, showing empty list")
		contacts = nil
	}
	r.mu.Lock()
	r.contacts = append([]types.Contact(nil), contacts...)
	r.mu.Unlock()
	r.log.WithField("count", len(contacts)).Debug("roster loaded")
	return r.All()
}

// Refetch runs mutate and, when it succeeds, reloads the roster. Every
// mutation touching assignment or role goes through here so authorization is
// always evaluated against server truth.
func (r *Roster) Refetch(ctx context.Context, mutate func(ctx context.Context) error) error {
	if err := mutate(ctx); err != nil {
		return err
	}
	r.Load(ctx)
	return nil
}

// All returns a copy of the fetched contacts.
func (r *Roster) All() []types.Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.Contact{}, r.contacts...)
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contacts)
}

func (r *Roster) Get(id int64) (types.Contact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.contacts {
		if c.ID == id {
			return c, true
		}
	}
	return types.Contact{}, false
}

// Remove drops a contact locally and reports whether it was present.
func (r *Roster) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.contacts {
		if c.ID == id {
			r.contacts = append(r.contacts[:i:i], r.contacts[i+1:]...)
			return true
		}
	}
	return false
}

// Filter returns the contacts matching term without touching the roster.
func (r *Roster) Filter(term string) []types.Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Filter(r.contacts, term, r.matchPhone)
}

// Callable returns the contacts identity may call.
func (r *Roster) Callable(identity types.Profile) []types.Contact {
	return authz.Callable(identity, r.All())
}

// Filter is a case-insensitive substring match on full name, and on phone
// when matchPhone is set. A term made only of phone characters is compared
// digits-only so formatting does not matter. An empty term matches everything.
func Filter(contacts []types.Contact, term string, matchPhone bool) []types.Contact {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]types.Contact, 0, len(contacts))
	var digits string
	if isPhoneTerm(term) {
		digits = authz.NormalizePhone(term)
	}
	for _, c := range contacts {
		switch {
		case term == "",
			strings.Contains(strings.ToLower(c.FullName), term),
			matchPhone && strings.Contains(c.Phone, term),
			matchPhone && digits != "" && strings.Contains(authz.NormalizePhone(c.Phone), digits):
			out = append(out, c)
		}
	}
	return out
}

func isPhoneTerm(term string) bool {
	if term == "" {
		return false
	}
	for _, r := range term {
		if !strings.ContainsRune("0123456789 +-()", r) {
			return false
		}
	}
	return true
}
