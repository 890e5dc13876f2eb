package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"callcenter-go/internal/authz"
	"callcenter-go/internal/logger"
	"callcenter-go/internal/roster"
	"callcenter-go/internal/types"
)

// State is the client-side call state of one contact.
type State string

const (
	Pending    State = "pending"
	InProgress State = "in_progress"
	Completed  State = "completed"
	Skipped    State = "skipped"
)

// Action is something the user can do to a contact in its current state.
type Action string

const (
	ActionStart   Action = "start"
	ActionEnd     Action = "end"
	ActionRelease Action = "release"
)

var (
	ErrBusy              = errors.New("another action is in flight for this contact")
	ErrNotAuthorized     = errors.New("contact is assigned to another caller")
	ErrInvalidTransition = errors.New("action not valid in current state")
	ErrUnknownContact    = errors.New("contact is not in the roster")
)

// API is the slice of the backend the workflow writes to.
type API interface {
	SetCallStatus(ctx context.Context, id int64, status string) error
	ReleaseContact(ctx context.Context, id int64) error
	RequestNewContact(ctx context.Context, projectID int64) (types.Contact, error)
}

// Route points at the feedback form for a finished call.
type Route struct {
	ContactID int64
	ProjectID int64
}

func (r Route) Path() string {
	return fmt.Sprintf("/feedback/%d", r.ContactID)
}

// Controller moves contacts of one roster through the call states. At most
// one mutating request per contact is in flight; other contacts proceed
// independently.
type Controller struct {
	api            API
	roster         *roster.Roster
	dialer         Dialer
	identity       types.Profile
	markInProgress bool
	log            *logger.Logger

	mu     sync.Mutex
	status map[int64]State
	busy   map[int64]struct{}
}

type Option func(*Controller)

// MarkInProgress PATCHes call_status=in_progress before dialing.
func MarkInProgress(on bool) Option {
	return func(c *Controller) { c.markInProgress = on }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func New(api API, r *roster.Roster, dialer Dialer, identity types.Profile, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		roster:   r,
		dialer:   dialer,
		identity: identity,
		log:      logger.New(),
		status:   map[int64]State{},
		busy:     map[int64]struct{}{},
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "workflow")
	return c
}

// State returns the local state of a rostered contact. Without a local entry
// the server's call_status seeds it.
func (c *Controller) State(id int64) (State, error) {
	contact, ok := c.roster.Get(id)
	if !ok {
		return "", ErrUnknownContact
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(contact), nil
}

func (c *Controller) stateLocked(contact types.Contact) State {
	if s, ok := c.status[contact.ID]; ok {
		return s
	}
	if contact.CallStatus == types.CallStatusInProgress {
		return InProgress
	}
	return Pending
}

// Actions lists what may be offered for the contact right now. Busy or
// unauthorized contacts get nothing.
func (c *Controller) Actions(id int64) []Action {
	contact, ok := c.roster.Get(id)
	if !ok || !authz.CanCall(c.identity, contact) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.busy[id]; busy {
		return nil
	}
	switch c.stateLocked(contact) {
	case Pending:
		return []Action{ActionStart, ActionRelease}
	case InProgress:
		return []Action{ActionEnd, ActionRelease}
	}
	return nil
}

// Busy reports whether an action is in flight for the contact.
func (c *Controller) Busy(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.busy[id]
	return ok
}

// begin claims the contact for one action after checking it may run.
func (c *Controller) begin(id int64, allowed ...State) (types.Contact, func(), error) {
	contact, ok := c.roster.Get(id)
	if !ok {
		return types.Contact{}, nil, ErrUnknownContact
	}
	if !authz.CanCall(c.identity, contact) {
		return types.Contact{}, nil, ErrNotAuthorized
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.busy[id]; busy {
		return types.Contact{}, nil, ErrBusy
	}
	st := c.stateLocked(contact)
	valid := false
	for _, a := range allowed {
		if st == a {
			valid = true
			break
		}
	}
	if !valid {
		return types.Contact{}, nil, fmt.Errorf("%w: contact %d is %s", ErrInvalidTransition, id, st)
	}
	c.busy[id] = struct{}{}
	return contact, func() {
		c.mu.Lock()
		delete(c.busy, id)
		c.mu.Unlock()
	}, nil
}

// Start dials the contact and marks the call in progress. When the backend
// was marked first and dialing fails, the mark is reverted to pending.
func (c *Controller) Start(ctx context.Context, id int64) error {
	contact, done, err := c.begin(id, Pending)
	if err != nil {
		return err
	}
	defer done()
	log := c.log.WithField("contact_id", id)

	if c.markInProgress {
		if err := c.api.SetCallStatus(ctx, id, types.CallStatusInProgress); err != nil {
			log.WithError(err).Warn("start call failed")
			return fmt.Errorf("start call: %w", err)
		}
	}
	if err := c.dialer.Dial(ctx, contact.Phone); err != nil {
		log.WithError(err).Warn("dial failed")
		if c.markInProgress {
			// Put the backend back in line with the local pending state.
			if rerr := c.api.SetCallStatus(ctx, id, types.CallStatusPending); rerr != nil {
				log.WithError(rerr).Error("revert call status failed")
				return errors.Join(fmt.Errorf("dial %s: %w", contact.Phone, err), fmt.Errorf("revert call status: %w", rerr))
			}
		}
		return fmt.Errorf("dial %s: %w", contact.Phone, err)
	}

	c.setState(id, InProgress)
	log.Info("call started")
	return nil
}

// End finishes an in-progress call: the backend status goes back to pending,
// the contact leaves the roster and the feedback route is returned.
func (c *Controller) End(ctx context.Context, id int64) (Route, error) {
	_, done, err := c.begin(id, InProgress)
	if err != nil {
		return Route{}, err
	}
	defer done()

	if err := c.api.SetCallStatus(ctx, id, types.CallStatusPending); err != nil {
		c.log.WithField("contact_id", id).WithError(err).Warn("end call failed")
		return Route{}, fmt.Errorf("end call: %w", err)
	}
	c.roster.Remove(id)
	c.forget(id)
	c.log.WithField("contact_id", id).WithField("state", Completed).Info("call ended")
	return Route{ContactID: id, ProjectID: c.roster.ProjectID()}, nil
}

// Release hands the contact back without completing a call.
func (c *Controller) Release(ctx context.Context, id int64) error {
	_, done, err := c.begin(id, Pending, InProgress)
	if err != nil {
		return err
	}
	defer done()

	if err := c.api.ReleaseContact(ctx, id); err != nil {
		c.log.WithField("contact_id", id).WithError(err).Warn("release failed")
		return fmt.Errorf("release contact: %w", err)
	}
	c.roster.Remove(id)
	c.forget(id)
	c.log.WithField("contact_id", id).WithField("state", Skipped).Info("contact released")
	return nil
}

// RequestNew asks for another assignment and refetches the roster, since
// assignments drive authorization.
func (c *Controller) RequestNew(ctx context.Context) (types.Contact, error) {
	var got types.Contact
	err := c.roster.Refetch(ctx, func(ctx context.Context) error {
		var err error
		got, err = c.api.RequestNewContact(ctx, c.roster.ProjectID())
		return err
	})
	if err != nil {
		return types.Contact{}, fmt.Errorf("request new contact: %w", err)
	}
	return got, nil
}

func (c *Controller) setState(id int64, s State) {
	c.mu.Lock()
	c.status[id] = s
	c.mu.Unlock()
}

func (c *Controller) forget(id int64) {
	c.mu.Lock()
	delete(c.status, id)
	c.mu.Unlock()
}
