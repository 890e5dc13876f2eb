// Package apitest is an in-process fake of the call-center backend used by
// tests across the module.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"callcenter-go/internal/logger"
	"callcenter-go/internal/types"
)

// Recorded is one request the fake received.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

type failure struct {
	status int
	body   string
}

type hold struct {
	entered chan struct{}
	release chan struct{}
}

type otpUser struct {
	code    string
	profile types.Profile
}

// Server is a stateful fake backend. Fields are guarded by mu; use the helper
// methods from tests.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	nextID      int64
	tokens      map[string]types.Profile
	otp         map[string]otpUser
	projects    map[int64]*types.Project
	contacts    map[int64]*types.Contact
	pool        map[int64][]types.Contact
	members     map[int64][]types.Member
	calls       []types.CallRecord
	submissions []types.CallSubmission
	stats       map[int64]types.Statistics
	requests    []Recorded
	failures    map[string]failure
	holds       map[string]*hold
	log         *logger.Logger
}

// New starts a fake backend. Call Close when done.
func New() *Server {
	s := &Server{
		nextID:   1000,
		tokens:   map[string]types.Profile{},
		otp:      map[string]otpUser{},
		projects: map[int64]*types.Project{},
		contacts: map[int64]*types.Contact{},
		pool:     map[int64][]types.Contact{},
		members:  map[int64][]types.Member{},
		stats:    map[int64]types.Statistics{},
		failures: map[string]failure{},
		holds:    map[string]*hold{},
		log:      logger.Discard(),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record, s.inject)

	r.HandleFunc("/api/request-otp/", s.requestOTP).Methods(http.MethodPost)
	r.HandleFunc("/api/verify-otp/", s.verifyOTP).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.auth)

	api.HandleFunc("/projects/", s.listProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects/", s.createProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id:[0-9]+}/", s.getProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}/", s.updateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id:[0-9]+}/", s.deleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id:[0-9]+}/questions/", s.createQuestion).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id:[0-9]+}/questions/{qid:[0-9]+}/", s.updateQuestion).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id:[0-9]+}/questions/{qid:[0-9]+}/", s.deleteQuestion).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id:[0-9]+}/questions/{qid:[0-9]+}/choices/", s.createChoice).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id:[0-9]+}/questions/{qid:[0-9]+}/choices/{cid:[0-9]+}/", s.updateChoice).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id:[0-9]+}/questions/{qid:[0-9]+}/choices/{cid:[0-9]+}/", s.deleteChoice).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id:[0-9]+}/statistics/", s.statistics).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}/toggle-user-role/", s.toggleRole).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id:[0-9]+}/members/", s.listMembers).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}/user-role/", s.userRole).Methods(http.MethodGet)

	api.HandleFunc("/contacts/", s.listContacts).Methods(http.MethodGet)
	api.HandleFunc("/contacts/", s.createContact).Methods(http.MethodPost)
	api.HandleFunc("/contacts/request_new/", s.requestNew).Methods(http.MethodPost)
	api.HandleFunc("/contacts/{id:[0-9]+}/", s.patchContact).Methods(http.MethodPatch)
	api.HandleFunc("/contacts/{id:[0-9]+}/", s.deleteContact).Methods(http.MethodDelete)
	api.HandleFunc("/contacts/{id:[0-9]+}/release/", s.releaseContact).Methods(http.MethodPost)

	api.HandleFunc("/calls/submit_call/", s.submitCall).Methods(http.MethodPost)
	api.HandleFunc("/calls/", s.listCalls).Methods(http.MethodGet)
	api.HandleFunc("/calls/{id:[0-9]+}/", s.patchCall).Methods(http.MethodPatch)

	api.HandleFunc("/admin/dashboard/", s.dashboard).Methods(http.MethodGet)
	api.HandleFunc("/excel/{kind}/", s.excel).Methods(http.MethodGet)
	return r
}

// ---- middleware ----

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.log.WithRequest(r).Debug("fake backend request")

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		h := s.holds[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if h != nil {
			h.entered <- struct{}{}
			<-h.release
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		f, ok := s.failures[key]
		s.mu.Unlock()
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) caller(r *http.Request) types.Profile {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

// ---- test helpers ----

// SignIn registers a token for profile and returns it.
func (s *Server) SignIn(p types.Profile) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := fmt.Sprintf("tok-%d", p.UserID)
	s.tokens[token] = p
	return token
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]types.Profile{}
}

// AddOTPUser makes phone/code a valid OTP pair that signs in as p.
func (s *Server) AddOTPUser(phone, code string, p types.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otp[phone] = otpUser{code: code, profile: p}
}

func (s *Server) AddProject(p types.Project) types.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.projects[p.ID] = &p
	return p
}

func (s *Server) Project(id int64) (types.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return types.Project{}, false
	}
	return *p, true
}

func (s *Server) AddContact(c types.Contact) types.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	if c.CallStatus == "" {
		c.CallStatus = types.CallStatusPending
	}
	s.contacts[c.ID] = &c
	return c
}

func (s *Server) Contact(id int64) (types.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return types.Contact{}, false
	}
	return *c, true
}

// AddPool queues an unassigned contact handed out by request_new.
func (s *Server) AddPool(projectID int64, c types.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	c.Project = projectID
	s.pool[projectID] = append(s.pool[projectID], c)
}

func (s *Server) SetMembers(projectID int64, m []types.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[projectID] = append([]types.Member(nil), m...)
}

func (s *Server) AddCall(c types.CallRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.calls = append(s.calls, c)
}

func (s *Server) SetStatistics(projectID int64, st types.Statistics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[projectID] = st
}

func (s *Server) Submissions() []types.CallSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.CallSubmission(nil), s.submissions...)
}

// Fail makes every method+path request answer status with body until Recover.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Hold parks requests to method+path until release is called. entered
// receives once per parked request.
func (s *Server) Hold(method, path string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}, 16), release: make(chan struct{})}
	s.mu.Lock()
	s.holds[method+" "+path] = h
	s.mu.Unlock()
	var once sync.Once
	return h.entered, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, method+" "+path)
			s.mu.Unlock()
			close(h.release)
		})
	}
}

// Requests returns what was received, optionally filtered by method and path.
func (s *Server) Requests(method, path string) []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Recorded
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// ---- handlers ----

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": msg})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (s *Server) requestOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Phone string `json:"phone"`
	}
	if err := decode(r, &in); err != nil || in.Phone == "" {
		badRequest(w, "phone is required")
		return
	}
	s.mu.Lock()
	_, ok := s.otp[in.Phone]
	s.mu.Unlock()
	if !ok {
		badRequest(w, "unknown phone")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "OTP sent"})
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid body")
		return
	}
	s.mu.Lock()
	u, ok := s.otp[in.Phone]
	s.mu.Unlock()
	if !ok || u.code != in.OTP {
		badRequest(w, "invalid otp")
		return
	}
	token := s.SignIn(u.profile)
	writeJSON(w, http.StatusOK, types.VerifyOTPResponse{
		Token:    token,
		UserID:   u.profile.UserID,
		Username: u.profile.Username,
		Phone:    u.profile.Phone,
		Role:     u.profile.Role,
	})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]types.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(out), "results": out})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var p types.Project
	if err := decode(r, &p); err != nil || p.Name == "" {
		badRequest(w, "name is required")
		return
	}
	p.ID = 0
	p.Questions = nil
	writeJSON(w, http.StatusCreated, s.AddProject(p))
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Project(pathID(r, "id"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var in types.Project
	if err := decode(r, &in); err != nil || in.Name == "" {
		badRequest(w, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[pathID(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	p.Name, p.Description = in.Name, in.Description
	writeJSON(w, http.StatusOK, *p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := s.projects[id]; !ok {
		notFound(w)
		return
	}
	delete(s.projects, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createQuestion(w http.ResponseWriter, r *http.Request) {
	var q types.Question
	if err := decode(r, &q); err != nil || q.Text == "" {
		badRequest(w, "text is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[pathID(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	q.ID = s.id()
	q.Choices = nil
	p.Questions = append(p.Questions, q)
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) findQuestion(r *http.Request) (*types.Project, int) {
	p, ok := s.projects[pathID(r, "id")]
	if !ok {
		return nil, -1
	}
	qid := pathID(r, "qid")
	for i := range p.Questions {
		if p.Questions[i].ID == qid {
			return p, i
		}
	}
	return p, -1
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var in types.Question
	if err := decode(r, &in); err != nil || in.Text == "" {
		badRequest(w, "text is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findQuestion(r)
	if i < 0 {
		notFound(w)
		return
	}
	p.Questions[i].Text = in.Text
	writeJSON(w, http.StatusOK, p.Questions[i])
}

func (s *Server) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findQuestion(r)
	if i < 0 {
		notFound(w)
		return
	}
	p.Questions = append(p.Questions[:i], p.Questions[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createChoice(w http.ResponseWriter, r *http.Request) {
	var c types.Choice
	if err := decode(r, &c); err != nil || c.Text == "" {
		badRequest(w, "text is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findQuestion(r)
	if i < 0 {
		notFound(w)
		return
	}
	c.ID = s.id()
	p.Questions[i].Choices = append(p.Questions[i].Choices, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateChoice(w http.ResponseWriter, r *http.Request) {
	var in types.Choice
	if err := decode(r, &in); err != nil || in.Text == "" {
		badRequest(w, "text is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findQuestion(r)
	if i < 0 {
		notFound(w)
		return
	}
	cid := pathID(r, "cid")
	for j := range p.Questions[i].Choices {
		if p.Questions[i].Choices[j].ID == cid {
			p.Questions[i].Choices[j].Text = in.Text
			writeJSON(w, http.StatusOK, p.Questions[i].Choices[j])
			return
		}
	}
	notFound(w)
}

func (s *Server) deleteChoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findQuestion(r)
	if i < 0 {
		notFound(w)
		return
	}
	cid := pathID(r, "cid")
	choices := p.Questions[i].Choices
	for j := range choices {
		if choices[j].ID == cid {
			p.Questions[i].Choices = append(choices[:j], choices[j+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	notFound(w)
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	s.mu.Lock()
	st, ok := s.stats[id]
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	st.ProjectID = id
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) toggleRole(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if in.Role != types.ProjectRoleCaller && in.Role != types.ProjectRoleContact {
		badRequest(w, "invalid role")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.members[pathID(r, "id")]
	for i := range ms {
		if ms[i].UserID == in.UserID {
			ms[i].Role = in.Role
			ms[i].DisplayRole = displayRole(in.Role)
			writeJSON(w, http.StatusOK, ms[i])
			return
		}
	}
	notFound(w)
}

func displayRole(role string) string {
	if role == types.ProjectRoleCaller {
		return "Caller"
	}
	return "Contact"
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]types.Member(nil), s.members[pathID(r, "id")]...)
	s.mu.Unlock()
	if out == nil {
		out = []types.Member{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": out})
}

func (s *Server) userRole(w http.ResponseWriter, r *http.Request) {
	me := s.caller(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members[pathID(r, "id")] {
		if m.UserID == me.UserID {
			writeJSON(w, http.StatusOK, types.UserRole{UserID: m.UserID, Role: m.Role, DisplayRole: m.DisplayRole})
			return
		}
	}
	notFound(w)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	pid, _ := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	s.mu.Lock()
	out := []types.Contact{}
	for _, c := range s.contacts {
		if pid == 0 || c.Project == pid {
			out = append(out, *c)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(out), "results": out})
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var in types.ContactInput
	if err := decode(r, &in); err != nil || in.Phone == "" || in.FullName == "" {
		badRequest(w, "full_name and phone are required")
		return
	}
	c := s.AddContact(types.Contact{
		Project:             in.Project,
		FullName:            in.FullName,
		Phone:               in.Phone,
		Address:             in.Address,
		AssignedCallerPhone: in.AssignedCallerPhone,
		CustomFields:        in.CustomFields,
	})
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) patchContact(w http.ResponseWriter, r *http.Request) {
	var in map[string]interface{}
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[pathID(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	for k, v := range in {
		str, _ := v.(string)
		switch k {
		case "call_status":
			if str != types.CallStatusPending && str != types.CallStatusInProgress {
				badRequest(w, "invalid call_status")
				return
			}
			c.CallStatus = str
		case "full_name":
			c.FullName = str
		case "phone":
			c.Phone = str
		case "address":
			c.Address = str
		case "assigned_caller_phone":
			c.AssignedCallerPhone = str
		}
	}
	writeJSON(w, http.StatusOK, *c)
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := s.contacts[id]; !ok {
		notFound(w)
		return
	}
	delete(s.contacts, id)
	w.WriteHeader(http.StatusNoContent)
}

// releaseContact drops the contact from the caller's list and returns it to
// the project pool.
func (s *Server) releaseContact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	c, ok := s.contacts[id]
	if !ok {
		notFound(w)
		return
	}
	delete(s.contacts, id)
	released := *c
	released.AssignedCallerPhone = ""
	released.CallStatus = types.CallStatusPending
	s.pool[c.Project] = append(s.pool[c.Project], released)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "released"})
}

func (s *Server) requestNew(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProjectID int64 `json:"project_id"`
	}
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid body")
		return
	}
	me := s.caller(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.pool[in.ProjectID]
	if len(q) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No contacts available."})
		return
	}
	c := q[0]
	s.pool[in.ProjectID] = q[1:]
	c.AssignedCallerPhone = me.Phone
	s.contacts[c.ID] = &c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) submitCall(w http.ResponseWriter, r *http.Request) {
	var in types.CallSubmission
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if in.CallStatus == "" {
		badRequest(w, "call_status is required")
		return
	}
	me := s.caller(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, in)
	rec := types.CallRecord{
		ID:            s.id(),
		Contact:       in.Contact,
		Project:       in.Project,
		Caller:        me.Username,
		CallStatus:    in.CallStatus,
		CallResult:    in.CallResult,
		Notes:         in.Notes,
		FollowUpDate:  in.FollowUpDate,
		FollowUpNotes: in.FollowUpNotes,
	}
	if in.CallDuration != nil {
		rec.CallDuration = *in.CallDuration
	}
	s.calls = append(s.calls, rec)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listCalls(w http.ResponseWriter, r *http.Request) {
	pid, _ := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	s.mu.Lock()
	out := []types.CallRecord{}
	for _, c := range s.calls {
		if pid == 0 || c.Project == pid {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(out), "results": out})
}

func (s *Server) patchCall(w http.ResponseWriter, r *http.Request) {
	var in types.CallUpdate
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	for i := range s.calls {
		if s.calls[i].ID != id {
			continue
		}
		c := &s.calls[i]
		if in.CallStatus != "" {
			c.CallStatus = in.CallStatus
		}
		if in.CallResult != "" {
			c.CallResult = in.CallResult
		}
		if in.Notes != "" {
			c.Notes = in.Notes
		}
		if in.FollowUpDate != "" {
			c.FollowUpDate = in.FollowUpDate
		}
		if in.FollowUpNotes != "" {
			c.FollowUpNotes = in.FollowUpNotes
		}
		writeJSON(w, http.StatusOK, *c)
		return
	}
	notFound(w)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	if !s.caller(r).Admin() {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Admins only."})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := types.Dashboard{
		TotalProjects: len(s.projects),
		TotalContacts: len(s.contacts),
		TotalCalls:    len(s.calls),
		StatusCounts:  map[string]int{},
	}
	callers := map[string]bool{}
	for _, c := range s.calls {
		d.StatusCounts[c.CallStatus]++
		callers[c.Caller] = true
	}
	d.TotalCallers = len(callers)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) excel(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	s.mu.Lock()
	var rows [][]interface{}
	switch kind {
	case "contacts":
		rows = append(rows, []interface{}{"ID", "Full name", "Phone", "Assigned caller"})
		ids := make([]int64, 0, len(s.contacts))
		for id := range s.contacts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			c := s.contacts[id]
			rows = append(rows, []interface{}{c.ID, c.FullName, c.Phone, c.AssignedCallerPhone})
		}
	case "calls":
		rows = append(rows, []interface{}{"ID", "Contact", "Status", "Result"})
		for _, c := range s.calls {
			rows = append(rows, []interface{}{c.ID, c.Contact, c.CallStatus, c.CallResult})
		}
	default:
		s.mu.Unlock()
		notFound(w)
		return
	}
	s.mu.Unlock()

	data, err := workbook(kind, rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, kind))
	_, _ = w.Write(data)
}
