package types

// Feedback call statuses.
const (
	StatusAnswered    = "answered"
	StatusPending     = "pending"
	StatusNoAnswer    = "no_answer"
	StatusWrongNumber = "wrong_number"
)

// Feedback call results, only meaningful for StatusAnswered.
const (
	ResultInterested    = "interested"
	ResultNoTime        = "no_time"
	ResultNotInterested = "not_interested"
)

// AnswerInput pairs a question with the chosen choice by id.
type AnswerInput struct {
	Question       int64 `json:"question"`
	SelectedChoice int64 `json:"selected_choice"`
}

// CallSubmission is the body of POST /api/calls/submit_call/.
type CallSubmission struct {
	Contact       int64         `json:"contact"`
	Project       int64         `json:"project"`
	CallStatus    string        `json:"call_status"`
	CallResult    string        `json:"call_result,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CallDuration  *int          `json:"call_duration,omitempty"`
	FollowUpDate  string        `json:"follow_up_date,omitempty"`
	FollowUpNotes string        `json:"follow_up_notes,omitempty"`
	Answers       []AnswerInput `json:"answers,omitempty"`
}

// CallRecord is one row of GET /api/calls/.
type CallRecord struct {
	ID            int64  `json:"id"`
	Contact       int64  `json:"contact"`
	ContactName   string `json:"contact_name,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	Project       int64  `json:"project,omitempty"`
	Caller        string `json:"caller,omitempty"`
	CallStatus    string `json:"call_status"`
	CallResult    string `json:"call_result,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CallDuration  int    `json:"call_duration,omitempty"`
	FollowUpDate  string `json:"follow_up_date,omitempty"`
	FollowUpNotes string `json:"follow_up_notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// CallPage is the paginated envelope of GET /api/calls/.
type CallPage struct {
	Count   int          `json:"count,omitempty"`
	Results []CallRecord `json:"results"`
}

// CallUpdate is the body of PATCH /api/calls/{id}/.
type CallUpdate struct {
	CallStatus    string `json:"call_status,omitempty"`
	CallResult    string `json:"call_result,omitempty"`
	Notes         string `json:"notes,omitempty"`
	FollowUpDate  string `json:"follow_up_date,omitempty"`
	FollowUpNotes string `json:"follow_up_notes,omitempty"`
}
