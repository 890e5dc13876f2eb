package types

import "time"

// Role values returned by the backend for a signed-in user.
const (
	RoleAdmin  = "admin"
	RoleCaller = "caller"
)

// Profile is the user snapshot returned by a successful OTP verification.
type Profile struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     string `json:"role,omitempty"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
	IsCaller bool   `json:"is_caller,omitempty"`
}

// Admin reports whether the profile carries admin rights by flag or role.
func (p Profile) Admin() bool {
	return p.IsAdmin || p.Role == RoleAdmin
}

// Session is the persisted identity: an opaque token plus the profile.
type Session struct {
	Token   string    `json:"token"`
	Profile Profile   `json:"profile"`
	SavedAt time.Time `json:"saved_at"`
}

// VerifyOTPResponse is the body of POST /api/verify-otp/.
type VerifyOTPResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
	IsCaller bool   `json:"is_caller,omitempty"`
}

func (v VerifyOTPResponse) Profile() Profile {
	return Profile{
		UserID:   v.UserID,
		Username: v.Username,
		Phone:    v.Phone,
		Role:     v.Role,
		IsAdmin:  v.IsAdmin || v.Role == RoleAdmin,
		IsCaller: v.IsCaller || v.Role == RoleCaller,
	}
}

// Server-side contact call statuses.
const (
	CallStatusPending    = "pending"
	CallStatusInProgress = "in_progress"
)

type Contact struct {
	ID                  int64                  `json:"id"`
	FullName            string                 `json:"full_name"`
	Phone               string                 `json:"phone"`
	Address             string                 `json:"address,omitempty"`
	AssignedCallerPhone string                 `json:"assigned_caller_phone,omitempty"`
	CustomFields        map[string]interface{} `json:"custom_fields,omitempty"`
	CallStatus          string                 `json:"call_status,omitempty"`
	CallNotes           []Note                 `json:"call_notes,omitempty"`
	Project             int64                  `json:"project,omitempty"`
}

// Note is one entry of a contact's append-only call history.
type Note struct {
	Note       string   `json:"note"`
	CreatedAt  string   `json:"created_at,omitempty"`
	CallResult string   `json:"call_result,omitempty"`
	Answers    []Answer `json:"answers,omitempty"`
}

type Answer struct {
	QuestionText       string `json:"question_text"`
	SelectedChoiceText string `json:"selected_choice_text"`
}

// ContactInput is the body for creating a contact.
type ContactInput struct {
	Project             int64                  `json:"project"`
	FullName            string                 `json:"full_name"`
	Phone               string                 `json:"phone"`
	Address             string                 `json:"address,omitempty"`
	AssignedCallerPhone string                 `json:"assigned_caller_phone,omitempty"`
	CustomFields        map[string]interface{} `json:"custom_fields,omitempty"`
}
