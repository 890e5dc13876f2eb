package types

type Project struct {
	ID          int64      `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// Question belongs to a project; ID is zero until the backend creates it.
type Question struct {
	ID      int64    `json:"id,omitempty"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

type Choice struct {
	ID   int64  `json:"id,omitempty"`
	Text string `json:"text"`
}

// Project-scoped roles.
const (
	ProjectRoleCaller  = "caller"
	ProjectRoleContact = "contact"
)

// Member is one row of GET /api/projects/{id}/members/.
type Member struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role"`
	DisplayRole string `json:"display_role,omitempty"`
}

// UserRole is the signed-in user's role within a project.
type UserRole struct {
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
	DisplayRole string `json:"display_role,omitempty"`
}
