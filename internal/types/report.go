package types

// Statistics is the body of GET /api/projects/{id}/statistics/.
type Statistics struct {
	ProjectID     int64          `json:"project_id,omitempty"`
	TotalContacts int            `json:"total_contacts"`
	TotalCalls    int            `json:"total_calls"`
	AnsweredCalls int            `json:"answered_calls"`
	StatusCounts  map[string]int `json:"status_counts,omitempty"`
	ResultCounts  map[string]int `json:"result_counts,omitempty"`
	CallerCounts  map[string]int `json:"caller_counts,omitempty"`
}

// Dashboard is the body of GET /api/admin/dashboard/.
type Dashboard struct {
	TotalProjects int            `json:"total_projects"`
	TotalContacts int            `json:"total_contacts"`
	TotalCallers  int            `json:"total_callers"`
	TotalCalls    int            `json:"total_calls"`
	CallsToday    int            `json:"calls_today"`
	StatusCounts  map[string]int `json:"status_counts,omitempty"`
}
