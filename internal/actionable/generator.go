package actionable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"callcenter-go/internal/types"
)

const dateLayout = "2006-01-02"

// FollowUp is one call that asks for another attempt.
type FollowUp struct {
	CallID  int64  `json:"call_id"`
	Contact int64  `json:"contact"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Caller  string `json:"caller,omitempty"`
	Date    string `json:"date"`
	Notes   string `json:"notes,omitempty"`
	Overdue bool   `json:"overdue"`
}

func (f FollowUp) String() string {
	label := f.Name
	if label == "" {
		label = fmt.Sprintf("contact #%d", f.Contact)
	}
	parts := []string{f.Date, label}
	if f.Notes != "" {
		parts = append(parts, f.Notes)
	}
	if f.Overdue {
		parts = append(parts, "(overdue)")
	}
	return strings.Join(parts, " ")
}

// Generate returns the follow-ups due on or before day, oldest first. Only
// the latest call per contact counts, so a contact that was called again
// after its follow-up date drops off the agenda. Unparseable dates are
// skipped.
func Generate(records []types.CallRecord, day time.Time) []FollowUp {
	y, m, d := day.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	latest := map[int64]types.CallRecord{}
	for _, r := range records {
		if cur, ok := latest[r.Contact]; !ok || newer(r, cur) {
			latest[r.Contact] = r
		}
	}

	var out []FollowUp
	for _, r := range latest {
		if r.FollowUpDate == "" {
			continue
		}
		due, err := time.Parse(dateLayout, r.FollowUpDate)
		if err != nil || due.After(cutoff) {
			continue
		}
		out = append(out, FollowUp{
			CallID:  r.ID,
			Contact: r.Contact,
			Name:    r.ContactName,
			Phone:   r.ContactPhone,
			Caller:  r.Caller,
			Date:    r.FollowUpDate,
			Notes:   r.FollowUpNotes,
			Overdue: due.Before(cutoff),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Contact < out[j].Contact
	})
	return out
}

// newer orders by created_at, falling back to id.
func newer(a, b types.CallRecord) bool {
	if a.CreatedAt != b.CreatedAt && a.CreatedAt != "" && b.CreatedAt != "" {
		return a.CreatedAt > b.CreatedAt
	}
	return a.ID > b.ID
}
