package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callcenter-go/internal/apiclient"
	"callcenter-go/internal/apitest"
	"callcenter-go/internal/logger"
	"callcenter-go/internal/session"
	"callcenter-go/internal/types"
)

var boss = types.Profile{UserID: 1, Username: "admin", Phone: "0900", Role: types.RoleAdmin, IsAdmin: true}

func setup(t *testing.T) (*apitest.Server, *Service) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(srv.SignIn(boss), boss))
	client := apiclient.New(srv.URL, store, apiclient.WithLogger(logger.Discard()), apiclient.WithReadRetry(0))
	return srv, New(client, logger.Discard())
}

func TestOppositeRole(t *testing.T) {
	got, err := OppositeRole("caller")
	require.NoError(t, err)
	assert.Equal(t, types.ProjectRoleContact, got)

	got, err = OppositeRole(" Contact ")
	require.NoError(t, err)
	assert.Equal(t, types.ProjectRoleCaller, got)

	_, err = OppositeRole("admin")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestToggleRole_RefetchesMembers(t *testing.T) {
	srv, svc := setup(t)
	srv.SetMembers(7, []types.Member{
		{UserID: 10, Username: "neda", Role: types.ProjectRoleCaller, DisplayRole: "Caller"},
		{UserID: 11, Username: "omid", Role: types.ProjectRoleContact, DisplayRole: "Contact"},
	})

	members, err := svc.ToggleRole(context.Background(), 7, 10, types.ProjectRoleCaller)
	require.NoError(t, err)

	posts := srv.Requests(http.MethodPost, "/api/projects/7/toggle-user-role/")
	require.Len(t, posts, 1)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	assert.Equal(t, map[string]interface{}{"user_id": float64(10), "role": "contact"}, body)

	assert.Len(t, srv.Requests(http.MethodGet, "/api/projects/7/members/"), 1, "members are refetched after a toggle")
	want := []types.Member{
		{UserID: 10, Username: "neda", Role: types.ProjectRoleContact, DisplayRole: "Contact"},
		{UserID: 11, Username: "omid", Role: types.ProjectRoleContact, DisplayRole: "Contact"},
	}
	if diff := cmp.Diff(want, members); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleRole_FailureSkipsRefetch(t *testing.T) {
	srv, svc := setup(t)
	srv.Fail(http.MethodPost, "/api/projects/7/toggle-user-role/", http.StatusBadRequest, `{"detail":"cannot demote owner"}`)

	_, err := svc.ToggleRole(context.Background(), 7, 10, types.ProjectRoleCaller)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot demote owner")
	assert.Empty(t, srv.Requests(http.MethodGet, "/api/projects/7/members/"))

	_, err = svc.ToggleRole(context.Background(), 7, 10, "owner")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestMyRole(t *testing.T) {
	srv, svc := setup(t)
	srv.SetMembers(7, []types.Member{{UserID: boss.UserID, Role: types.ProjectRoleCaller, DisplayRole: "Caller"}})

	role, err := svc.MyRole(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectRoleCaller, role.Role)

	_, err = svc.MyRole(context.Background(), 8)
	assert.Error(t, err)
}

func TestSaveProject_CreatesAndUpdates(t *testing.T) {
	srv, svc := setup(t)
	existing := srv.AddProject(types.Project{Name: "Spring", Description: "old"})

	saved, err := svc.SaveProject(context.Background(), types.Project{
		ID:          existing.ID,
		Name:        "Spring drive",
		Description: "renewals",
		Questions: []types.Question{
			{Text: "Will you renew?", Choices: []types.Choice{{Text: "Yes"}, {Text: "No"}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, saved.Questions, 1)
	q := saved.Questions[0]
	assert.NotZero(t, q.ID)
	require.Len(t, q.Choices, 2)
	assert.NotZero(t, q.Choices[0].ID)

	assert.Len(t, srv.Requests(http.MethodPut, fmt.Sprintf("/api/projects/%d/", existing.ID)), 1)

	got, _ := srv.Project(existing.ID)
	assert.Equal(t, "Spring drive", got.Name)
	require.Len(t, got.Questions, 1)
	assert.Len(t, got.Questions[0].Choices, 2)

	// Second save edits in place.
	saved.Questions[0].Text = "Renew this year?"
	saved.Questions[0].Choices[1].Text = "Not now"
	_, err = svc.SaveProject(context.Background(), saved)
	require.NoError(t, err)
	got, _ = srv.Project(existing.ID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "Renew this year?", got.Questions[0].Text)
	assert.Equal(t, "Not now", got.Questions[0].Choices[1].Text)
}

func TestSaveProject_NewProjectPosts(t *testing.T) {
	srv, svc := setup(t)
	saved, err := svc.SaveProject(context.Background(), types.Project{Name: "Autumn"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Len(t, srv.Requests(http.MethodPost, "/api/projects/"), 1)
}

func TestSaveProject_CollectsFailures(t *testing.T) {
	srv, svc := setup(t)
	p := srv.AddProject(types.Project{Name: "Spring"})

	_, err := svc.SaveProject(context.Background(), types.Project{
		ID:   p.ID,
		Name: "Spring",
		Questions: []types.Question{
			{ID: 404, Text: "gone"},
			{Text: "Will you renew?", Choices: []types.Choice{{Text: "Yes"}, {ID: 505, Text: "stale"}}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update question 404")
	assert.Contains(t, err.Error(), "update choice 505")

	got, _ := srv.Project(p.ID)
	require.Len(t, got.Questions, 1, "later items are still saved")
	assert.Len(t, got.Questions[0].Choices, 1)
}

func TestSaveProject_ProjectFailureStops(t *testing.T) {
	srv, svc := setup(t)
	_, err := svc.SaveProject(context.Background(), types.Project{
		Name:      "",
		Questions: []types.Question{{Text: "q"}},
	})
	require.Error(t, err)
	assert.Len(t, srv.Requests(http.MethodPost, ""), 1, "no question is posted without a project")
}

func TestDeletes(t *testing.T) {
	srv, svc := setup(t)
	p := srv.AddProject(types.Project{Name: "Spring"})
	saved, err := svc.SaveProject(context.Background(), types.Project{
		ID:        p.ID,
		Name:      "Spring",
		Questions: []types.Question{{Text: "a", Choices: []types.Choice{{Text: "x"}, {Text: "y"}}}, {Text: "b"}},
	})
	require.NoError(t, err)
	q := saved.Questions[0]
	ctx := context.Background()

	require.NoError(t, svc.DeleteChoice(ctx, p.ID, q.ID, q.Choices[0].ID))
	require.NoError(t, svc.DeleteQuestion(ctx, p.ID, saved.Questions[1].ID))
	got, _ := srv.Project(p.ID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, []types.Choice{q.Choices[1]}, got.Questions[0].Choices)

	require.NoError(t, svc.DeleteProject(ctx, p.ID))
	_, ok := srv.Project(p.ID)
	assert.False(t, ok)
	assert.Error(t, svc.DeleteProject(ctx, p.ID))
}
