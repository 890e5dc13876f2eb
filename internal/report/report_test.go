package report

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callcenter-go/internal/apiclient"
	"callcenter-go/internal/apitest"
	"callcenter-go/internal/logger"
	"callcenter-go/internal/session"
	"callcenter-go/internal/types"
)

var boss = types.Profile{UserID: 1, Username: "admin", Phone: "0900", Role: types.RoleAdmin, IsAdmin: true}

func setup(t *testing.T, p types.Profile) (*apitest.Server, *Reporter) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(srv.SignIn(p), p))
	client := apiclient.New(srv.URL, store, apiclient.WithLogger(logger.Discard()), apiclient.WithReadRetry(0))
	return srv, New(client, logger.Discard())
}

func TestStatistics(t *testing.T) {
	srv, r := setup(t, boss)
	srv.SetStatistics(7, types.Statistics{TotalContacts: 40, TotalCalls: 12, AnsweredCalls: 5})

	st, ok := r.Statistics(context.Background(), 7)
	require.True(t, ok)
	assert.EqualValues(t, 7, st.ProjectID)
	assert.Equal(t, 12, st.TotalCalls)

	srv.Fail(http.MethodGet, "/api/projects/7/statistics/", http.StatusInternalServerError, "oops")
	st, ok = r.Statistics(context.Background(), 7)
	assert.False(t, ok)
	assert.Zero(t, st)
}

func TestStatistics_Malformed(t *testing.T) {
	srv, r := setup(t, boss)
	srv.Fail(http.MethodGet, "/api/projects/7/statistics/", http.StatusOK, "<html>")
	_, ok := r.Statistics(context.Background(), 7)
	assert.False(t, ok)
}

func TestDashboard(t *testing.T) {
	srv, r := setup(t, boss)
	srv.AddProject(types.Project{Name: "Spring"})
	srv.AddCall(types.CallRecord{Caller: "neda", CallStatus: types.StatusAnswered})

	d, ok := r.Dashboard(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1, d.TotalProjects)
	assert.Equal(t, 1, d.StatusCounts[types.StatusAnswered])
}

func TestDashboard_NonAdminFailsSoft(t *testing.T) {
	_, r := setup(t, types.Profile{UserID: 2, Phone: "0912", Role: types.RoleCaller})
	_, ok := r.Dashboard(context.Background())
	assert.False(t, ok)
}

func TestDownloadExcel(t *testing.T) {
	srv, r := setup(t, boss)
	srv.AddContact(types.Contact{ID: 1, FullName: "Ali", Phone: "0912"})
	srv.AddContact(types.Contact{ID: 2, FullName: "Mina", Phone: "0935"})
	dir := t.TempDir()

	path, err := r.DownloadExcel(context.Background(), "contacts", url.Values{"project_id": {"7"}}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contacts.xlsx"), path)
	assert.Equal(t, "project_id=7", srv.Requests(http.MethodGet, "/api/excel/contacts/")[0].Query)

	sheets, err := InspectWorkbook(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "contacts", sheets[0].Name)
	assert.Equal(t, 3, sheets[0].Rows)
	assert.Equal(t, "Full name", sheets[0].Header[1])
}

func TestDownloadExcel_FailureLeavesNoFile(t *testing.T) {
	srv, r := setup(t, boss)
	dir := t.TempDir()
	dest := filepath.Join(dir, "calls.xlsx")

	srv.Fail(http.MethodGet, "/api/excel/calls/", http.StatusOK, `{"detail":"not a workbook"}`)
	_, err := r.DownloadExcel(context.Background(), "calls", nil, dest)
	assert.ErrorIs(t, err, apiclient.ErrMalformed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temp file is left behind")

	_, err = r.DownloadExcel(context.Background(), "unknown", nil, dest)
	assert.Error(t, err)
}

func TestInspectWorkbook_Missing(t *testing.T) {
	_, err := InspectWorkbook(filepath.Join(t.TempDir(), "none.xlsx"))
	assert.Error(t, err)
}

func TestExportRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "roster.xlsx")
	err := ExportRoster([]types.Contact{
		{ID: 1, FullName: "Ali", Phone: "0912", CallStatus: types.CallStatusPending},
		{ID: 2, FullName: "Mina", Phone: "0935", AssignedCallerPhone: "0910"},
	}, path)
	require.NoError(t, err)

	sheets, err := InspectWorkbook(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, SheetInfo{
		Name:   "Contacts",
		Rows:   3,
		Header: []string{"ID", "Full name", "Phone", "Address", "Assigned caller", "Call status"},
	}, sheets[0])
}
