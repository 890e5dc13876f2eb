package dataset

import (
	"context"
	"errors"
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

func writeSheet(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	data, err := apitest.Workbook("Import", rows)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		header []string
		want   Columns
	}{
		{[]string{"Full Name", "Phone", "Address", "Assigned caller phone"}, Columns{Name: 0, Phone: 1, Address: 2, Assigned: 3}},
		{[]string{"Mobile", "Customer name", "City"}, Columns{Name: 1, Phone: 0, Address: 2, Assigned: -1}},
		{[]string{"", "Telephone"}, Columns{Name: 0, Phone: 1, Address: -1, Assigned: -1}},
		{[]string{"Agent", "Tel"}, Columns{Name: -1, Phone: 1, Address: -1, Assigned: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectColumns(tt.header), "%v", tt.header)
	}
}

func TestLoad(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"Name", "Phone", "Address", "Caller"},
		{"Ali Rezaei", "0912 000 0001", "Tehran", "0910"},
		{"No phone", "", "Shiraz"},
		{"", "0935 111 2222"},
	})

	got, err := Load(path, 7)
	require.NoError(t, err)
	assert.Equal(t, []types.ContactInput{
		{Project: 7, FullName: "Ali Rezaei", Phone: "0912 000 0001", Address: "Tehran", AssignedCallerPhone: "0910"},
		{Project: 7, FullName: "0935 111 2222", Phone: "0935 111 2222"},
	}, got)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"), 7)
	assert.Error(t, err)

	_, err = Load(writeSheet(t, [][]interface{}{{"Name", "Phone"}}), 7)
	assert.EqualError(t, err, "no data rows")

	_, err = Load(writeSheet(t, [][]interface{}{{"Name", "Notes"}, {"Ali", "vip"}}), 7)
	assert.ErrorContains(t, err, "no phone column")
}

func TestImport(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	me := types.Profile{UserID: 1, Phone: "0900", Role: types.RoleAdmin, IsAdmin: true}
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(srv.SignIn(me), me))
	client := apiclient.New(srv.URL, store, apiclient.WithLogger(logger.Discard()))

	path := writeSheet(t, [][]interface{}{
		{"Name", "Phone"},
		{"Ali", "0912"},
		{"Mina", "0935"},
	})
	res, err := Import(context.Background(), client, logger.Discard(), path, 7)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Read: 2, Created: 2}, res)

	contacts, err := client.ListContacts(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Ali", contacts[0].FullName)
}

type flakyCreator struct{ calls int }

func (f *flakyCreator) CreateContact(_ context.Context, in types.ContactInput) (types.Contact, error) {
	f.calls++
	if in.Phone == "bad" {
		return types.Contact{}, errors.New("phone is invalid")
	}
	return types.Contact{FullName: in.FullName}, nil
}

func TestImport_CollectsFailures(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"Name", "Phone"},
		{"Ali", "bad"},
		{"Mina", "0935"},
	})
	api := &flakyCreator{}
	res, err := Import(context.Background(), api, logger.Discard(), path, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `contact "Ali" (bad): phone is invalid`)
	assert.Equal(t, ImportResult{Read: 2, Created: 1, Failed: 1}, res)
	assert.Equal(t, 2, api.calls, "later rows are still sent")
}
