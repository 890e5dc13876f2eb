package feedback

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callcenter-go/internal/apiclient"
	"callcenter-go/internal/apitest"
	"callcenter-go/internal/logger"
	"callcenter-go/internal/session"
	"callcenter-go/internal/types"
)

var me = types.Profile{UserID: 3, Username: "neda", Phone: "0912", Role: types.RoleCaller}

func setup(t *testing.T) (*apitest.Server, *apiclient.Client) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(srv.SignIn(me), me))
	return srv, apiclient.New(srv.URL, store, apiclient.WithLogger(logger.Discard()), apiclient.WithReadRetry(0))
}

func TestValidate(t *testing.T) {
	neg := -1
	tests := []struct {
		name string
		form Form
		want error
	}{
		{"missing status", Form{}, ErrStatusRequired},
		{"unknown status", Form{Status: "busy"}, ErrUnknownStatus},
		{"answered without result", Form{Status: types.StatusAnswered}, ErrResultRequired},
		{"answered with unknown result", Form{Status: types.StatusAnswered, Result: "maybe"}, ErrUnknownResult},
		{"negative duration", Form{Status: types.StatusNoAnswer, Duration: &neg}, ErrBadDuration},
		{"bad follow-up date", Form{Status: types.StatusPending, FollowUpDate: "next week"}, ErrBadFollowUp},
		{"no answer needs no result", Form{Status: types.StatusNoAnswer}, nil},
		{"wrong number", Form{Status: types.StatusWrongNumber}, nil},
		{"answered", Form{Status: types.StatusAnswered, Result: types.ResultInterested, FollowUpDate: "2026-11-02"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubmission_DropsResultUnlessAnswered(t *testing.T) {
	sub := Form{ContactID: 5, ProjectID: 7, Status: types.StatusNoAnswer, Result: types.ResultNoTime, Notes: "  rang out  "}.Submission()
	assert.Empty(t, sub.CallResult)
	assert.Equal(t, "rang out", sub.Notes)

	sub = Form{
		ContactID: 5,
		ProjectID: 7,
		Status:    types.StatusAnswered,
		Result:    types.ResultInterested,
		Answers:   map[int64]int64{9: 90, 2: 21},
	}.Submission()
	assert.Equal(t, types.ResultInterested, sub.CallResult)
	assert.Equal(t, []types.AnswerInput{{Question: 2, SelectedChoice: 21}, {Question: 9, SelectedChoice: 90}}, sub.Answers)
}

func TestSubmit(t *testing.T) {
	srv, client := setup(t)
	d := 95

	err := Submit(context.Background(), client, Form{
		ContactID:    5,
		ProjectID:    7,
		Status:       types.StatusAnswered,
		Result:       types.ResultInterested,
		Duration:     &d,
		FollowUpDate: "2026-11-02",
	})
	require.NoError(t, err)

	subs := srv.Submissions()
	require.Len(t, subs, 1)
	assert.EqualValues(t, 5, subs[0].Contact)
	assert.Equal(t, types.ResultInterested, subs[0].CallResult)
	require.NotNil(t, subs[0].CallDuration)
	assert.Equal(t, 95, *subs[0].CallDuration)
}

func TestSubmit_NotAnsweredWithoutResult(t *testing.T) {
	srv, client := setup(t)
	require.NoError(t, Submit(context.Background(), client, Form{ContactID: 5, ProjectID: 7, Status: types.StatusNoAnswer}))
	assert.Len(t, srv.Submissions(), 1)
}

func TestSubmit_BlockedLocally(t *testing.T) {
	srv, client := setup(t)
	err := Submit(context.Background(), client, Form{ContactID: 5, ProjectID: 7, Status: types.StatusAnswered})
	assert.ErrorIs(t, err, ErrResultRequired)
	assert.Empty(t, srv.Requests(http.MethodPost, "/api/calls/submit_call/"), "nothing is sent")
}

func TestSubmit_SurfacesServerBody(t *testing.T) {
	srv, client := setup(t)
	srv.Fail(http.MethodPost, "/api/calls/submit_call/", http.StatusBadRequest, `{"contact":["Contact is not assigned to you."]}`)

	err := Submit(context.Background(), client, Form{ContactID: 5, ProjectID: 7, Status: types.StatusPending})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Contact is not assigned to you.")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Len(t, srv.Requests(http.MethodPost, "/api/calls/submit_call/"), 1, "writes are not retried")
}
