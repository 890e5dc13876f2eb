package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"callcenter-go/internal/types"
)

// SubmitCall records the outcome of one call.
func (c *Client) SubmitCall(ctx context.Context, sub types.CallSubmission) error {
	return c.doJSON(ctx, request{method: http.MethodPost, path: "/api/calls/submit_call/", body: sub}, nil)
}

// ListCalls fetches the first page of call records.
func (c *Client) ListCalls(ctx context.Context, projectID int64) ([]types.CallRecord, error) {
	q := url.Values{}
	if projectID > 0 {
		q.Set("project_id", strconv.FormatInt(projectID, 10))
	}
	var out []types.CallRecord
	if err := c.getList(ctx, "/api/calls/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PatchCall(ctx context.Context, id int64, upd types.CallUpdate) (types.CallRecord, error) {
	var out types.CallRecord
	err := c.doJSON(ctx, request{method: http.MethodPatch, path: idPath("/api/calls/%d/", id), body: upd}, &out)
	return out, err
}
