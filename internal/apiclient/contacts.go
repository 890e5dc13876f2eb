package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"callcenter-go/internal/types"
)

// ListContacts fetches the first page of a project's contacts.
func (c *Client) ListContacts(ctx context.Context, projectID int64) ([]types.Contact, error) {
	q := url.Values{}
	if projectID > 0 {
		q.Set("project_id", strconv.FormatInt(projectID, 10))
	}
	var out []types.Contact
	if err := c.getList(ctx, "/api/contacts/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateContact(ctx context.Context, in types.ContactInput) (types.Contact, error) {
	var out types.Contact
	err := c.doJSON(ctx, request{method: http.MethodPost, path: "/api/contacts/", body: in}, &out)
	return out, err
}

// PatchContact sends a partial update. The backend's copy is returned.
func (c *Client) PatchContact(ctx context.Context, id int64, fields map[string]interface{}) (types.Contact, error) {
	var out types.Contact
	err := c.doJSON(ctx, request{
		method: http.MethodPatch,
		path:   idPath("/api/contacts/%d/", id),
		body:   fields,
	}, &out)
	return out, err
}

func (c *Client) SetCallStatus(ctx context.Context, id int64, status string) error {
	_, err := c.PatchContact(ctx, id, map[string]interface{}{"call_status": status})
	return err
}

func (c *Client) DeleteContact(ctx context.Context, id int64) error {
	return c.doJSON(ctx, request{method: http.MethodDelete, path: idPath("/api/contacts/%d/", id)}, nil)
}

// ReleaseContact hands the contact back to the pool.
func (c *Client) ReleaseContact(ctx context.Context, id int64) error {
	return c.doJSON(ctx, request{method: http.MethodPost, path: idPath("/api/contacts/%d/release/", id)}, nil)
}

// RequestNewContact asks the backend to assign another contact to the caller.
func (c *Client) RequestNewContact(ctx context.Context, projectID int64) (types.Contact, error) {
	var out types.Contact
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/api/contacts/request_new/",
		body:   map[string]int64{"project_id": projectID},
	}, &out)
	return out, err
}
