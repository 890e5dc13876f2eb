package apiclient

import (
	"context"
	"net/http"

	"callcenter-go/internal/types"
)

// ToggleUserRole sets userID's role within the project.
func (c *Client) ToggleUserRole(ctx context.Context, projectID, userID int64, role string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   idPath("/api/projects/%d/toggle-user-role/", projectID),
		body: struct {
			UserID int64  `json:"user_id"`
			Role   string `json:"role"`
		}{userID, role},
	}, nil)
}

func (c *Client) Members(ctx context.Context, projectID int64) ([]types.Member, error) {
	var out []types.Member
	if err := c.getList(ctx, idPath("/api/projects/%d/members/", projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserRole returns the signed-in user's role within the project.
func (c *Client) UserRole(ctx context.Context, projectID int64) (types.UserRole, error) {
	var out types.UserRole
	err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/projects/%d/user-role/", projectID)}, &out)
	return out, err
}
