package apiclient

import (
	"context"
	"net/http"

	"callcenter-go/internal/types"
)

func (c *Client) ListProjects(ctx context.Context) ([]types.Project, error) {
	var out []types.Project
	if err := c.getList(ctx, "/api/projects/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id int64) (types.Project, error) {
	var p types.Project
	err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/projects/%d/", id)}, &p)
	return p, err
}

func (c *Client) CreateProject(ctx context.Context, p types.Project) (types.Project, error) {
	var out types.Project
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/api/projects/",
		body:   map[string]string{"name": p.Name, "description": p.Description},
	}, &out)
	return out, err
}

func (c *Client) UpdateProject(ctx context.Context, p types.Project) (types.Project, error) {
	var out types.Project
	err := c.doJSON(ctx, request{
		method: http.MethodPut,
		path:   idPath("/api/projects/%d/", p.ID),
		body:   map[string]string{"name": p.Name, "description": p.Description},
	}, &out)
	return out, err
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.doJSON(ctx, request{method: http.MethodDelete, path: idPath("/api/projects/%d/", id)}, nil)
}

func (c *Client) CreateQuestion(ctx context.Context, projectID int64, q types.Question) (types.Question, error) {
	var out types.Question
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   idPath("/api/projects/%d/questions/", projectID),
		body:   map[string]string{"text": q.Text},
	}, &out)
	return out, err
}

func (c *Client) UpdateQuestion(ctx context.Context, projectID int64, q types.Question) (types.Question, error) {
	var out types.Question
	err := c.doJSON(ctx, request{
		method: http.MethodPut,
		path:   idPath("/api/projects/%d/questions/%d/", projectID, q.ID),
		body:   map[string]string{"text": q.Text},
	}, &out)
	return out, err
}

func (c *Client) DeleteQuestion(ctx context.Context, projectID, questionID int64) error {
	return c.doJSON(ctx, request{
		method: http.MethodDelete,
		path:   idPath("/api/projects/%d/questions/%d/", projectID, questionID),
	}, nil)
}

func (c *Client) CreateChoice(ctx context.Context, projectID, questionID int64, ch types.Choice) (types.Choice, error) {
	var out types.Choice
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   idPath("/api/projects/%d/questions/%d/choices/", projectID, questionID),
		body:   map[string]string{"text": ch.Text},
	}, &out)
	return out, err
}

func (c *Client) UpdateChoice(ctx context.Context, projectID, questionID int64, ch types.Choice) (types.Choice, error) {
	var out types.Choice
	err := c.doJSON(ctx, request{
		method: http.MethodPut,
		path:   idPath("/api/projects/%d/questions/%d/choices/%d/", projectID, questionID, ch.ID),
		body:   map[string]string{"text": ch.Text},
	}, &out)
	return out, err
}

func (c *Client) DeleteChoice(ctx context.Context, projectID, questionID, choiceID int64) error {
	return c.doJSON(ctx, request{
		method: http.MethodDelete,
		path:   idPath("/api/projects/%d/questions/%d/choices/%d/", projectID, questionID, choiceID),
	}, nil)
}
