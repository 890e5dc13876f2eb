package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"callcenter-go/internal/types"
)

func (c *Client) Statistics(ctx context.Context, projectID int64) (types.Statistics, error) {
	var out types.Statistics
	err := c.doJSON(ctx, request{method: http.MethodGet, path: idPath("/api/projects/%d/statistics/", projectID)}, &out)
	return out, err
}

func (c *Client) AdminDashboard(ctx context.Context) (types.Dashboard, error) {
	var out types.Dashboard
	err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/admin/dashboard/"}, &out)
	return out, err
}

// DownloadExcel fetches a server-generated workbook and copies it to w.
// kind names the report, e.g. "contacts" or "calls".
func (c *Client) DownloadExcel(ctx context.Context, kind string, query url.Values, w io.Writer) (int64, error) {
	kind = strings.Trim(kind, "/")
	if kind == "" {
		return 0, fmt.Errorf("excel report kind is required")
	}
	body, ctype, err := c.do(ctx, request{method: http.MethodGet, path: "/api/excel/" + kind + "/", query: query})
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(ctype, "application/json") || strings.HasPrefix(ctype, "text/html") {
		return 0, fmt.Errorf("%w: expected a workbook, got %s", ErrMalformed, ctype)
	}
	n, err := w.Write(body)
	return int64(n), err
}
