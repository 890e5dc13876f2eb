// Package report covers the reporting views: project statistics, the admin
// dashboard, server-side Excel downloads and local workbook handling.
package report

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"callcenter-go/internal/logger"
	"callcenter-go/internal/types"
)

// Placeholder is printed in place of a view that failed to load.
const Placeholder = "No data available."

type API interface {
	Statistics(ctx context.Context, projectID int64) (types.Statistics, error)
	AdminDashboard(ctx context.Context) (types.Dashboard, error)
	DownloadExcel(ctx context.Context, kind string, query url.Values, w io.Writer) (int64, error)
}

type Reporter struct {
	api API
	log *logger.Logger
}

func New(api API, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.Discard()
	}
	return &Reporter{api: api, log: log}
}

// Statistics fails soft: on any error ok is false and the caller shows
// Placeholder.
func (r *Reporter) Statistics(ctx context.Context, projectID int64) (types.Statistics, bool) {
	st, err := r.api.Statistics(ctx, projectID)
	if err != nil {
		r.log.WithError(err).WithField("project_id", projectID).Warn("statistics unavailable")
		return types.Statistics{}, false
	}
	return st, true
}

// Dashboard fails soft like Statistics.
func (r *Reporter) Dashboard(ctx context.Context) (types.Dashboard, bool) {
	d, err := r.api.AdminDashboard(ctx)
	if err != nil {
		r.log.WithError(err).Warn("dashboard unavailable")
		return types.Dashboard{}, false
	}
	return d, true
}

// DownloadExcel saves the server-generated workbook for kind to dest. When
// dest is an existing directory the file is named <kind>.xlsx inside it. The
// file only appears once the download completed.
func (r *Reporter) DownloadExcel(ctx context.Context, kind string, query url.Values, dest string) (string, error) {
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		dest = filepath.Join(dest, strings.Trim(kind, "/")+".xlsx")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := r.api.DownloadExcel(ctx, kind, query, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s report: %w", kind, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("move download into place: %w", err)
	}
	r.log.WithField("kind", kind).WithField("bytes", n).WithField("path", dest).Info("report downloaded")
	return dest, nil
}

// SheetInfo describes one worksheet of a workbook.
type SheetInfo struct {
	Name   string   `json:"name"`
	Rows   int      `json:"rows"`
	Header []string `json:"header,omitempty"`
}

// InspectWorkbook lists the sheets of an xlsx file with their row counts,
// header row included.
func InspectWorkbook(path string) ([]SheetInfo, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var out []SheetInfo
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		info := SheetInfo{Name: name, Rows: len(rows)}
		if len(rows) > 0 {
			info.Header = rows[0]
		}
		out = append(out, info)
	}
	return out, nil
}

var rosterHeader = []interface{}{"ID", "Full name", "Phone", "Address", "Assigned caller", "Call status"}

// ExportRoster writes contacts to a single-sheet workbook at path.
func ExportRoster(contacts []types.Contact, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Contacts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &rosterHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, c := range contacts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.ID, c.FullName, c.Phone, c.Address, c.AssignedCallerPhone, c.CallStatus}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write contact %d: %w", c.ID, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
