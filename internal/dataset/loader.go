package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"callcenter-go/internal/logger"
	"callcenter-go/internal/types"
)

// Columns holds the detected column index of each contact field; -1 when
// the sheet has no such column.
type Columns struct {
	Name     int
	Phone    int
	Address  int
	Assigned int
}

// DetectColumns picks contact columns from a header row by keyword.
func DetectColumns(header []string) Columns {
	cols := Columns{Name: -1, Phone: -1, Address: -1, Assigned: -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "caller") || strings.Contains(l, "assign") || strings.Contains(l, "agent"):
			if cols.Assigned == -1 {
				cols.Assigned = i
			}
		case strings.Contains(l, "phone") || strings.Contains(l, "mobile") || strings.Contains(l, "tel"):
			if cols.Phone == -1 {
				cols.Phone = i
			}
		case strings.Contains(l, "name"):
			if cols.Name == -1 {
				cols.Name = i
			}
		case strings.Contains(l, "address") || strings.Contains(l, "city"):
			if cols.Address == -1 {
				cols.Address = i
			}
		}
	}
	// fallback: an unlabelled first column holds the name
	if cols.Name == -1 && len(header) > 0 && cols.Phone != 0 && cols.Address != 0 && cols.Assigned != 0 {
		cols.Name = 0
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Load reads contacts for projectID from the first sheet of an xlsx file.
// Rows without a phone are skipped; a missing name falls back to the phone.
func Load(path string, projectID int64) ([]types.ContactInput, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}
	cols := DetectColumns(rows[0])
	if cols.Phone == -1 {
		return nil, fmt.Errorf("no phone column in header %v", rows[0])
	}

	var out []types.ContactInput
	for _, r := range rows[1:] {
		in := types.ContactInput{
			Project:             projectID,
			FullName:            cell(r, cols.Name),
			Phone:               cell(r, cols.Phone),
			Address:             cell(r, cols.Address),
			AssignedCallerPhone: cell(r, cols.Assigned),
		}
		if in.Phone == "" {
			continue
		}
		if in.FullName == "" {
			in.FullName = in.Phone
		}
		out = append(out, in)
	}
	return out, nil
}

type Creator interface {
	CreateContact(ctx context.Context, in types.ContactInput) (types.Contact, error)
}

// ImportResult reports what an import created. Failed rows are in the error
// returned alongside it.
type ImportResult struct {
	Read    int `json:"read"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// Import loads path and creates every contact, one request per row. It does
// not stop at the first failure. A nil log falls back to logger.New.
func Import(ctx context.Context, api Creator, log *logger.Logger, path string, projectID int64) (ImportResult, error) {
	if log == nil {
		log = logger.New()
	}
	log = log.With("component", "dataset.import").With("path", path)
	inputs, err := Load(path, projectID)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Read: len(inputs)}
	var errs []error
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := api.CreateContact(ctx, in); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("contact %q (%s): %w", in.FullName, in.Phone, err))
			continue
		}
		res.Created++
	}
	log.WithField("created", res.Created).WithField("failed", res.Failed).Info("contacts imported")
	return res, errors.Join(errs...)
}
