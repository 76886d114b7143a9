package leads

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Leads"

var exportHeader = []any{"ID", "Created", "Name", "Email", "Phone", "Documents", "Contacted", "Message"}

// ExportXLSX выгружает заявки в xlsx (тот же фильтр, что и у List).
func (s *Service) ExportXLSX(ctx context.Context, contacted *bool) ([]byte, error) {
	items, err := s.repo.ListLeads(ctx, contacted)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, errors.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	for i, l := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "cell name")
		}
		msg := ""
		if l.Message != nil {
			msg = *l.Message
		}
		row := []any{
			l.ID,
			l.CreatedAt.Format("2006-01-02 15:04"),
			l.Name,
			l.Email,
			l.Phone,
			string(l.DocumentStatus),
			l.Contacted,
			msg,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, errors.Wrap(err, "write row")
		}
	}
	if err := f.SetColWidth(exportSheet, "B", "H", 22); err != nil {
		return nil, errors.Wrap(err, "col width")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "write xlsx")
	}
	return buf.Bytes(), nil
}
