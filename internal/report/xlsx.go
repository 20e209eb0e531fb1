package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// Placeholders under these prefixes, and the fields below, resolve to
// numbers in spreadsheet cells.
var numericPrefixes = []string{"count.", "stat.", "metric.", "facet."}

var numericFields = map[string]bool{
	"issue.line":    true,
	"rule.count":    true,
	"profile.rules": true,
	"measure.value": true,
}

// XLSXExporter merges a report into a spreadsheet template.
//
// Scalar placeholders are replaced on every sheet. A row holding collection
// placeholders is duplicated once per record, keeping its styles, then
// removed. The raw sheet, when present, receives every raw issue with the
// sorted union of raw field names as header row.
type XLSXExporter struct {
	settings
}

// NewXLSXExporter creates an XLSXExporter. Without WithTemplate the built-in
// template is used.
func NewXLSXExporter(opts ...Option) *XLSXExporter {
	return &XLSXExporter{settings: newSettings(opts)}
}

// Format implements Exporter.
func (e *XLSXExporter) Format() Format {
	return FormatXLSX
}

// Export implements Exporter.
func (e *XLSXExporter) Export(data any, dir, filename string) (string, error) {
	r, err := reportPayload(FormatXLSX, data)
	if err != nil {
		return "", err
	}
	f, err := e.open()
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if e.issuesSheet != "" && !slices.Contains(sheets, e.issuesSheet) {
		return "", fmt.Errorf("%w: missing sheet %q", ErrTemplateStructure, e.issuesSheet)
	}

	b := NewBindings(r, e.notAvailable, e.logger)
	found := make(map[string]bool)
	for _, sheet := range sheets {
		if sheet == e.rawSheet {
			continue
		}
		collections, filled, err := e.expandRows(f, sheet, b)
		if err != nil {
			return "", fmt.Errorf("sheet %q: %w", sheet, err)
		}
		for c := range collections {
			found[c] = true
		}
		if err := e.expandScalars(f, sheet, b, filled); err != nil {
			return "", fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}
	for _, c := range e.required {
		if !found[c] {
			return "", fmt.Errorf("%w: no row template for %q", ErrTemplateStructure, c)
		}
	}
	if e.rawSheet != "" && slices.Contains(sheets, e.rawSheet) {
		if err := writeRawSheet(f, e.rawSheet, r.RawIssues); err != nil {
			return "", fmt.Errorf("sheet %q: %w", e.rawSheet, err)
		}
	}

	e.logger.Debug("xlsx rendered", "sheets", len(sheets), "issues", b.Len(CollectionIssues))

	return writeFile(dir, filename, FormatXLSX, func(w io.Writer) error {
		return f.Write(w)
	})
}

func (e *XLSXExporter) open() (*excelize.File, error) {
	if e.template == "" {
		data, err := DefaultXLSXTemplate()
		if err != nil {
			return nil, fmt.Errorf("build template: %w", err)
		}
		return excelize.OpenReader(bytes.NewReader(data))
	}
	if _, err := os.Stat(e.template); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, e.template)
	}
	f, err := excelize.OpenFile(e.template)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateStructure, err)
	}
	return f, nil
}

// xlsxRowSpan is a half-open range of zero-based row indexes.
type xlsxRowSpan struct{ from, to int }

func (s xlsxRowSpan) contains(i int) bool { return i >= s.from && i < s.to }

// expandRows fills every row template of a sheet, top to bottom, and
// returns the spans of rows it wrote. Filling a template only inserts rows
// below the spans already returned.
func (e *XLSXExporter) expandRows(f *excelize.File, sheet string, b *Bindings) (map[string]bool, []xlsxRowSpan, error) {
	found := make(map[string]bool)
	var filled []xlsxRowSpan
	next := 0
	for {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, err
		}
		idx, collection := -1, ""
		for i := next; i < len(rows); i++ {
			if c, ok := CollectionOf(strings.Join(rows[i], " ")); ok {
				idx, collection = i, c
				break
			}
		}
		if idx < 0 {
			return found, filled, nil
		}
		found[collection] = true

		n, err := fillRows(f, sheet, idx+1, rows[idx], b, b.records(collection))
		if err != nil {
			return nil, nil, err
		}
		filled = append(filled, xlsxRowSpan{from: idx, to: idx + n})
		next = idx + n
	}
}

// fillRows duplicates the template row once per record below itself, fills
// the copies and removes the template row. It returns the number of rows
// written.
func fillRows(f *excelize.File, sheet string, row int, cells []string, b *Bindings, recs []record) (int, error) {
	for i := range recs {
		if err := f.DuplicateRowTo(sheet, row, row+1+i); err != nil {
			return 0, fmt.Errorf("duplicate row %d: %w", row, err)
		}
	}
	for i, rec := range recs {
		for col, text := range cells {
			if !strings.Contains(text, "{{") {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+1+i)
			if err != nil {
				return 0, err
			}
			if err := setCell(f, sheet, cell, text, b, rec); err != nil {
				return 0, err
			}
		}
	}
	if err := f.RemoveRow(sheet, row); err != nil {
		return 0, fmt.Errorf("remove row %d: %w", row, err)
	}
	return len(recs), nil
}

// expandScalars substitutes the cells outside the filled row spans, so
// record text is expanded once.
func (e *XLSXExporter) expandScalars(f *excelize.File, sheet string, b *Bindings, filled []xlsxRowSpan) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	for r, cells := range rows {
		if slices.ContainsFunc(filled, func(s xlsxRowSpan) bool { return s.contains(r) }) {
			continue
		}
		for c, text := range cells {
			if !strings.Contains(text, "{{") {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := setCell(f, sheet, cell, text, b, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// setCell writes the expansion of text. A cell holding a single numeric
// placeholder receives a number so spreadsheet formulas keep working.
func setCell(f *excelize.File, sheet, cell, text string, b *Bindings, rec record) error {
	if name, ok := SingleValue(text); ok {
		v := b.lookup(name, rec)
		if isNumeric(name) {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				return f.SetCellValue(sheet, cell, n)
			}
		}
		return f.SetCellStr(sheet, cell, v)
	}
	return f.SetCellStr(sheet, cell, b.expand(text, rec))
}

func isNumeric(name string) bool {
	if numericFields[name] {
		return true
	}
	for _, p := range numericPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func writeRawSheet(f *excelize.File, sheet string, raws []model.RawIssue) error {
	if len(raws) == 0 {
		return nil
	}
	names := model.RawFieldNames(raws)
	header := make([]any, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, raw := range raws {
		row := make([]any, len(names))
		for j, n := range names {
			row[j] = rawCell(raw[n])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func rawCell(v model.RawValue) any {
	switch v.Kind() {
	case model.KindNumber:
		n, _ := v.Number()
		return n
	case model.KindBool:
		b, _ := v.Bool()
		return b
	default:
		return v.String()
	}
}
