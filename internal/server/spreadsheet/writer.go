// Package spreadsheet renders purchase orders as xlsx workbooks.
package spreadsheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/filex"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Row is one ordered product.
type Row struct {
	Name     string
	Quantity decimal.Decimal
}

type Writer interface {
	// Write renders rows into a new file and returns its path.
	Write(ctx context.Context, rows []Row) (string, error)
}

type column struct {
	header string
	width  float64
}

var columns = []column{
	{"PRODUCTS", 50},
	{"UNIT", 10},
	{"QUANTITY", 20},
	{"UNIT PRICE", 10},
	{"TOTAL", 15},
}

const (
	sheetName   = "Sheet1"
	unitKG      = "KG"
	totalNumFmt = `$#,##0.00;[Red]-$#,##0.00`
)

// ExcelWriter writes one workbook per call into dir. The unit price column
// is left blank for the buyer and the total column multiplies it out.
type ExcelWriter struct {
	dir   string
	now   func() time.Time
	newID func() string
}

func NewExcelWriter(dir string) (*ExcelWriter, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &ExcelWriter{
		dir:   abs,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// FileName builds "order-<month>-<year>-<id>.xlsx".
func (w *ExcelWriter) FileName() string {
	now := w.now()
	short, _, _ := strings.Cut(w.newID(), "-")
	return slug.Make(fmt.Sprintf("order %s %d %s", now.Month(), now.Year(), short)) + ".xlsx"
}

func (w *ExcelWriter) Write(ctx context.Context, rows []Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.fill(f, rows); err != nil {
		return "", fmt.Errorf("render order sheet: %w", err)
	}

	path := filepath.Join(w.dir, w.FileName())
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save order sheet: %w", err)
	}
	return path, nil
}

func (w *ExcelWriter) fill(f *excelize.File, rows []Row) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, c.width); err != nil {
			return err
		}
		header[i] = c.header
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return err
	}

	numFmt := totalNumFmt
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}

	for i, r := range rows {
		line := i + 2
		cell := fmt.Sprintf("A%d", line)
		values := []any{r.Name, unitKG, r.Quantity.InexactFloat64()}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}

		total := fmt.Sprintf("E%d", line)
		if err := f.SetCellFormula(sheetName, total, fmt.Sprintf("C%d*D%d", line, line)); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, total, total, money); err != nil {
			return err
		}
	}

	return nil
}
