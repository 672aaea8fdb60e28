package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vintry/contentops-backend/internal/platform/envutil"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

// Sheet is a parsed spreadsheet: the first row as headers, every later
// non-empty row padded to header width, all cells trimmed strings.
type Sheet struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

var (
	ErrEmptySheet  = errors.New("spreadsheet has no rows")
	ErrTooLarge    = errors.New("spreadsheet exceeds size limit")
	ErrTooManyRows = errors.New("spreadsheet exceeds row limit")
)

type Parser struct {
	log *logger.Logger

	// hard caps
	MaxBytes int64
	MaxRows  int

	// SheetName selects a workbook sheet by name; empty means first.
	SheetName string
}

func NewParser(baseLog *logger.Logger) *Parser {
	return &Parser{
		log:       baseLog.With("component", "SpreadsheetParser"),
		MaxBytes:  envutil.Int64("SPREADSHEET_MAX_BYTES", 10<<20),
		MaxRows:   envutil.Int("SPREADSHEET_MAX_ROWS", 2000),
		SheetName: envutil.Str("SPREADSHEET_SHEET_NAME", ""),
	}
}

// Parse decodes xlsx or csv content. Format is picked by file
// extension, falling back to the zip magic for extensionless xlsx
// uploads.
func (p *Parser) Parse(filename string, data []byte) (*Sheet, error) {
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), p.MaxBytes)
	}
	var (
		sheet *Sheet
		err   error
	)
	if looksLikeXLSX(filename, data) {
		sheet, err = p.parseXLSX(data)
	} else {
		sheet, err = p.parseCSV(data)
	}
	if err != nil {
		return nil, err
	}
	p.log.Debug("parsed spreadsheet",
		"file", filename, "sheet", sheet.Name,
		"columns", len(sheet.Headers), "rows", len(sheet.Rows))
	return sheet, nil
}

func looksLikeXLSX(filename string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	case ".csv", ".txt":
		return false
	}
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

func (p *Parser) parseXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	name := p.pickSheet(sheets)
	raw, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return p.assemble(name, raw)
}

// pickSheet honors SheetName when the workbook has a sheet by that
// name, otherwise the first sheet wins.
func (p *Parser) pickSheet(sheets []string) string {
	if p.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, p.SheetName) {
				return s
			}
		}
		p.log.Warn("configured sheet not in workbook, using first",
			"want", p.SheetName, "first", sheets[0])
	}
	return sheets[0]
}

func (p *Parser) parseCSV(data []byte) (*Sheet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var raw [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		raw = append(raw, record)
		if p.MaxRows > 0 && len(raw) > p.MaxRows+1 {
			return nil, fmt.Errorf("%w: limit %d", ErrTooManyRows, p.MaxRows)
		}
	}
	return p.assemble("", raw)
}

// assemble turns raw cell rows into a Sheet: row 0 becomes headers,
// blank-only rows are dropped, ragged rows are padded to header width.
func (p *Parser) assemble(name string, raw [][]string) (*Sheet, error) {
	for len(raw) > 0 && rowEmpty(raw[0]) {
		raw = raw[1:]
	}
	if len(raw) == 0 {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		headers[i] = h
	}

	rows := make([][]string, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		if rowEmpty(cells) {
			continue
		}
		row := make([]string, len(headers))
		for i := range row {
			if i < len(cells) {
				row[i] = strings.TrimSpace(cells[i])
			}
		}
		rows = append(rows, row)
	}
	if p.MaxRows > 0 && len(rows) > p.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(rows), p.MaxRows)
	}
	return &Sheet{Name: name, Headers: headers, Rows: rows}, nil
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
