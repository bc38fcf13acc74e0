package engine

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"jobloss/internal/catalog"
	"jobloss/internal/models"
)

// Source formats accepted by Load.
const (
	FormatAuto = "auto"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// LoadOptions configures how the statistics table is read and aggregated.
type LoadOptions struct {
	Format        string // auto picks by file extension
	Delimiter     rune   // default ','
	Sheet         string // xlsx only; first sheet when empty
	MissingMetric MissingMetricPolicy
}

// --- 1. VALUE PARSING ---

var missingMarkers = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true,
}

// parseNumber returns ok=false for a blank or missing-marker field.
func parseNumber(s string) (float64, bool, error) {
	if missingMarkers[strings.ToLower(s)] {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, eris.Wrapf(err, "parse number %q", s)
	}
	if math.IsInf(v, 0) {
		return 0, false, eris.Errorf("non-finite number %q", s)
	}
	return v, true, nil
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}

// rowParser maps header positions to the required columns.
type rowParser struct {
	path   string
	fips   int
	name   int
	abbr   int
	rates  [models.NumRateColumns]int
	metric int
}

func newRowParser(path string, header []string) (*rowParser, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	col := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	p := &rowParser{
		path: path,
		fips: col(models.ColStateFIPS),
		name: col(models.ColStateName),
		abbr: col(models.ColStateAbbr),
	}
	for i, c := range models.RateColumns {
		p.rates[i] = col(c)
	}
	p.metric = col(models.ColJobLoss)

	if len(missing) > 0 {
		return nil, &DataLoadError{
			Path:   path,
			Line:   1,
			Column: missing[0],
			Err:    eris.Errorf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}
	return p, nil
}

// parse converts one data row. keep=false means a grouping value is blank
// and the row is dropped, the same way a group-by drops null keys.
func (p *rowParser) parse(fields []string, line int) (rec models.RawRecord, keep bool, err error) {
	rec.State = models.State{
		FIPS: catalog.NormalizeFIPS(field(fields, p.fips)),
		Name: field(fields, p.name),
		Abbr: strings.ToUpper(field(fields, p.abbr)),
	}
	if rec.State.FIPS == "" || rec.State.Name == "" {
		return rec, false, nil
	}
	if want, ok := catalog.AbbrForFIPS(rec.State.FIPS); ok {
		if rec.State.Abbr == "" {
			rec.State.Abbr = want
		} else if rec.State.Abbr != want {
			return rec, false, &DataLoadError{
				Path:   p.path,
				Line:   line,
				Column: models.ColStateAbbr,
				Err:    eris.Errorf("abbreviation %q does not match FIPS %s (%s)", rec.State.Abbr, rec.State.FIPS, want),
			}
		}
	}
	if rec.State.Abbr == "" {
		return rec, false, nil
	}

	for i, idx := range p.rates {
		v, ok, err := parseNumber(field(fields, idx))
		if err != nil {
			return rec, false, &DataLoadError{Path: p.path, Line: line, Column: models.RateColumns[i], Err: err}
		}
		if !ok {
			return rec, false, nil
		}
		rec.Rates[i] = v
	}

	v, ok, err := parseNumber(field(fields, p.metric))
	if err != nil {
		return rec, false, &DataLoadError{Path: p.path, Line: line, Column: models.ColJobLoss, Err: err}
	}
	rec.JobLoss, rec.HasJobLoss = v, ok
	return rec, true, nil
}

func (p *rowParser) add(store *ColumnStore, fields []string, line int) error {
	store.Stats.RowsRead++
	rec, keep, err := p.parse(fields, line)
	if err != nil {
		return err
	}
	if !keep {
		store.Stats.RowsDropped++
		zap.L().Debug("row dropped: blank grouping value", zap.String("path", p.path), zap.Int("line", line))
		return nil
	}
	store.Append(rec, line)
	return nil
}

// --- 2. SOURCE READERS ---

// LoadCSV reads a delimited statistics file into a ColumnStore.
func LoadCSV(path string, opts LoadOptions) (*ColumnStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: eris.Wrap(err, "open file")}
	}
	defer f.Close()
	return readCSV(path, f, opts)
}

func readCSV(path string, r io.Reader, opts LoadOptions) (*ColumnStore, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &DataLoadError{Path: path, Err: eris.New("empty file")}
	}
	if err != nil {
		return nil, &DataLoadError{Path: path, Line: 1, Err: eris.Wrap(err, "read header")}
	}
	p, err := newRowParser(path, header)
	if err != nil {
		return nil, err
	}

	store := NewColumnStore(path, 64)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &DataLoadError{Path: path, Line: line, Err: eris.Wrap(err, "read row")}
		}
		line, _ := reader.FieldPos(0)
		if err := p.add(store, fields, line); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// LoadXLSX reads one sheet of a workbook into a ColumnStore.
// The first row of the sheet is the header.
func LoadXLSX(path string, opts LoadOptions) (*ColumnStore, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: eris.Wrap(err, "open workbook")}
	}

	var sheet *xlsx.Sheet
	switch {
	case opts.Sheet != "":
		s, ok := f.Sheet[opts.Sheet]
		if !ok {
			return nil, &DataLoadError{Path: path, Err: eris.Errorf("sheet %q not found", opts.Sheet)}
		}
		sheet = s
	case len(f.Sheets) > 0:
		sheet = f.Sheets[0]
	default:
		return nil, &DataLoadError{Path: path, Err: eris.New("workbook has no sheets")}
	}

	if len(sheet.Rows) == 0 {
		return nil, &DataLoadError{Path: path, Err: eris.New("empty file")}
	}
	p, err := newRowParser(path, cellStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	store := NewColumnStore(path, len(sheet.Rows)-1)
	for i, row := range sheet.Rows[1:] {
		cells := cellStrings(row)
		if blankRow(cells) {
			continue
		}
		if err := p.add(store, cells, i+2); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// cellStrings reads numeric cells raw; String would apply the number format.
func cellStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell.Type() == xlsx.CellTypeNumeric {
			cells[j] = cell.Value
		} else {
			cells[j] = cell.String()
		}
	}
	return cells
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// --- 3. MAIN LOADER ---

func resolveFormat(path, format string) string {
	if format != "" && format != FormatAuto {
		return strings.ToLower(format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// Load reads the statistics table at path and aggregates it.
// Any failure is a *DataLoadError.
func Load(path string, opts LoadOptions) ([]models.AggregatedRow, models.LoadStats, error) {
	start := time.Now()

	var (
		store *ColumnStore
		err   error
	)
	switch format := resolveFormat(path, opts.Format); format {
	case FormatCSV:
		store, err = LoadCSV(path, opts)
	case FormatXLSX:
		store, err = LoadXLSX(path, opts)
	default:
		err = &DataLoadError{Path: path, Err: eris.Errorf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, models.LoadStats{}, err
	}
	if store.Len() == 0 {
		return nil, store.Stats, &DataLoadError{Path: path, Err: eris.New("no usable rows")}
	}

	rows, err := store.Aggregate(opts.MissingMetric)
	if err != nil {
		return nil, store.Stats, err
	}
	store.Stats.Groups = len(rows)

	zap.L().Info("dataset loaded",
		zap.String("path", path),
		zap.Int("rows_read", store.Stats.RowsRead),
		zap.Int("rows_dropped", store.Stats.RowsDropped),
		zap.Int("metrics_skipped", store.Stats.MetricsSkipped),
		zap.Int("groups", store.Stats.Groups),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, store.Stats, nil
}
