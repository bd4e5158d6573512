package corpusfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"agrosim/domain/core"
	"agrosim/domain/corpus"
	"agrosim/internal"

	"github.com/xuri/excelize/v2"
)

// Reader loads the historical agronomic corpus from a CSV or XLSX file.
// It implements ports.CorpusSource.
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	district string
	log      *internal.Logger
}

// NewReader creates a corpus reader that handles both Excel and CSV files.
// district filters rows by location; empty keeps every row.
func NewReader(filePath, district string, log *internal.Logger) *Reader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xls" {
		fileType = "xlsx"
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Reader{filePath: filePath, fileType: fileType, district: district, log: log}
}

// Load reads the corpus file into an immutable Corpus.
func (r *Reader) Load(ctx context.Context) (*corpus.Corpus, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: corpus file not found: %s", core.ErrCorpusMalformed, r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readCSVRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", core.ErrCorpusEmpty, r.filePath)
	}

	cols, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	c := &corpus.Corpus{District: corpus.NormalizeValue(r.district)}
	skipped := 0
	for _, row := range rows[1:] {
		obs, ok := cols.parseRow(row, r.district)
		if !ok {
			skipped++
			continue
		}
		c.Observations = append(c.Observations, obs)
	}
	if skipped > 0 {
		r.log.Warn("corpus loader skipped %d malformed rows in %s", skipped, r.filePath)
	}
	if len(c.Observations) == 0 {
		return nil, fmt.Errorf("%w: no usable rows in %s", core.ErrCorpusEmpty, r.filePath)
	}

	r.log.Info("loaded corpus: %d observations from %s", len(c.Observations), r.filePath)
	return c, nil
}

func (r *Reader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorpusMalformed, err)
	}
	return rows, nil
}

func (r *Reader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// columnMap resolves source headers to observation fields. Source files use
// inconsistent headers ("Crops", "Soil type", "yeilds"), so matching is
// case-insensitive with aliases, the same policy the training data uses.
type columnMap struct {
	location   int
	crop       int
	season     int
	soilType   int
	irrigation int
	area       int
	yield      int

	temperature int
	rainfall    int
	humidity    int
	nitrogen    int
	phosphorus  int
	potassium   int
	ph          int
}

var headerAliases = map[string][]string{
	"location":   {"location", "district"},
	"crop":       {"crops", "crop"},
	"season":     {"season"},
	"soil":       {"soil type", "soil_type", "soil"},
	"irrigation": {"irrigation", "irrigation_type"},
	"area":       {"area", "area_hectares", "land_size"},
	"yield":      {"yeilds", "yields", "yield", "yield_per_area"},

	"temperature": {"temperature", "temp"},
	"rainfall":    {"rainfall", "precip", "rain"},
	"humidity":    {"humidity"},
	"nitrogen":    {"n", "nitrogen"},
	"phosphorus":  {"p", "phosphorus"},
	"potassium":   {"k", "potassium"},
	"ph":          {"ph"},
}

func resolveColumns(header []string) (*columnMap, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	find := func(key string) int {
		for _, alias := range headerAliases[key] {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := &columnMap{
		location:    find("location"),
		crop:        find("crop"),
		season:      find("season"),
		soilType:    find("soil"),
		irrigation:  find("irrigation"),
		area:        find("area"),
		yield:       find("yield"),
		temperature: find("temperature"),
		rainfall:    find("rainfall"),
		humidity:    find("humidity"),
		nitrogen:    find("nitrogen"),
		phosphorus:  find("phosphorus"),
		potassium:   find("potassium"),
		ph:          find("ph"),
	}

	var missing []string
	for name, idx := range map[string]int{
		"crop": cols.crop, "season": cols.season, "area": cols.area, "yield": cols.yield,
	} {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns %v in header %v",
			core.ErrCorpusMalformed, missing, header)
	}
	return cols, nil
}

// parseRow converts one data row. Rows missing required fields are skipped,
// never fatal; absent optional covariates parse as zero.
func (c *columnMap) parseRow(row []string, defaultDistrict string) (corpus.Observation, bool) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	getFloat := func(idx int) float64 {
		v, err := strconv.ParseFloat(get(idx), 64)
		if err != nil {
			return 0
		}
		return v
	}

	obs := corpus.Observation{
		District:    corpus.NormalizeValue(firstNonEmpty(get(c.location), defaultDistrict)),
		Crop:        corpus.NormalizeValue(get(c.crop)),
		Season:      corpus.NormalizeValue(get(c.season)),
		SoilType:    corpus.NormalizeValue(get(c.soilType)),
		Irrigation:  corpus.NormalizeValue(get(c.irrigation)),
		Temperature: getFloat(c.temperature),
		Rainfall:    getFloat(c.rainfall),
		Humidity:    getFloat(c.humidity),
		Nitrogen:    getFloat(c.nitrogen),
		Phosphorus:  getFloat(c.phosphorus),
		Potassium:   getFloat(c.potassium),
		PH:          getFloat(c.ph),
	}

	area, err := strconv.ParseFloat(get(c.area), 64)
	if err != nil || area <= 0 {
		return corpus.Observation{}, false
	}
	obs.Area = area

	yield, err := strconv.ParseFloat(get(c.yield), 64)
	if err != nil || yield <= 0 {
		return corpus.Observation{}, false
	}
	obs.Yield = yield

	if obs.Crop == "" || obs.Season == "" {
		return corpus.Observation{}, false
	}
	return obs, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
