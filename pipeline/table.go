package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/aouyang1/indicator-forecaster/timedataset"
)

const (
	DefaultEntityColumn = "entity_id"
	DefaultYearColumn   = "year"
)

var (
	ErrMissingColumns = errors.New("input is missing required columns")
	ErrNoMetrics      = errors.New("none of the requested metrics are present in the input")
	ErrEmptyInput     = errors.New("input has no header")
)

// DefaultMetrics are the indicator columns forecast when none are requested. Ranks are
// never forecast.
var DefaultMetrics = []string{
	"gmi_score",
	"milex_indicator",
	"personnel_indicator",
	"weapons_indicator",
	"wri_score",
	"wri_exposure",
	"wri_vulnerability",
	"wri_susceptibility",
	"wri_coping_capacity",
	"wri_adaptive_capacity",
}

// TableOptions describes which input columns identify a row and which are forecast
type TableOptions struct {
	EntityColumn string   `json:"entity_column" mapstructure:"entity_column"`
	YearColumn   string   `json:"year_column" mapstructure:"year_column"`
	Metrics      []string `json:"metrics" mapstructure:"metrics"`
}

func NewDefaultTableOptions() *TableOptions {
	metrics := make([]string, len(DefaultMetrics))
	copy(metrics, DefaultMetrics)
	return &TableOptions{
		EntityColumn: DefaultEntityColumn,
		YearColumn:   DefaultYearColumn,
		Metrics:      metrics,
	}
}

// Table holds the yearly observations of every metric grouped by entity
type Table struct {
	// Metrics present in the input, in the requested order
	Metrics []string

	// Rows kept after dropping rows without an entity or year
	Rows int

	groups map[string]map[string]timedataset.Observations
}

// ReadTable reads a csv with a header row. Entity ids are upper cased, rows missing an
// entity or a parsable year are dropped, and metric cells that are empty or not
// numeric become missing values.
func ReadTable(r io.Reader, opt *TableOptions) (*Table, error) {
	if opt == nil {
		opt = NewDefaultTableOptions()
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, exists := columns[col]; !exists {
			columns[col] = i
		}
	}

	var missing []string
	for _, col := range []string{opt.EntityColumn, opt.YearColumn} {
		if _, exists := columns[col]; !exists {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("need %s, %w", strings.Join(missing, ", "), ErrMissingColumns)
	}

	t := &Table{
		groups: make(map[string]map[string]timedataset.Observations),
	}
	for _, m := range opt.Metrics {
		if _, exists := columns[m]; exists && !slices.Contains(t.Metrics, m) {
			t.Metrics = append(t.Metrics, m)
		}
	}
	if len(t.Metrics) == 0 {
		return nil, ErrNoMetrics
	}

	entityIdx := columns[opt.EntityColumn]
	yearIdx := columns[opt.YearColumn]
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read row, %w", err)
		}

		entity := strings.ToUpper(strings.TrimSpace(cell(row, entityIdx)))
		if entity == "" {
			continue
		}
		year, ok := parseYear(cell(row, yearIdx))
		if !ok {
			continue
		}

		group, exists := t.groups[entity]
		if !exists {
			group = make(map[string]timedataset.Observations, len(t.Metrics))
			for _, m := range t.Metrics {
				group[m] = make(timedataset.Observations)
			}
			t.groups[entity] = group
		}
		for _, m := range t.Metrics {
			group[m].Set(year, parseValue(cell(row, columns[m])))
		}
		t.Rows++
	}
	return t, nil
}

// Entities returns the entity ids in ascending order
func (t *Table) Entities() []string {
	entities := make([]string, 0, len(t.groups))
	for entity := range t.groups {
		entities = append(entities, entity)
	}
	sort.Strings(entities)
	return entities
}

// Observations returns the yearly values of a metric for an entity
func (t *Table) Observations(entity, metric string) timedataset.Observations {
	return t.groups[entity][metric]
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if year, err := strconv.Atoi(s); err == nil {
		return year, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
