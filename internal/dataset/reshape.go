package dataset

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"
)

// CSSE wide-table metadata columns; everything else is a date column
const (
	colProvince = "Province/State"
	colCountry  = "Country/Region"
	colLat      = "Lat"
	colLong     = "Long"
)

// csseDateLayout is the M/D/YY format used by the CSSE column headers
const csseDateLayout = "1/2/06"

// isoDateLayout is the date format used in the long panel
const isoDateLayout = "2006-01-02"

// LongTable is one CSSE table reshaped from wide (one column per day) to a
// long per-country daily frame with columns country, date, <value>
type LongTable struct {
	df    dataframe.DataFrame
	value string
}

// ParseTimeSeries loads a wide CSSE time-series CSV and melts it into a
// long table. Province rows are summed into their country; missing cells
// parse as 0; duplicate or out-of-order date columns are rejected.
func ParseTimeSeries(data []byte, valueName string) (*LongTable, error) {
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			colProvince: series.String,
			colCountry:  series.String,
		}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to load %s CSV: %w", valueName, df.Err)
	}

	dateCols, err := classifyColumns(df.Names())
	if err != nil {
		return nil, fmt.Errorf("%s table: %w", valueName, err)
	}
	if len(dateCols) == 0 {
		return nil, fmt.Errorf("%s table has no date columns", valueName)
	}

	countryCol := df.Col(colCountry)
	if countryCol.Err != nil {
		return nil, fmt.Errorf("%s table missing %q column: %w", valueName, colCountry, countryCol.Err)
	}
	countries := countryCol.Records()
	if len(countries) != df.Nrow() {
		return nil, fmt.Errorf("%s table %q column has %d values for %d rows", valueName, colCountry, len(countries), df.Nrow())
	}

	// Sum province rows into their country, column by column
	totals := make(map[string][]float64)
	for _, country := range countries {
		if _, ok := totals[country]; !ok {
			totals[country] = make([]float64, len(dateCols))
		}
	}

	for j, dc := range dateCols {
		records := df.Col(dc.name).Records()
		for i, rec := range records {
			v, err := parseCell(rec)
			if err != nil {
				return nil, fmt.Errorf("%s table: bad value %q at row %d column %q", valueName, rec, i, dc.name)
			}
			totals[countries[i]][j] += v
		}
	}

	names := make([]string, 0, len(totals))
	for country := range totals {
		names = append(names, country)
	}
	sort.Strings(names)

	n := len(names) * len(dateCols)
	countryRows := make([]string, 0, n)
	dateRows := make([]string, 0, n)
	valueRows := make([]float64, 0, n)
	for _, country := range names {
		for j, dc := range dateCols {
			countryRows = append(countryRows, country)
			dateRows = append(dateRows, dc.date.Format(isoDateLayout))
			valueRows = append(valueRows, totals[country][j])
		}
	}

	long := dataframe.New(
		series.New(countryRows, series.String, "country"),
		series.New(dateRows, series.String, "date"),
		series.New(valueRows, series.Float, valueName),
	)
	if long.Err != nil {
		return nil, fmt.Errorf("failed to build long %s frame: %w", valueName, long.Err)
	}

	log.Debug().
		Str("table", valueName).
		Int("countries", len(names)).
		Int("days", len(dateCols)).
		Msg("Reshaped wide table to long panel")

	return &LongTable{df: long, value: valueName}, nil
}

type dateColumn struct {
	name string
	date time.Time
}

// classifyColumns splits the wide header into metadata and date columns,
// enforcing strictly increasing dates
func classifyColumns(names []string) ([]dateColumn, error) {
	var dateCols []dateColumn
	seen := map[string]bool{}

	for _, name := range names {
		switch name {
		case colProvince, colCountry, colLat, colLong:
			continue
		}

		t, err := time.Parse(csseDateLayout, name)
		if err != nil {
			return nil, fmt.Errorf("unexpected column %q (not metadata, not a M/D/YY date)", name)
		}

		key := t.Format(isoDateLayout)
		if seen[key] {
			return nil, fmt.Errorf("duplicate date column %q", name)
		}
		seen[key] = true

		if len(dateCols) > 0 && !t.After(dateCols[len(dateCols)-1].date) {
			return nil, fmt.Errorf("date column %q out of order", name)
		}

		dateCols = append(dateCols, dateColumn{name: name, date: t})
	}

	return dateCols, nil
}

// parseCell parses one numeric cell; blank cells count as 0
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
