package dataset

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"
)

// Panel joins the confirmed and deaths long tables on (country, date).
// Countries present in only one table drop out of the join.
type Panel struct {
	df dataframe.DataFrame
}

// CountrySeries is one country's aligned daily series, chronologically
// sorted. Confirmed and Deaths are cumulative counts.
type CountrySeries struct {
	Country   string
	Dates     []time.Time
	Confirmed []float64
	Deaths    []float64
}

// BuildPanel inner-joins the two long tables into a per-country daily panel
func BuildPanel(confirmed, deaths *LongTable) (*Panel, error) {
	if confirmed.value == deaths.value {
		return nil, fmt.Errorf("tables must carry distinct value columns, both are %q", confirmed.value)
	}

	joined := confirmed.df.InnerJoin(deaths.df, "country", "date")
	if joined.Err != nil {
		return nil, fmt.Errorf("failed to join confirmed and deaths tables: %w", joined.Err)
	}

	joined = joined.Arrange(dataframe.Sort("country"), dataframe.Sort("date"))
	if joined.Err != nil {
		return nil, fmt.Errorf("failed to sort panel: %w", joined.Err)
	}

	log.Debug().
		Int("rows", joined.Nrow()).
		Msg("Built joined country/date panel")

	return &Panel{df: joined}, nil
}

// Countries lists the distinct countries in the panel
func (p *Panel) Countries() []string {
	records := p.df.Col("country").Records()
	var out []string
	for i, c := range records {
		if i == 0 || records[i-1] != c {
			out = append(out, c)
		}
	}
	return out
}

// Rows returns the number of (country, date) rows in the panel
func (p *Panel) Rows() int {
	return p.df.Nrow()
}

// Country filters the panel to one country and materializes its series
func (p *Panel) Country(name string) (*CountrySeries, error) {
	sub := p.df.Filter(dataframe.F{Colname: "country", Comparator: series.Eq, Comparando: name})
	if sub.Err != nil {
		return nil, fmt.Errorf("failed to filter panel: %w", sub.Err)
	}
	if sub.Nrow() == 0 {
		return nil, fmt.Errorf("country %q not found in panel (%d countries available)", name, len(p.Countries()))
	}

	dates := sub.Col("date").Records()
	confirmed := sub.Col("confirmed").Float()
	deaths := sub.Col("deaths").Float()

	cs := &CountrySeries{
		Country:   name,
		Dates:     make([]time.Time, len(dates)),
		Confirmed: confirmed,
		Deaths:    deaths,
	}

	for i, d := range dates {
		t, err := time.Parse(isoDateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("bad panel date %q: %w", d, err)
		}
		if i > 0 && !t.After(cs.Dates[i-1]) {
			return nil, fmt.Errorf("panel dates not strictly increasing at %q", d)
		}
		cs.Dates[i] = t
	}

	return cs, nil
}

// Len returns the number of observations in the series
func (cs *CountrySeries) Len() int {
	return len(cs.Dates)
}

// NewCases differences cumulative confirmed counts into daily new cases.
// The first element is the first cumulative value; negative differences
// (upstream revisions) clamp to 0.
func (cs *CountrySeries) NewCases() []float64 {
	return diffClamped(cs.Confirmed)
}

// NewDeaths differences cumulative deaths into daily new deaths
func (cs *CountrySeries) NewDeaths() []float64 {
	return diffClamped(cs.Deaths)
}

func diffClamped(cumulative []float64) []float64 {
	out := make([]float64, len(cumulative))
	for i := range cumulative {
		if i == 0 {
			out[i] = cumulative[0]
			continue
		}
		d := cumulative[i] - cumulative[i-1]
		if d < 0 {
			d = 0
		}
		out[i] = d
	}
	return out
}

// Smooth applies a trailing moving average of the given window. Early
// positions average over the observations available so far.
func Smooth(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}
