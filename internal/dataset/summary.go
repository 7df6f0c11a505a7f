package dataset

import (
	"fmt"
	"time"
)

// Summary holds the descriptive statistics reported for one country
type Summary struct {
	Country        string
	FirstDate      time.Time
	LastDate       time.Time
	Days           int
	TotalConfirmed float64
	TotalDeaths    float64
	LatestNewCases float64
	Avg7dNewCases  float64
	PeakNewCases   float64
	PeakDate       time.Time
	CaseFatality   float64 // deaths / confirmed, 0 when no cases
}

// Summarize computes the report summary for the series
func (cs *CountrySeries) Summarize() (*Summary, error) {
	n := cs.Len()
	if n == 0 {
		return nil, fmt.Errorf("empty series for %q", cs.Country)
	}

	newCases := cs.NewCases()

	s := &Summary{
		Country:        cs.Country,
		FirstDate:      cs.Dates[0],
		LastDate:       cs.Dates[n-1],
		Days:           n,
		TotalConfirmed: cs.Confirmed[n-1],
		TotalDeaths:    cs.Deaths[n-1],
		LatestNewCases: newCases[n-1],
	}

	for i, v := range newCases {
		if v > s.PeakNewCases {
			s.PeakNewCases = v
			s.PeakDate = cs.Dates[i]
		}
	}

	window := 7
	if n < window {
		window = n
	}
	sum := 0.0
	for _, v := range newCases[n-window:] {
		sum += v
	}
	s.Avg7dNewCases = sum / float64(window)

	if s.TotalConfirmed > 0 {
		s.CaseFatality = s.TotalDeaths / s.TotalConfirmed
	}

	return s, nil
}
