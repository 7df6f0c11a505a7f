package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two provinces of Australia plus single-row India and Nepal
const wideConfirmed = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
New South Wales,Australia,-33.87,151.21,0,3,4
Victoria,Australia,-37.81,144.96,0,1,2
,India,20.59,78.96,0,0,1
,Nepal,28.17,84.25,0,1,1
`

const wideDeaths = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
New South Wales,Australia,-33.87,151.21,0,0,1
Victoria,Australia,-37.81,144.96,0,0,0
,India,20.59,78.96,0,0,0
`

func TestParseTimeSeries_MeltsAndSumsProvinces(t *testing.T) {
	long, err := ParseTimeSeries([]byte(wideConfirmed), "confirmed")
	require.NoError(t, err)

	// 3 countries x 3 days
	assert.Equal(t, 9, long.df.Nrow())

	deaths, err := ParseTimeSeries([]byte(wideDeaths), "deaths")
	require.NoError(t, err)

	panel, err := BuildPanel(long, deaths)
	require.NoError(t, err)

	aus, err := panel.Country("Australia")
	require.NoError(t, err)

	// Province rows are summed into the country total
	assert.Equal(t, []float64{0, 4, 6}, aus.Confirmed)
	assert.Equal(t, []float64{0, 0, 1}, aus.Deaths)
	require.Len(t, aus.Dates, 3)
	assert.Equal(t, "2020-01-22", aus.Dates[0].Format("2006-01-02"))
	assert.Equal(t, "2020-01-24", aus.Dates[2].Format("2006-01-02"))
}

func TestParseTimeSeries_MissingCellsParseAsZero(t *testing.T) {
	csv := "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20\n,India,20.59,78.96,,5\n"

	long, err := ParseTimeSeries([]byte(csv), "confirmed")
	require.NoError(t, err)
	assert.Equal(t, 2, long.df.Nrow())

	records := long.df.Col("confirmed").Float()
	assert.Equal(t, []float64{0, 5}, records)
}

func TestParseTimeSeries_MissingCountryColumn(t *testing.T) {
	// Every header still classifies (metadata or date), but the country
	// column itself is absent; this must error, not panic
	csv := "Province/State,Lat,Long,1/22/20,1/23/20\nKerala,10.85,76.27,0,1\n"

	_, err := ParseTimeSeries([]byte(csv), "confirmed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "Country/Region"`)
}

func TestParseTimeSeries_RejectsBadColumn(t *testing.T) {
	csv := "Province/State,Country/Region,Lat,Long,population\n,India,20.59,78.96,100\n"

	_, err := ParseTimeSeries([]byte(csv), "confirmed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected column")
}

func TestParseTimeSeries_RejectsOutOfOrderDates(t *testing.T) {
	csv := "Province/State,Country/Region,Lat,Long,1/23/20,1/22/20\n,India,20.59,78.96,1,2\n"

	_, err := ParseTimeSeries([]byte(csv), "confirmed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of order")
}

func TestParseTimeSeries_RejectsNonNumericCell(t *testing.T) {
	csv := "Province/State,Country/Region,Lat,Long,1/22/20\n,India,20.59,78.96,many\n"

	_, err := ParseTimeSeries([]byte(csv), "confirmed")
	require.Error(t, err)
}

func TestParseTimeSeries_NoDateColumns(t *testing.T) {
	csv := "Province/State,Country/Region,Lat,Long\n,India,20.59,78.96\n"

	_, err := ParseTimeSeries([]byte(csv), "confirmed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no date columns")
}
