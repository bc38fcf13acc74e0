package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobloss/internal/catalog"
	"jobloss/internal/models"
)

func rowFor(fips, name, abbr string, x01, metric float64) models.AggregatedRow {
	rates := make(map[string]float64, models.NumRateColumns)
	for i, c := range models.RateColumns {
		rates[c] = float64(i + 1)
	}
	rates["X01"] = x01
	return models.AggregatedRow{
		State:       models.State{FIPS: fips, Name: name, Abbr: abbr},
		Rates:       rates,
		JobLossRate: metric,
		HasJobLoss:  true,
	}
}

func cloneRows(rows []models.AggregatedRow) []models.AggregatedRow {
	out := make([]models.AggregatedRow, len(rows))
	for i, r := range rows {
		out[i] = r
		out[i].Rates = make(map[string]float64, len(r.Rates))
		for k, v := range r.Rates {
			out[i].Rates[k] = v
		}
	}
	return out
}

func TestProjectSingleState(t *testing.T) {
	rows := []models.AggregatedRow{rowFor("06", "California", "CA", 5.0, 12.5)}

	p, err := Project(rows, "X01")
	require.NoError(t, err)

	require.Len(t, p.Points, 1)
	five := 5.0
	assert.Equal(t, models.StatePoint{
		StateAbbr: "CA",
		StateName: "California",
		Value:     &five,
		Hover:     "California: 5.0%",
	}, p.Points[0])
	assert.Equal(t, "X01", p.Sector)
	assert.Equal(t, "Agriculture, Forestry, Fishing, and Hunting", p.Label)
	assert.Equal(t, "Heat Map of Job Gain or Lost in: Agriculture, Forestry, Fishing, and Hunting Sector(s)", p.Title)
	assert.Equal(t, 5.0, p.Min)
	assert.Equal(t, 5.0, p.Max)
}

func TestProjectTotalIndex(t *testing.T) {
	rows := []models.AggregatedRow{
		rowFor("06", "California", "CA", 5.0, 12.5),
		rowFor("48", "Texas", "TX", 3.0, 7.25),
	}

	p, err := Project(rows, catalog.Total)
	require.NoError(t, err)
	assert.Equal(t, "Heat Map of Job Gain or Lost in: Total Job Loss Index Sector(s)", p.Title)
	assert.Equal(t, "Texas: 7.25%", p.Points[1].Hover)
	assert.Equal(t, 7.25, p.Min)
	assert.Equal(t, 12.5, p.Max)
}

func TestProjectEveryCode(t *testing.T) {
	rows := []models.AggregatedRow{rowFor("06", "California", "CA", 5.0, 12.5)}
	for _, code := range catalog.AllCodes() {
		p, err := Project(rows, code)
		require.NoError(t, err, code)
		assert.Len(t, p.Points, 1)
		assert.Equal(t, string(code), p.Sector)
	}
}

func TestProjectDoesNotMutateRows(t *testing.T) {
	rows := []models.AggregatedRow{
		rowFor("06", "California", "CA", 5.0, 12.5),
		rowFor("48", "Texas", "TX", 3.0, 7.25),
	}
	before := cloneRows(rows)
	first := &rows[0]

	for _, code := range catalog.AllCodes() {
		_, err := Project(rows, code)
		require.NoError(t, err)
	}

	assert.Same(t, first, &rows[0])
	assert.Equal(t, before, rows)
}

func TestProjectDeterministic(t *testing.T) {
	rows := []models.AggregatedRow{
		rowFor("06", "California", "CA", 5.0, 12.5),
		rowFor("48", "Texas", "TX", 3.0, 7.25),
	}
	a, err := Project(rows, "X05")
	require.NoError(t, err)
	b, err := Project(rows, "X05")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProjectMissingColumn(t *testing.T) {
	rows := []models.AggregatedRow{
		rowFor("06", "California", "CA", 5.0, 12.5),
		rowFor("48", "Texas", "TX", 3.0, 7.25),
	}
	delete(rows[1].Rates, "X07")

	p, err := Project(rows, "X07")
	var mce *MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "X07", mce.Column)
	assert.Equal(t, "TX", mce.State)
	assert.Empty(t, p.Points, "no partial payload on error")
}

func TestProjectTotalWithUnobservedState(t *testing.T) {
	rows := []models.AggregatedRow{
		rowFor("06", "California", "CA", 5.0, 10.0),
		rowFor("48", "Texas", "TX", 3.0, 0),
		rowFor("36", "New York", "NY", 4.0, 20.0),
	}
	rows[1].HasJobLoss = false

	p, err := Project(rows, catalog.Total)
	require.NoError(t, err)
	require.Len(t, p.Points, 3)

	assert.Nil(t, p.Points[1].Value)
	assert.Equal(t, "TX", p.Points[1].StateAbbr)
	assert.Equal(t, "Texas: nan%", p.Points[1].Hover)
	require.NotNil(t, p.Points[0].Value)
	assert.Equal(t, 10.0, *p.Points[0].Value)
	assert.Equal(t, 10.0, p.Min)
	assert.Equal(t, 20.0, p.Max)

	// rate columns are unaffected by the missing metric
	p, err = Project(rows, "X01")
	require.NoError(t, err)
	require.NotNil(t, p.Points[1].Value)
	assert.Equal(t, 3.0, *p.Points[1].Value)
}

func TestProjectTotalNothingObserved(t *testing.T) {
	rows := []models.AggregatedRow{rowFor("48", "Texas", "TX", 3.0, 0)}
	rows[0].HasJobLoss = false

	p, err := Project(rows, catalog.Total)
	require.NoError(t, err)
	require.Len(t, p.Points, 1)
	assert.Nil(t, p.Points[0].Value)
	assert.Zero(t, p.Min)
	assert.Zero(t, p.Max)
}

func TestProjectUnknownSector(t *testing.T) {
	rows := []models.AggregatedRow{rowFor("06", "California", "CA", 5.0, 12.5)}
	_, err := Project(rows, "X21")
	var use *catalog.UnknownSectorError
	require.ErrorAs(t, err, &use)
}

func TestProjectEmptyTable(t *testing.T) {
	p, err := Project(nil, "X01")
	require.NoError(t, err)
	assert.Empty(t, p.Points)
}

func TestBinderSelection(t *testing.T) {
	rows := []models.AggregatedRow{
		rowFor("06", "California", "CA", 5.0, 12.5),
		rowFor("48", "Texas", "TX", 3.0, 7.25),
	}
	b := NewBinder(rows)

	state, err := b.InitialPayload()
	require.NoError(t, err)
	assert.Equal(t, catalog.Default, state.Selected)
	assert.Equal(t, "California: 5.0%", state.Payload.Points[0].Hover)

	next, err := b.OnSelectionChanged(state, "X03")
	require.NoError(t, err)
	assert.Equal(t, catalog.SectorCode("X03"), next.Selected)
	assert.Equal(t, "Heat Map of Job Gain or Lost in: Utilities Sector(s)", next.Payload.Title)
	require.NotNil(t, next.Payload.Points[0].Value)
	assert.Equal(t, 3.0, *next.Payload.Points[0].Value)

	// Unknown selection keeps the previous view.
	kept, err := b.OnSelectionChanged(next, "X99")
	var use *catalog.UnknownSectorError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, next, kept)

	// Malformed table keeps the previous view too.
	delete(rows[0].Rates, "X04")
	kept, err = b.OnSelectionChanged(next, "X04")
	var mce *MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, next, kept)
}
