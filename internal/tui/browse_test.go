package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobloss/internal/catalog"
	"jobloss/internal/models"
	"jobloss/internal/view"
)

func testRows() []models.AggregatedRow {
	row := func(name, abbr string, x01, x02 float64) models.AggregatedRow {
		rates := make(map[string]float64, models.NumRateColumns)
		for _, c := range models.RateColumns {
			rates[c] = 0.5
		}
		rates["X01"] = x01
		rates["X02"] = x02
		return models.AggregatedRow{
			State:       models.State{Name: name, Abbr: abbr},
			Rates:       rates,
			JobLossRate: x01 + x02,
			HasJobLoss:  true,
		}
	}
	return []models.AggregatedRow{
		row("California", "CA", 5.0, 1.0),
		row("Texas", "TX", 3.0, 9.0),
	}
}

func testBinder() *view.Binder {
	return view.NewBinder(testRows())
}

func TestBrowserInitialState(t *testing.T) {
	b, err := New(testBinder())
	require.NoError(t, err)

	assert.Equal(t, catalog.Default, b.State().Selected)
	assert.Equal(t, 3, b.table.GetRowCount())
	// sorted by value, highest first
	assert.Equal(t, "California", b.table.GetCell(1, 0).Text)
	assert.Equal(t, "5.0%", b.table.GetCell(1, 2).Text)
	idx, _ := b.dropdown.GetCurrentOption()
	assert.Equal(t, 0, idx)
}

func TestBrowserSelect(t *testing.T) {
	b, err := New(testBinder())
	require.NoError(t, err)

	require.NoError(t, b.Select("X02"))
	assert.Equal(t, catalog.SectorCode("X02"), b.State().Selected)
	assert.Equal(t, "Texas", b.table.GetCell(1, 0).Text)
	assert.Contains(t, b.title.GetText(true), "Mining, Quarrying, and Oil and Gas Extraction")
}

func TestBrowserSelectErrorKeepsView(t *testing.T) {
	b, err := New(testBinder())
	require.NoError(t, err)
	before := b.State()

	err = b.Select("X77")
	var use *catalog.UnknownSectorError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, before, b.State())
	assert.Equal(t, "California", b.table.GetCell(1, 0).Text)
	assert.Contains(t, b.message.GetText(true), "unknown sector")
}

func TestBrowserRejectedDropdownChoiceResets(t *testing.T) {
	rows := testRows()
	delete(rows[1].Rates, "X04")
	b, err := New(view.NewBinder(rows))
	require.NoError(t, err)

	b.dropdown.SetCurrentOption(3)

	assert.Equal(t, catalog.Default, b.State().Selected)
	idx, label := b.dropdown.GetCurrentOption()
	assert.Equal(t, 0, idx)
	assert.Equal(t, "Agriculture, Forestry, Fishing, and Hunting", label)
	assert.Contains(t, b.message.GetText(true), "X04")
	assert.Equal(t, "5.0%", b.table.GetCell(1, 2).Text)
}

func TestBrowserUnobservedStateListedLast(t *testing.T) {
	rows := testRows()
	rows[0].HasJobLoss = false
	b, err := New(view.NewBinder(rows))
	require.NoError(t, err)

	require.NoError(t, b.Select(string(catalog.Total)))
	assert.Equal(t, "Texas", b.table.GetCell(1, 0).Text)
	assert.Equal(t, "California", b.table.GetCell(2, 0).Text)
	assert.Equal(t, "nan%", b.table.GetCell(2, 2).Text)
}

func TestHeatColor(t *testing.T) {
	assert.Equal(t, tcell.NewRGBColor(255, 255, 0), heatColor(0, 0, 10))
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), heatColor(10, 0, 10))
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), heatColor(3, 3, 3))
}
