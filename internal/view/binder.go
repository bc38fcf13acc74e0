// Package view projects the aggregated table onto one sector column and
// produces the payload a choropleth needs. Nothing here does I/O.
package view

import (
	"fmt"
	"math"

	"jobloss/internal/catalog"
	"jobloss/internal/models"
)

// MissingColumnError reports an aggregated row without a value for the
// requested sector column.
type MissingColumnError struct {
	Column string
	State  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("view: column %q missing for state %q", e.Column, e.State)
}

// Title returns the map title for a sector label.
func Title(label string) string {
	return fmt.Sprintf("Heat Map of Job Gain or Lost in: %s Sector(s)", label)
}

// Hover returns the hover text shown for a state.
func Hover(stateName string, value float64) string {
	return stateName + ": " + FormatValue(value) + "%"
}

// Project builds the render payload for one sector. It only reads rows.
func Project(rows []models.AggregatedRow, code catalog.SectorCode) (models.RenderPayload, error) {
	label, err := catalog.LabelOf(code)
	if err != nil {
		return models.RenderPayload{}, err
	}

	column := string(code)
	payload := models.RenderPayload{
		Sector: column,
		Label:  label,
		Title:  Title(label),
		Points: make([]models.StatePoint, 0, len(rows)),
	}
	seen := false
	for _, row := range rows {
		v, ok := row.Value(column)
		if !ok {
			if column != models.ColJobLoss {
				return models.RenderPayload{}, &MissingColumnError{Column: column, State: row.Abbr}
			}
			// every metric value of the group was skipped
			payload.Points = append(payload.Points, models.StatePoint{
				StateAbbr: row.Abbr,
				StateName: row.Name,
				Hover:     Hover(row.Name, math.NaN()),
			})
			continue
		}
		if !seen || v < payload.Min {
			payload.Min = v
		}
		if !seen || v > payload.Max {
			payload.Max = v
		}
		seen = true
		payload.Points = append(payload.Points, models.StatePoint{
			StateAbbr: row.Abbr,
			StateName: row.Name,
			Value:     &v,
			Hover:     Hover(row.Name, v),
		})
	}
	return payload, nil
}

// ViewState is what an interactive session currently shows.
type ViewState struct {
	Selected catalog.SectorCode
	Payload  models.RenderPayload
}

// Binder answers selection events against one immutable table.
type Binder struct {
	rows []models.AggregatedRow
}

// NewBinder wraps an aggregated table. The table must not be modified afterwards.
func NewBinder(rows []models.AggregatedRow) *Binder {
	return &Binder{rows: rows}
}

// Rows returns the bound table.
func (b *Binder) Rows() []models.AggregatedRow {
	return b.rows
}

// InitialPayload is the state a new session starts in.
func (b *Binder) InitialPayload() (ViewState, error) {
	payload, err := Project(b.rows, catalog.Default)
	if err != nil {
		return ViewState{}, err
	}
	return ViewState{Selected: catalog.Default, Payload: payload}, nil
}

// OnSelectionChanged moves the session to a new sector. On error the previous
// state is returned unchanged together with the error.
func (b *Binder) OnSelectionChanged(prev ViewState, raw string) (ViewState, error) {
	code, err := catalog.Parse(raw)
	if err != nil {
		return prev, err
	}
	payload, err := Project(b.rows, code)
	if err != nil {
		return prev, err
	}
	return ViewState{Selected: code, Payload: payload}, nil
}
