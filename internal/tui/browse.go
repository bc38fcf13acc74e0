// Package tui is a terminal front end: a sector dropdown above a table of
// states shaded by the selected column.
package tui

import (
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"jobloss/internal/catalog"
	"jobloss/internal/models"
	"jobloss/internal/view"
)

// Browser owns one interactive session.
type Browser struct {
	binder *view.Binder
	state  view.ViewState

	app      *tview.Application
	dropdown *tview.DropDown
	title    *tview.TextView
	message  *tview.TextView
	table    *tview.Table
	syncing  bool
}

// New builds the widgets and renders the initial sector.
func New(binder *view.Binder) (*Browser, error) {
	state, err := binder.InitialPayload()
	if err != nil {
		return nil, err
	}
	b := &Browser{binder: binder, state: state}
	b.build()
	b.render()
	return b, nil
}

func (b *Browser) build() {
	sectors := catalog.Sectors()
	labels := make([]string, len(sectors))
	current := 0
	for i, s := range sectors {
		labels[i] = s.Label
		if s.Code == b.state.Selected {
			current = i
		}
	}

	header := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("Job Loss Due to AI by Industry in USA")

	// SetCurrentOption fires the selected func, so it goes first.
	b.dropdown = tview.NewDropDown().
		SetLabel("Sector: ").
		SetOptions(labels, nil).
		SetCurrentOption(current)
	b.dropdown.SetSelectedFunc(func(_ string, index int) {
		if b.syncing {
			return
		}
		_ = b.Select(string(sectors[index].Code))
	})

	b.title = tview.NewTextView().SetTextAlign(tview.AlignCenter)
	b.message = tview.NewTextView().SetDynamicColors(true)

	b.table = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	b.table.SetBorder(true).SetTitle(" States ")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(b.dropdown, 1, 0, true).
		AddItem(b.message, 1, 0, false).
		AddItem(b.title, 1, 0, false).
		AddItem(b.table, 0, 1, false)

	b.app = tview.NewApplication().SetRoot(layout, true).SetFocus(b.dropdown)
	b.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch {
		case ev.Key() == tcell.KeyTab:
			if b.dropdown.HasFocus() {
				b.app.SetFocus(b.table)
			} else {
				b.app.SetFocus(b.dropdown)
			}
			return nil
		case ev.Rune() == 'q' && b.table.HasFocus():
			b.app.Stop()
			return nil
		}
		return ev
	})
}

// State returns what the session currently shows.
func (b *Browser) State() view.ViewState {
	return b.state
}

// Select handles a selection event. On error the message line shows it and
// the previous table stays on screen.
func (b *Browser) Select(raw string) error {
	next, err := b.binder.OnSelectionChanged(b.state, raw)
	if err != nil {
		zap.L().Warn("selection rejected", zap.String("sector", raw), zap.Error(err))
		b.message.SetText("[red]" + tview.Escape(err.Error()) + "[-]")
		b.syncDropdown()
		return err
	}
	b.state = next
	b.message.SetText("")
	b.render()
	return nil
}

// syncDropdown points the dropdown back at the sector on screen.
func (b *Browser) syncDropdown() {
	for i, code := range catalog.AllCodes() {
		if code == b.state.Selected {
			if idx, _ := b.dropdown.GetCurrentOption(); idx != i {
				b.syncing = true
				b.dropdown.SetCurrentOption(i)
				b.syncing = false
			}
			return
		}
	}
}

func (b *Browser) render() {
	p := b.state.Payload
	b.title.SetText(tview.Escape(p.Title))

	points := make([]models.StatePoint, len(p.Points))
	copy(points, p.Points)
	// highest first, unobserved states last
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i].Value, points[j].Value
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})

	b.table.Clear()
	for c, h := range []string{"State", "Abbr", "Value"} {
		b.table.SetCell(0, c, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold))
	}
	for r, pt := range points {
		text, color := view.FormatValue(math.NaN())+"%", tcell.ColorGray
		if pt.Value != nil {
			text, color = view.FormatValue(*pt.Value)+"%", heatColor(*pt.Value, p.Min, p.Max)
		}
		b.table.SetCell(r+1, 0, tview.NewTableCell(pt.StateName).SetExpansion(1))
		b.table.SetCell(r+1, 1, tview.NewTableCell(pt.StateAbbr))
		b.table.SetCell(r+1, 2, tview.NewTableCell(text).
			SetAlign(tview.AlignRight).
			SetTextColor(color))
	}
	b.table.ScrollToBeginning()
}

// heatColor interpolates yellow (low) to red (high).
func heatColor(v, lo, hi float64) tcell.Color {
	t := 1.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	g := int32(255 * (1 - t))
	return tcell.NewRGBColor(255, g, 0)
}

// Run blocks until the user quits.
func (b *Browser) Run() error {
	return b.app.Run()
}
