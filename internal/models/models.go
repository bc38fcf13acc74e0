package models

// Column names of the job statistics table.
const (
	ColStateFIPS = "state_fips"
	ColStateName = "state_name"
	ColStateAbbr = "state_abbr"
	ColTotalRate = "X000"
	ColJobLoss   = "worker_job_loss_rate"
)

// NumRateColumns is the number of per-sector rate columns plus X000.
const NumRateColumns = 21

// RateColumns lists the rate columns in file order: X01..X20 then X000.
var RateColumns = [NumRateColumns]string{
	"X01", "X02", "X03", "X04", "X05", "X06", "X07", "X08", "X09", "X10",
	"X11", "X12", "X13", "X14", "X15", "X16", "X17", "X18", "X19", "X20",
	ColTotalRate,
}

// RequiredColumns returns every column the loader needs, in file order.
func RequiredColumns() []string {
	cols := []string{ColStateFIPS, ColStateName, ColStateAbbr}
	cols = append(cols, RateColumns[:]...)
	return append(cols, ColJobLoss)
}

// State identifies a U.S. state.
type State struct {
	FIPS string `json:"state_fips"`
	Name string `json:"state_name"`
	Abbr string `json:"state_abbr"`
}

// RawRecord is one row of the source table.
type RawRecord struct {
	State      State
	Rates      [NumRateColumns]float64
	JobLoss    float64
	HasJobLoss bool
}

// AggregatedRow is one group of raw records with the job-loss metric averaged.
type AggregatedRow struct {
	State
	Rates       map[string]float64 `json:"rates"`
	JobLossRate float64            `json:"worker_job_loss_rate"`
	// HasJobLoss is false when every metric value in the group was missing.
	HasJobLoss bool `json:"has_job_loss"`
}

// Value returns the value of a sector column for the row.
// The job-loss column is only present when at least one metric was observed.
func (r AggregatedRow) Value(column string) (float64, bool) {
	if column == ColJobLoss {
		return r.JobLossRate, r.HasJobLoss
	}
	v, ok := r.Rates[column]
	return v, ok
}

// LoadStats summarises one load of the table.
type LoadStats struct {
	RowsRead       int `json:"rows_read"`
	RowsDropped    int `json:"rows_dropped"`
	MetricsSkipped int `json:"metrics_skipped"`
	Groups         int `json:"groups"`
}

// SectorOption is one entry of the sector dropdown.
type SectorOption struct {
	Code  string `json:"value"`
	Label string `json:"label"`
}

// StatePoint is one shaded state on the map.
// Value is nil when the state has no observed metric; it stays unshaded.
type StatePoint struct {
	StateAbbr string   `json:"state_abbr"`
	StateName string   `json:"state_name"`
	Value     *float64 `json:"value"`
	Hover     string   `json:"hover"`
}

// RenderPayload is everything a map view needs for one sector.
type RenderPayload struct {
	Sector string       `json:"sector"`
	Label  string       `json:"label"`
	Title  string       `json:"title"`
	Points []StatePoint `json:"points"`
	// Min and Max cover observed values only.
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}
