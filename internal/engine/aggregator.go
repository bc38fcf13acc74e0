package engine

import (
	"github.com/rotisserie/eris"

	"jobloss/internal/models"
)

// MissingMetricPolicy decides what a missing job-loss value does to its group.
type MissingMetricPolicy string

const (
	// SkipMissing leaves the row out of both the sum and the count.
	SkipMissing MissingMetricPolicy = "skip"
	// FailOnMissing rejects the dataset at the first missing value.
	FailOnMissing MissingMetricPolicy = "fail"
)

// ParseMissingMetricPolicy validates a configured policy name.
// An empty name selects SkipMissing.
func ParseMissingMetricPolicy(s string) (MissingMetricPolicy, error) {
	switch p := MissingMetricPolicy(s); p {
	case "":
		return SkipMissing, nil
	case SkipMissing, FailOnMissing:
		return p, nil
	default:
		return "", eris.Errorf("engine: unknown missing metric policy %q (want skip or fail)", s)
	}
}

// groupKey is the composite key (state, X01..X20, X000).
// State is the dictionary ID of (fips, name, abbr).
type groupKey struct {
	state int32
	rates [models.NumRateColumns]float64
}

type aggStats struct {
	Sum   float64
	Count int
}

// Aggregate groups the records by state and rate columns and averages the
// job-loss metric of each group. Groups are returned in first-seen order.
func (cs *ColumnStore) Aggregate(policy MissingMetricPolicy) ([]models.AggregatedRow, error) {
	if policy == "" {
		policy = SkipMissing
	}

	index := make(map[groupKey]int)
	keys := make([]groupKey, 0)
	stats := make([]aggStats, 0)
	skipped := 0

	for j := 0; j < cs.Len(); j++ {
		var k groupKey
		k.state = cs.StateIDs[j]
		for c := range cs.Rates {
			k.rates[c] = cs.Rates[c][j]
		}

		idx, ok := index[k]
		if !ok {
			idx = len(keys)
			index[k] = idx
			keys = append(keys, k)
			stats = append(stats, aggStats{})
		}

		if !cs.JobLossValid[j] {
			if policy == FailOnMissing {
				return nil, &DataLoadError{
					Path:   cs.Source,
					Line:   cs.Lines[j],
					Column: models.ColJobLoss,
					Err:    eris.New("missing metric value"),
				}
			}
			skipped++
			continue
		}
		stats[idx].Sum += cs.JobLoss[j]
		stats[idx].Count++
	}
	cs.Stats.MetricsSkipped = skipped

	rows := make([]models.AggregatedRow, len(keys))
	for i, k := range keys {
		row := models.AggregatedRow{
			State: cs.StateDict[k.state],
			Rates: make(map[string]float64, models.NumRateColumns),
		}
		for c, name := range models.RateColumns {
			row.Rates[name] = k.rates[c]
		}
		if s := stats[i]; s.Count > 0 {
			row.JobLossRate = s.Sum / float64(s.Count)
			row.HasJobLoss = true
		}
		rows[i] = row
	}
	return rows, nil
}

// StoreFromRows turns aggregated rows back into a store, one record per row.
func StoreFromRows(source string, rows []models.AggregatedRow) *ColumnStore {
	cs := NewColumnStore(source, len(rows))
	for i, row := range rows {
		rec := models.RawRecord{
			State:      row.State,
			JobLoss:    row.JobLossRate,
			HasJobLoss: row.HasJobLoss,
		}
		for c, name := range models.RateColumns {
			rec.Rates[c] = row.Rates[name]
		}
		cs.Append(rec, i+2)
	}
	return cs
}
