package engine

import "jobloss/internal/models"

// ColumnStore holds raw records in Struct-of-Arrays format.
type ColumnStore struct {
	// Source is the path the records were read from, used in errors.
	Source string

	// Data Columns (Flat Arrays), indexed like models.RateColumns
	Rates        [models.NumRateColumns][]float64
	JobLoss      []float64
	JobLossValid []bool
	Lines        []int

	// Dictionary Encoded state IDs (0..N)
	StateIDs  []int32
	StateDict []models.State
	stateIdx  map[models.State]int32

	Stats models.LoadStats
}

// NewColumnStore allocates a store with room for capacity rows.
func NewColumnStore(source string, capacity int) *ColumnStore {
	cs := &ColumnStore{
		Source:       source,
		JobLoss:      make([]float64, 0, capacity),
		JobLossValid: make([]bool, 0, capacity),
		Lines:        make([]int, 0, capacity),
		StateIDs:     make([]int32, 0, capacity),
		stateIdx:     make(map[models.State]int32),
	}
	for i := range cs.Rates {
		cs.Rates[i] = make([]float64, 0, capacity)
	}
	return cs
}

// Append adds one record read from the given source line.
func (cs *ColumnStore) Append(rec models.RawRecord, line int) {
	if cs.stateIdx == nil {
		cs.stateIdx = make(map[models.State]int32)
	}
	id, ok := cs.stateIdx[rec.State]
	if !ok {
		id = int32(len(cs.StateDict))
		cs.StateDict = append(cs.StateDict, rec.State)
		cs.stateIdx[rec.State] = id
	}
	cs.StateIDs = append(cs.StateIDs, id)

	for i, v := range rec.Rates {
		cs.Rates[i] = append(cs.Rates[i], v)
	}
	cs.JobLoss = append(cs.JobLoss, rec.JobLoss)
	cs.JobLossValid = append(cs.JobLossValid, rec.HasJobLoss)
	cs.Lines = append(cs.Lines, line)
}

// Len returns the number of stored records.
func (cs *ColumnStore) Len() int {
	return len(cs.StateIDs)
}

// Record rebuilds the i-th raw record.
func (cs *ColumnStore) Record(i int) models.RawRecord {
	rec := models.RawRecord{
		State:      cs.StateDict[cs.StateIDs[i]],
		JobLoss:    cs.JobLoss[i],
		HasJobLoss: cs.JobLossValid[i],
	}
	for c := range cs.Rates {
		rec.Rates[c] = cs.Rates[c][i]
	}
	return rec
}
