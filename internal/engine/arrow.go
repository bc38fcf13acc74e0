package engine

import (
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/rotisserie/eris"

	"jobloss/internal/models"
)

// TableSchema is the Arrow schema of the aggregated table.
// Rate and metric columns are nullable; a null marks a missing value.
func TableSchema() *arrow.Schema {
	fields := []arrow.Field{
		{Name: models.ColStateFIPS, Type: arrow.BinaryTypes.String},
		{Name: models.ColStateName, Type: arrow.BinaryTypes.String},
		{Name: models.ColStateAbbr, Type: arrow.BinaryTypes.String},
	}
	for _, c := range models.RateColumns {
		fields = append(fields, arrow.Field{Name: c, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	fields = append(fields, arrow.Field{Name: models.ColJobLoss, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	return arrow.NewSchema(fields, nil)
}

// ToRecord builds one Arrow record batch from the aggregated rows.
// The caller must Release it.
func ToRecord(mem memory.Allocator, rows []models.AggregatedRow) arrow.Record {
	b := array.NewRecordBuilder(mem, TableSchema())
	defer b.Release()

	fips := b.Field(0).(*array.StringBuilder)
	name := b.Field(1).(*array.StringBuilder)
	abbr := b.Field(2).(*array.StringBuilder)
	for _, row := range rows {
		fips.Append(row.FIPS)
		name.Append(row.Name)
		abbr.Append(row.Abbr)
		for c, col := range models.RateColumns {
			appendValue(b.Field(3+c).(*array.Float64Builder), row, col)
		}
		appendValue(b.Field(3+models.NumRateColumns).(*array.Float64Builder), row, models.ColJobLoss)
	}
	return b.NewRecord()
}

func appendValue(fb *array.Float64Builder, row models.AggregatedRow, column string) {
	if v, ok := row.Value(column); ok {
		fb.Append(v)
		return
	}
	fb.AppendNull()
}

// WriteArrow writes the aggregated table to w as an Arrow IPC stream.
func WriteArrow(w io.Writer, rows []models.AggregatedRow) error {
	mem := memory.NewGoAllocator()
	rec := ToRecord(mem, rows)
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return eris.Wrap(err, "engine: write arrow record")
	}
	return eris.Wrap(iw.Close(), "engine: close arrow stream")
}
