package telemetry

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/dust/sampler"
)

// SampleRecord is one row of a sample dump.
type SampleRecord struct {
	Index int     `csv:"index"`
	X     float32 `csv:"x"`
	Y     float32 `csv:"y"`
	Z     float32 `csv:"z"`
	U     float32 `csv:"u"`
	V     float32 `csv:"v"`
	NX    float32 `csv:"nx"`
	NY    float32 `csv:"ny"`
	NZ    float32 `csv:"nz"`
}

// SampleRecords flattens a sample set into rows.
func SampleRecords(set *sampler.SampleSet) []SampleRecord {
	rows := make([]SampleRecord, set.Len())
	for i := range rows {
		p, n, uv := set.Position(i), set.Normal(i), set.UV(i)
		rows[i] = SampleRecord{
			Index: i,
			X:     p.X(), Y: p.Y(), Z: p.Z(),
			U: uv.X(), V: uv.Y(),
			NX: n.X(), NY: n.Y(), NZ: n.Z(),
		}
	}
	return rows
}

// WriteSamplesCSV writes set to w with a header row.
func WriteSamplesCSV(w io.Writer, set *sampler.SampleSet) error {
	if err := gocsv.Marshal(SampleRecords(set), w); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

// ReadSamplesCSV parses rows written by WriteSamplesCSV back into a sample set.
func ReadSamplesCSV(r io.Reader) (*sampler.SampleSet, error) {
	var rows []SampleRecord
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	set := sampler.NewSampleSet(len(rows))
	for i, row := range rows {
		if row.Index != i {
			return nil, fmt.Errorf("reading samples: row %d has index %d", i, row.Index)
		}
		copy(set.Positions[3*i:], []float32{row.X, row.Y, row.Z})
		copy(set.UVs[2*i:], []float32{row.U, row.V})
		copy(set.Normals[3*i:], []float32{row.NX, row.NY, row.NZ})
	}
	return set, nil
}
