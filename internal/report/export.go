package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/kubechargeback/cbdash/internal/domain"
)

var csvHeader = []string{"Group Key", "CPU (mCPU)", "Memory (MiB)", "Total Cost"}

// WriteAllocationsCSV writes allocs as CSV, one row per group in input order.
func WriteAllocationsCSV(w io.Writer, allocs []domain.Allocation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, a := range allocs {
		row := []string{
			a.GroupKey,
			strconv.FormatInt(a.CPUMcpu, 10),
			strconv.FormatInt(a.MemMiB, 10),
			strconv.FormatFloat(a.TotalCostUnits, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row %s", a.GroupKey)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
