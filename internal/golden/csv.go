package golden

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/plantsim/internal/trajectory"
)

// WriteCSV writes t as time,input,output rows. The input column is empty
// for trajectories without input.
func WriteCSV(w io.Writer, t *trajectory.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "input", "output"}); err != nil {
		return err
	}
	row := make([]string, 3)
	for i := 0; i < t.Len(); i++ {
		row[0] = strconv.FormatFloat(t.Time[i], 'g', -1, 64)
		row[1] = ""
		if t.HasInput() {
			row[1] = strconv.FormatFloat(t.Input[i], 'g', -1, 64)
		}
		row[2] = strconv.FormatFloat(t.Output[i], 'g', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
