package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/VArrow2001/shuffle-audit/internal/model"
)

// SamplesCSV renders every pass as one CSV row: the pass ID, its start and
// finish times (RFC 3339, empty when unknown), then the catalogue number
// played at each position. Shorter passes leave trailing cells empty.
//
//	pass,started_at,finished_at,1,2,3
//	1,2024-03-01T12:00:00Z,2024-03-01T12:09:41Z,15,5,10
func SamplesCSV(set *model.SampleSet) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	width := set.MaxLen()
	header := []string{"pass", "started_at", "finished_at"}
	for i := 1; i <= width; i++ {
		header = append(header, strconv.Itoa(i))
	}
	if err := cw.Write(header); err != nil {
		return nil, err
	}

	for _, p := range set.Passes {
		row := make([]string, 3, 3+width)
		row[0] = strconv.FormatInt(p.ID, 10)
		row[1] = formatTime(p.StartedAt)
		row[2] = formatTime(p.FinishedAt)
		for i := 0; i < width; i++ {
			if i < len(p.Order) {
				row = append(row, strconv.Itoa(p.Order[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
