package blob

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestProgressReaderReportsCumulativeBytes(t *testing.T) {
	payload := strings.Repeat("x", 100)
	var reports [][2]int64
	pr := &progressReader{
		r:     strings.NewReader(payload),
		total: int64(len(payload)),
		report: func(transferred, total int64) {
			reports = append(reports, [2]int64{transferred, total})
		},
	}

	var out bytes.Buffer
	if _, err := io.CopyBuffer(&out, pr, make([]byte, 32)); err != nil {
		t.Fatalf("copy: %v", err)
	}

	if out.Len() != len(payload) {
		t.Fatalf("expected %d bytes copied, got %d", len(payload), out.Len())
	}
	if len(reports) == 0 {
		t.Fatalf("expected progress reports")
	}
	last := reports[len(reports)-1]
	if last[0] != int64(len(payload)) || last[1] != int64(len(payload)) {
		t.Fatalf("expected final report (100, 100), got %v", last)
	}
	for i := 1; i < len(reports); i++ {
		if reports[i][0] < reports[i-1][0] {
			t.Fatalf("transferred went backwards at %d: %v", i, reports)
		}
	}
}
