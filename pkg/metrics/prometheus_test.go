package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	a := NewMetrics("flight_tracker", nil)
	b := NewMetrics("flight_tracker", nil)

	a.MessagesScanned.Inc()
	if got := testutil.ToFloat64(b.MessagesScanned); got != 0 {
		t.Fatalf("second registry saw %v scans; want 0", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics("flight_tracker", prometheus.NewRegistry())
	m.RecordsExtracted.WithLabelValues("english_double").Add(2)
	m.LastRunRecords.Set(7)

	path := filepath.Join(t.TempDir(), "tracker.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v; want nil", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(b)
	for _, want := range []string{
		`flight_tracker_records_extracted_total{variant="english_double"} 2`,
		"flight_tracker_last_run_records 7",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("textfile missing %q:\n%s", want, out)
		}
	}
}
