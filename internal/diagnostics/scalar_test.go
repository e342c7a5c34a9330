package diagnostics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestScalarWriterFlushWritesCSVHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scalars.csv")
	w := NewScalarWriter(path)
	w.Record(ScalarRecord{Step: 0, Time: 0, TotalEnergy: 1.5, ParticleCount: 100})
	w.Record(ScalarRecord{Step: 1, Time: 0.1, TotalEnergy: 1.4, ParticleCount: 100})

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "total_energy") {
		t.Fatalf("CSV missing header: %s", content)
	}
	if !strings.Contains(content, "1.5") || !strings.Contains(content, "1.4") {
		t.Fatalf("CSV missing recorded values: %s", content)
	}
}

func TestNewGaugesRegistersAndUpdates(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := NewGauges(reg)
	g.Update(ScalarRecord{TotalEnergy: 42.0, ParticleCount: 7})
	g.ObservePhase("dynamics", 0.01)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected at least one registered metric family")
	}
	found := false
	for _, f := range families {
		if f.GetName() == "picengine_total_energy" {
			found = true
			if got := f.Metric[0].GetGauge().GetValue(); got != 42.0 {
				t.Fatalf("total_energy gauge = %f, want 42.0", got)
			}
		}
	}
	if !found {
		t.Fatalf("picengine_total_energy not found among registered families")
	}
}
