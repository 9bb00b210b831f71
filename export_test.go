package edl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportConfigIsUseless(t *testing.T) {
	if !(ExportConfig{}).IsUseless() {
		t.Fatal("empty config is useful")
	}
	if !(ExportConfig{Filename: "traj"}).IsUseless() {
		t.Fatal("config without a format is useful")
	}
	if (ExportConfig{Filename: "traj", AsCSV: true}).IsUseless() {
		t.Fatal("CSV config is useless")
	}
}

func TestStreamStates(t *testing.T) {
	conf := ExportConfig{Filename: filepath.Join(t.TempDir(), "traj"), AsCSV: true}
	ch := make(chan EntryState, 2)
	ch <- trajState(0, 5505, 143e3, 1000e3, 0)
	ch <- trajState(0.5, 5504, 142.7e3, 999.5e3, 0.01)
	close(ch)
	StreamStates(conf, ch)

	raw, err := os.ReadFile(conf.Filename + ".csv")
	if err != nil {
		t.Fatalf("no CSV written: %s", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected a header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "t_s,h_km,") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if cols := strings.Split(lines[1], ","); len(cols) != len(csvHeader) {
		t.Fatalf("row has %d columns, header %d", len(cols), len(csvHeader))
	}
}

func TestStreamStatesUseless(t *testing.T) {
	// A useless config must still drain the channel so the producer never blocks.
	ch := make(chan EntryState, 1)
	ch <- trajState(0, 5505, 143e3, 1000e3, 0)
	close(ch)
	StreamStates(ExportConfig{}, ch)
}
