package edl

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ExportConfig configures where the propagated trajectory is streamed.
type ExportConfig struct {
	Filename string
	AsCSV    bool
	Planet   Planet // used for the altitude column; defaults to Mars
}

// IsUseless returns whether this configuration will output anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV || c.Filename == ""
}

// csvHeader lists the exported columns.
var csvHeader = []string{"t_s", "h_km", "lon_deg", "lat_deg", "v_mps", "fpa_deg", "heading_deg", "range_km", "mass_kg", "bank_deg", "lift_mps2", "drag_mps2", "lift_ratio", "drag_ratio"}

// StreamStates consumes propagated states from the channel and writes them
// to a CSV file until the channel is closed. It is meant to run in its own
// goroutine for the duration of a propagation.
func StreamStates(conf ExportConfig, stateChan <-chan (EntryState)) {
	if conf.IsUseless() {
		for range stateChan {
			// Drain so the propagation never blocks.
		}
		return
	}
	if conf.Planet.Radius == 0 {
		conf.Planet = Mars
	}
	f, err := os.Create(fmt.Sprintf("%s.csv", conf.Filename))
	if err != nil {
		panic(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(csvHeader); err != nil {
		panic(err)
	}
	for st := range stateChan {
		rec := []float64{
			st.T,
			(st.X[ixRad] - conf.Planet.Radius) / 1000,
			Degrees(st.X[ixLon]),
			Degrees(st.X[ixLat]),
			st.X[ixVel],
			Degrees(st.X[ixFPA]),
			Degrees(st.X[ixHead]),
			st.X[ixRange] / 1000,
			st.X[ixMass],
			Degrees(st.Bank),
			st.Lift,
			st.Drag,
			st.Ratios.Lift,
			st.Ratios.Drag,
		}
		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(row); err != nil {
			panic(err)
		}
	}
}
