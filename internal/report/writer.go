// Package report renders run results as timestamp-suffixed CSV files in the
// configured output directory.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/traffic-emissions/internal/factors"
	"github.com/ukydev/traffic-emissions/internal/models"
)

const timestampLayout = "2006-01-02_15-04-05"

// WriteAggregates writes the batch-variant report, one row per observed
// category, and returns the file path.
func WriteAggregates(dir string, ts time.Time, aggregates []models.TypeAggregate) (string, error) {
	header := []string{"Vehicle Type", "Total Distance (km)"}
	for _, pollutant := range factors.Pollutants {
		header = append(header, fmt.Sprintf("%s Emissions (g)", pollutant))
	}
	header = append(header, "Vehicle Count")

	rows := make([][]string, 0, len(aggregates))
	for _, agg := range aggregates {
		row := []string{agg.Category, formatFloat(agg.TotalKm)}
		for _, pollutant := range factors.Pollutants {
			row = append(row, formatFloat(agg.Emissions[pollutant]))
		}
		row = append(row, strconv.Itoa(agg.VehicleCount))
		rows = append(rows, row)
	}

	return writeCSV(dir, fmt.Sprintf("type_emissions_%s.csv", ts.Format(timestampLayout)), header, rows)
}

// WriteEvents writes the streaming-variant report, one row per (vehicle,
// step) event in arrival order, and returns the file path.
func WriteEvents(dir string, ts time.Time, events []models.EmissionEvent) (string, error) {
	header := []string{"Time (s)", "Vehicle ID", "Vehicle Type", "Speed (m/s)", "Acceleration (m/s²)", "Custom Emission Value"}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			formatFloat(ev.Time),
			ev.VehicleID,
			ev.Category,
			formatFloat(ev.Speed),
			formatFloat(ev.Acceleration),
			formatFloat(ev.Value),
		})
	}

	return writeCSV(dir, fmt.Sprintf("emission_events_%s.csv", ts.Format(timestampLayout)), header, rows)
}

// WriteVehicles writes the per-vehicle summary: category, first/last seen
// times and final distance for every vehicle id observed during the run.
func WriteVehicles(dir string, ts time.Time, states map[string]*models.VehicleState) (string, error) {
	header := []string{"Vehicle ID", "Vehicle Type", "First Seen (s)", "Last Seen (s)", "Distance (km)"}

	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		st := states[id]
		rows = append(rows, []string{
			id,
			st.Category,
			formatFloat(st.FirstSeen),
			formatFloat(st.LastSeen),
			formatFloat(st.OdometerM / 1000.0),
		})
	}

	return writeCSV(dir, fmt.Sprintf("vehicle_trips_%s.csv", ts.Format(timestampLayout)), header, rows)
}

func writeCSV(dir, name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report %s: %w", path, err)
	}

	log.WithFields(log.Fields{"path": path, "rows": len(rows)}).Info("Report written")
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
