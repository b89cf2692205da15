package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/arjunrs/saferoutes/internal/pkg/metrics"
)

// Load reads the three CSV datasets from disk. A malformed row is skipped
// and counted, never fatal; a missing file is.
func Load(crimePath, lightingPath, populationPath string) (*Spatial, error) {
	crimes, err := loadCrimes(crimePath)
	if err != nil {
		return nil, fmt.Errorf("load crimes: %w", err)
	}
	lights, err := loadLights(lightingPath)
	if err != nil {
		return nil, fmt.Errorf("load lighting: %w", err)
	}
	population, err := loadPopulation(populationPath)
	if err != nil {
		return nil, fmt.Errorf("load population: %w", err)
	}

	slog.Info("spatial datasets loaded",
		"crimes", len(crimes), "lighting", len(lights), "population", len(population))

	return New(crimes, lights, population), nil
}

func loadCrimes(path string) ([]CrimePoint, error) {
	var points []CrimePoint
	err := readRows(path, "crime", func(cols map[string]int, record []string) bool {
		lat, lon, ok := parseLatLon(cols, record)
		if !ok {
			return false
		}
		points = append(points, CrimePoint{Lat: lat, Lon: lon})
		return true
	})
	return points, err
}

func loadLights(path string) ([]LightPoint, error) {
	var points []LightPoint
	err := readRows(path, "lighting", func(cols map[string]int, record []string) bool {
		lat, lon, ok := parseLatLon(cols, record)
		if !ok {
			return false
		}
		score, err := strconv.ParseFloat(field(cols, record, "lighting_score"), 64)
		if err != nil {
			return false
		}
		points = append(points, LightPoint{Lat: lat, Lon: lon, Score: score})
		return true
	})
	return points, err
}

func loadPopulation(path string) ([]PopulationPoint, error) {
	var points []PopulationPoint
	err := readRows(path, "population", func(cols map[string]int, record []string) bool {
		lat, lon, ok := parseLatLon(cols, record)
		if !ok {
			return false
		}
		density, err := strconv.ParseFloat(field(cols, record, "population_density"), 64)
		if err != nil {
			return false
		}
		traffic, err := strconv.ParseFloat(field(cols, record, "traffic_level"), 64)
		if err != nil {
			return false
		}
		mainRoad, err := strconv.ParseFloat(field(cols, record, "is_main_road"), 64)
		if err != nil {
			return false
		}
		points = append(points, PopulationPoint{
			Lat: lat, Lon: lon,
			Density: density, Traffic: traffic,
			MainRoad: mainRoad > 0.5,
		})
		return true
	})
	return points, err
}

// readRows streams a CSV file, dispatching each record to parse. parse
// returns false for rows it could not use; those are skipped and counted.
func readRows(path, name string, parse func(cols map[string]int, record []string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if !parse(cols, record) {
			skipped++
		}
	}

	if skipped > 0 {
		metrics.DatasetRowsSkipped.WithLabelValues(name).Add(float64(skipped))
		slog.Warn("skipped malformed dataset rows", "dataset", name, "rows", skipped)
	}
	return nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(cols map[string]int, record []string, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseLatLon(cols map[string]int, record []string) (lat, lon float64, ok bool) {
	lat, err := strconv.ParseFloat(field(cols, record, "latitude"), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(field(cols, record, "longitude"), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
