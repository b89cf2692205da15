package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCrimeCountBoundingBox(t *testing.T) {
	s := New([]CrimePoint{
		{Lat: 12.9700, Lon: 77.5900},
		{Lat: 12.9725, Lon: 77.5920}, // inside 0.003 box
		{Lat: 12.9800, Lon: 77.5900}, // outside
	}, nil, nil)

	if got := s.CrimeCount(12.9710, 77.5910, 0.003); got != 2 {
		t.Errorf("expected 2 crimes, got %d", got)
	}
	if got := s.CrimeCount(13.1, 77.3, 0.003); got != 0 {
		t.Errorf("expected 0 crimes, got %d", got)
	}
}

func TestLightingAroundDistinguishesEmpty(t *testing.T) {
	s := New(nil, []LightPoint{
		{Lat: 12.970, Lon: 77.590, Score: 8},
		{Lat: 12.971, Lon: 77.591, Score: 6},
	}, nil)

	mean, ok := s.LightingAround(12.9705, 77.5905, 0.005)
	if !ok {
		t.Fatal("expected lighting data near point")
	}
	if mean != 7 {
		t.Errorf("expected mean 7, got %f", mean)
	}

	if _, ok := s.LightingAround(13.1, 77.3, 0.005); ok {
		t.Error("expected no lighting data far from points")
	}
}

func TestPopulationAroundAggregates(t *testing.T) {
	s := New(nil, nil, []PopulationPoint{
		{Lat: 12.970, Lon: 77.590, Density: 4000, Traffic: 60, MainRoad: true},
		{Lat: 12.971, Lon: 77.591, Density: 2000, Traffic: 40, MainRoad: true},
		{Lat: 12.9705, Lon: 77.5905, Density: 3000, Traffic: 50, MainRoad: false},
	})

	agg, ok := s.PopulationAround(12.9705, 77.5905, 0.005)
	if !ok {
		t.Fatal("expected population data near point")
	}
	if agg.Count != 3 {
		t.Fatalf("expected 3 points, got %d", agg.Count)
	}
	if agg.DensityMean != 3000 {
		t.Errorf("expected density mean 3000, got %f", agg.DensityMean)
	}
	if agg.TrafficMean != 50 {
		t.Errorf("expected traffic mean 50, got %f", agg.TrafficMean)
	}
	if agg.MainRoadShare < 0.66 || agg.MainRoadShare > 0.67 {
		t.Errorf("expected main road share 2/3, got %f", agg.MainRoadShare)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	crimes := write("crimes.csv", "Latitude,Longitude\n12.97,77.59\nnot-a-number,77.59\n12.98,77.60\n")
	lights := write("lighting.csv", "Latitude,Longitude,lighting_score\n12.97,77.59,8.5\n12.98,77.60,oops\n")
	population := write("population.csv", "Latitude,Longitude,population_density,traffic_level,is_main_road\n12.97,77.59,3000,50,1\n")

	s, err := Load(crimes, lights, population)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nCrimes, nLights, nPop := s.Sizes()
	if nCrimes != 2 {
		t.Errorf("expected 2 crime rows, got %d", nCrimes)
	}
	if nLights != 1 {
		t.Errorf("expected 1 lighting row, got %d", nLights)
	}
	if nPop != 1 {
		t.Errorf("expected 1 population row, got %d", nPop)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/crimes.csv", "/nonexistent/l.csv", "/nonexistent/p.csv"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
