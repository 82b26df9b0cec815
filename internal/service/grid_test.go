package service

import (
	"testing"

	"github.com/safecity/backend/internal/domain"
)

func TestCrimeGrid_CountsPerCell(t *testing.T) {
	reports := []domain.CrimeReport{
		report("1", 22.5712, 88.3634),
		report("2", 22.5799, 88.3601), // same cell as 1
		report("3", 22.5812, 88.3634), // next row
		report("4", -0.005, -0.005),   // negative coordinates floor downwards
	}

	g := NewCrimeGrid(reports, DefaultCellSize)
	if g.Total() != 4 {
		t.Fatalf("total = %d, want 4", g.Total())
	}
	if n := g.Count(22.575, 88.365); n != 2 {
		t.Errorf("count in first cell = %d, want 2", n)
	}
	if n := g.Count(22.585, 88.365); n != 1 {
		t.Errorf("count in next row = %d, want 1", n)
	}
	if n := g.Count(-0.001, -0.009); n != 1 {
		t.Errorf("count in negative cell = %d, want 1", n)
	}
	if n := g.Count(0.001, 0.001); n != 0 {
		t.Errorf("cell across the origin should be empty, got %d", n)
	}
}

func TestCrimeGrid_CorridorCount(t *testing.T) {
	reports := []domain.CrimeReport{
		report("on-path-1", 22.505, 88.305),
		report("on-path-2", 22.505, 88.305),
		report("on-path-3", 22.535, 88.305),
		report("off-path", 22.505, 88.405),
	}
	g := NewCrimeGrid(reports, DefaultCellSize)

	path := [][2]float64{{22.501, 88.301}, {22.549, 88.301}}
	if n := g.CorridorCount(path); n != 3 {
		t.Errorf("corridor count = %d, want 3", n)
	}
	if n := g.CorridorCount(nil); n != 0 {
		t.Errorf("empty path count = %d, want 0", n)
	}
}

func TestCrimeGrid_Heatmap(t *testing.T) {
	reports := []domain.CrimeReport{
		report("1", 22.505, 88.305),
		report("2", 22.505, 88.305),
		report("3", 22.505, 88.305),
		report("4", 22.515, 88.305),
	}

	points := NewCrimeGrid(reports, DefaultCellSize).Heatmap()
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Count != 3 || points[0].Intensity != 1 {
		t.Errorf("busiest cell = %+v, want count 3 intensity 1", points[0])
	}
	if points[0].Latitude != 22.505 || points[0].Longitude != 88.305 {
		t.Errorf("busiest cell centre = (%f, %f), want (22.505, 88.305)", points[0].Latitude, points[0].Longitude)
	}
	if points[1].Intensity != 0.33 {
		t.Errorf("second cell intensity = %f, want 0.33", points[1].Intensity)
	}
}
