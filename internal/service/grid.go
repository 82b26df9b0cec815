package service

import (
	"math"
	"sort"

	"github.com/safecity/backend/internal/domain"
	"github.com/safecity/backend/pkg/utils"
)

// DefaultCellSize is the crime grid resolution in degrees (~1.1 km)
const DefaultCellSize = 0.01

type cellKey struct {
	row int64 // floor(lat / cellSize)
	col int64 // floor(lon / cellSize)
}

// CrimeGrid counts reports per uniform lat/lon cell
type CrimeGrid struct {
	cellSize float64
	counts   map[cellKey]int
	total    int
}

// NewCrimeGrid buckets valid reports into cells of cellSize degrees
func NewCrimeGrid(reports []domain.CrimeReport, cellSize float64) *CrimeGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := &CrimeGrid{
		cellSize: cellSize,
		counts:   make(map[cellKey]int),
	}
	for _, r := range reports {
		if !utils.ValidCoordinate(r.Latitude, r.Longitude) {
			continue
		}
		g.counts[g.cellOf(r.Latitude, r.Longitude)]++
		g.total++
	}
	return g
}

func (g *CrimeGrid) cellOf(lat, lon float64) cellKey {
	return cellKey{
		row: int64(math.Floor(lat / g.cellSize)),
		col: int64(math.Floor(lon / g.cellSize)),
	}
}

// Count returns the number of reports in the cell containing the point
func (g *CrimeGrid) Count(lat, lon float64) int {
	return g.counts[g.cellOf(lat, lon)]
}

// Total returns the number of reports in the grid
func (g *CrimeGrid) Total() int {
	return g.total
}

// CorridorCount sums the reports in every distinct cell a polyline crosses.
// Segments are sampled at half-cell steps so no crossed cell is skipped
// along the dominant axis.
func (g *CrimeGrid) CorridorCount(path [][2]float64) int {
	if len(path) == 0 {
		return 0
	}

	visited := make(map[cellKey]struct{})
	visit := func(lat, lon float64) {
		visited[g.cellOf(lat, lon)] = struct{}{}
	}

	visit(path[0][0], path[0][1])
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		span := math.Max(math.Abs(to[0]-from[0]), math.Abs(to[1]-from[1]))
		steps := int(math.Ceil(span / (g.cellSize / 2)))
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps)
			visit(utils.Lerp(from[0], to[0], t), utils.Lerp(from[1], to[1], t))
		}
		visit(to[0], to[1])
	}

	total := 0
	for key := range visited {
		total += g.counts[key]
	}
	return total
}

// Heatmap returns one point per non-empty cell at the cell centre, busiest first.
// Intensity is the cell count relative to the busiest cell.
func (g *CrimeGrid) Heatmap() []domain.HeatmapPoint {
	keys := make([]cellKey, 0, len(g.counts))
	peak := 0
	for key, n := range g.counts {
		keys = append(keys, key)
		peak = max(peak, n)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if g.counts[a] != g.counts[b] {
			return g.counts[a] > g.counts[b]
		}
		if a.row != b.row {
			return a.row < b.row
		}
		return a.col < b.col
	})

	points := make([]domain.HeatmapPoint, 0, len(keys))
	for _, key := range keys {
		n := g.counts[key]
		points = append(points, domain.HeatmapPoint{
			Latitude:  utils.RoundTo((float64(key.row)+0.5)*g.cellSize, 6),
			Longitude: utils.RoundTo((float64(key.col)+0.5)*g.cellSize, 6),
			Count:     n,
			Intensity: utils.RoundTo(float64(n)/float64(peak), 2),
		})
	}
	return points
}
