package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/safecity/backend/internal/domain"
	"github.com/safecity/backend/pkg/utils"
)

const (
	// ClusterRadiusKm is the maximum founder distance for joining an area
	ClusterRadiusKm = 1.0

	recentCrimeLimit = 3
	kmPerDegree      = utils.EarthRadiusKm * math.Pi / 180
	founderPointTol  = 1e-9
)

// AreaClusterer groups crime reports into areas and scores them.
//
// Membership is tested against the first report of each area (its founder),
// and a report joins the earliest-created area within range, not the nearest.
// Areas can therefore chain out past the radius of their founder's neighbours.
type AreaClusterer struct {
	radiusKm float64
}

// NewAreaClusterer creates a clusterer with the standard 1 km radius
func NewAreaClusterer() *AreaClusterer {
	return &AreaClusterer{radiusKm: ClusterRadiusKm}
}

// Areas clusters valid reports and returns scored areas, busiest first
func (c *AreaClusterer) Areas(reports []domain.CrimeReport) []domain.Area {
	clusters := c.Cluster(ValidReports(reports))

	areas := make([]domain.Area, 0, len(clusters))
	for _, members := range clusters {
		areas = append(areas, buildArea(members))
	}

	sort.SliceStable(areas, func(i, j int) bool {
		return areas[i].CrimeCount > areas[j].CrimeCount
	})

	return areas
}

// Cluster partitions reports into founder-anchored clusters in creation order.
// Callers must pass reports with valid coordinates.
func (c *AreaClusterer) Cluster(reports []domain.CrimeReport) [][]domain.CrimeReport {
	clusters := make([][]domain.CrimeReport, 0)
	index := newFounderIndex(c.radiusKm)

	for _, report := range reports {
		target := c.firstFit(clusters, index, report)
		if target < 0 {
			index.insert(report, len(clusters))
			clusters = append(clusters, []domain.CrimeReport{report})
			continue
		}
		clusters[target] = append(clusters[target], report)
	}

	return clusters
}

// firstFit returns the lowest-index cluster whose founder is within range, or -1
func (c *AreaClusterer) firstFit(clusters [][]domain.CrimeReport, index *founderIndex, report domain.CrimeReport) int {
	candidates, ok := index.candidates(report.Latitude, report.Longitude)
	if !ok {
		candidates = make([]int, len(clusters))
		for i := range clusters {
			candidates[i] = i
		}
	}

	for _, i := range candidates {
		founder := clusters[i][0]
		d := utils.Haversine(founder.Latitude, founder.Longitude, report.Latitude, report.Longitude)
		if d <= c.radiusKm {
			return i
		}
	}
	return -1
}

// ScoreArea maps a crime count to its tier and 0-100 score
func ScoreArea(crimeCount int) (domain.Tier, int) {
	n := crimeCount
	switch {
	case n >= 15:
		return domain.TierPoor, max(0, 40-(n-15)*2)
	case n >= 10:
		return domain.TierFair, max(0, 60-(n-10)*4)
	case n >= 5:
		return domain.TierGood, max(0, 80-(n-5)*4)
	default:
		return domain.TierExcellent, 100 - n*5
	}
}

// ValidReports drops reports whose coordinates are NaN, infinite or out of range
func ValidReports(reports []domain.CrimeReport) []domain.CrimeReport {
	valid := make([]domain.CrimeReport, 0, len(reports))
	for _, r := range reports {
		if utils.ValidCoordinate(r.Latitude, r.Longitude) {
			valid = append(valid, r)
		}
	}
	return valid
}

func buildArea(members []domain.CrimeReport) domain.Area {
	var sumLat, sumLon float64
	for _, m := range members {
		sumLat += m.Latitude
		sumLon += m.Longitude
	}
	n := float64(len(members))

	tier, score := ScoreArea(len(members))
	founder := members[0]

	recent := members[max(0, len(members)-recentCrimeLimit):]
	recentCrimes := make([]domain.RecentCrime, 0, len(recent))
	for _, r := range recent {
		recentCrimes = append(recentCrimes, domain.RecentCrime{
			ID:        r.ID,
			CrimeType: r.CrimeType,
			CreatedAt: r.CreatedAt,
		})
	}

	return domain.Area{
		AreaID:       areaID(founder.Latitude, founder.Longitude),
		Latitude:     sumLat / n,
		Longitude:    sumLon / n,
		CrimeCount:   len(members),
		Tier:         tier,
		Score:        score,
		RecentCrimes: recentCrimes,
	}
}

func areaID(lat, lon float64) string {
	return fmt.Sprintf("%.3f_%.3f", lat, lon)
}

// founder is an R-tree entry for the first report of a cluster
type founder struct {
	rect    rtreego.Rect
	cluster int
}

func (f founder) Bounds() rtreego.Rect {
	return f.rect
}

// founderIndex narrows the founders worth a Haversine check
type founderIndex struct {
	tree   *rtreego.Rtree
	latTol float64
}

func newFounderIndex(radiusKm float64) *founderIndex {
	return &founderIndex{
		tree:   rtreego.NewTree(2, 25, 50),
		latTol: radiusKm / kmPerDegree * 1.01,
	}
}

func (ix *founderIndex) insert(r domain.CrimeReport, cluster int) {
	ix.tree.Insert(founder{
		rect:    rtreego.Point{r.Latitude, r.Longitude}.ToRect(founderPointTol),
		cluster: cluster,
	})
}

// candidates returns cluster indexes, ascending, whose founders may lie within
// the radius. ok is false near the poles or the antimeridian, where the search
// window is not a single box and the caller must scan every cluster.
func (ix *founderIndex) candidates(lat, lon float64) ([]int, bool) {
	cosLat := math.Cos((math.Abs(lat) + ix.latTol) * math.Pi / 180)
	if cosLat < 0.05 {
		return nil, false
	}
	lonTol := ix.latTol / cosLat * 1.5
	if lon-lonTol < -180 || lon+lonTol > 180 {
		return nil, false
	}

	window, err := rtreego.NewRect(
		rtreego.Point{lat - ix.latTol, lon - lonTol},
		[]float64{2 * ix.latTol, 2 * lonTol},
	)
	if err != nil {
		return nil, false
	}

	hits := ix.tree.SearchIntersect(window)
	ids := make([]int, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(founder).cluster)
	}
	sort.Ints(ids)
	return ids, true
}
