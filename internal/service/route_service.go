package service

import (
	"fmt"
	"math"

	"github.com/safecity/backend/internal/domain"
	"github.com/safecity/backend/pkg/utils"
)

const (
	// minutesPerKm is the empirical travel pace used for durations
	minutesPerKm  = 2.5
	waypointCount = 5

	// corridorSaturation is the corridor crime count at which safety reaches 0
	corridorSaturation = 20
)

// Fallback endpoints used when a request carries no usable coordinates
var (
	DefaultStart = domain.LatLon{Lat: 22.5726, Lon: 88.3639}
	DefaultEnd   = domain.LatLon{Lat: 22.6026, Lon: 88.3939}
)

type routeProfile struct {
	id             domain.RouteVariant
	multiplier     float64
	safetyScore    float64
	crimeCount     int
	latAmplitude   float64
	lonAmplitude   float64
	color          string
	recommendation string
}

// routeProfiles are returned in this order
var routeProfiles = []routeProfile{
	{
		id:             domain.RouteSafest,
		multiplier:     1.15,
		safetyScore:    1.0,
		crimeCount:     0,
		latAmplitude:   0.01,
		color:          "#22c55e",
		recommendation: "Recommended: avoids areas with reported crime",
	},
	{
		id:             domain.RouteBalanced,
		multiplier:     1.05,
		safetyScore:    0.75,
		crimeCount:     1,
		color:          "#eab308",
		recommendation: "Good balance of safety and travel time",
	},
	{
		id:             domain.RouteFastest,
		multiplier:     1.00,
		safetyScore:    0.5,
		crimeCount:     3,
		lonAmplitude:   0.005,
		color:          "#ef4444",
		recommendation: "Quickest option; passes through higher-crime areas",
	},
}

// RouteAdvisor produces the safest, balanced and fastest route variants
type RouteAdvisor struct {
	scoring  domain.RouteScoring
	cellSize float64
}

// NewRouteAdvisor creates an advisor; unknown scoring modes fall back to fixed
func NewRouteAdvisor(scoring domain.RouteScoring) *RouteAdvisor {
	if scoring != domain.ScoringCorridor {
		scoring = domain.ScoringFixed
	}
	return &RouteAdvisor{scoring: scoring, cellSize: DefaultCellSize}
}

// Scoring returns the active scoring mode
func (a *RouteAdvisor) Scoring() domain.RouteScoring {
	return a.scoring
}

// SuggestRoutes returns exactly three routes ordered safest, balanced, fastest.
// In fixed mode safety metadata is constant per variant; in corridor mode it is
// derived from the crime grid cells each path crosses.
func (a *RouteAdvisor) SuggestRoutes(start, end domain.LatLon, reports []domain.CrimeReport) domain.RouteResponse {
	baseDistance := utils.Haversine(start.Lat, start.Lon, end.Lat, end.Lon)
	baseDuration := math.Round(baseDistance * minutesPerKm)

	var grid *CrimeGrid
	if a.scoring == domain.ScoringCorridor {
		grid = NewCrimeGrid(reports, a.cellSize)
	}

	routes := make([]domain.SafeRoute, 0, len(routeProfiles))
	for _, p := range routeProfiles {
		path := p.path(start, end)
		route := domain.SafeRoute{
			ID:             p.id,
			Distance:       baseDistance * p.multiplier,
			Duration:       int(math.Round(baseDuration * p.multiplier)),
			SafetyScore:    p.safetyScore,
			CrimeCount:     p.crimeCount,
			Coordinates:    path,
			Color:          p.color,
			Recommendation: p.recommendation,
		}
		if grid != nil {
			route.CrimeCount = grid.CorridorCount(path)
			route.SafetyScore = corridorSafety(route.CrimeCount)
		}
		routes = append(routes, route)
	}

	return domain.RouteResponse{
		Routes:      routes,
		Analysis:    fmt.Sprintf("Analyzed %d crime reports to suggest safer routes", len(reports)),
		ScoringMode: a.scoring,
	}
}

// path interpolates waypointCount points from start to end with a sinusoidal
// offset that vanishes at both endpoints
func (p routeProfile) path(start, end domain.LatLon) [][2]float64 {
	points := make([][2]float64, waypointCount)
	last := waypointCount - 1
	for i := range points {
		t := float64(i) / float64(last)
		lat := utils.Lerp(start.Lat, end.Lat, t)
		lon := utils.Lerp(start.Lon, end.Lon, t)
		if i > 0 && i < last {
			wave := math.Sin(t * math.Pi)
			lat += wave * p.latAmplitude
			lon += wave * p.lonAmplitude
		}
		points[i] = [2]float64{lat, lon}
	}
	return points
}

func corridorSafety(crimeCount int) float64 {
	return utils.RoundTo(utils.Clamp(1-float64(crimeCount)/corridorSaturation, 0, 1), 2)
}

// ResolveEndpoints picks route coordinates from the request.
// The start uses startCoords, then userLocation; the end uses endCoords.
// Missing or invalid points are replaced by the defaults and reported as warnings.
func ResolveEndpoints(req domain.RouteRequest) (start, end domain.LatLon, warnings []string) {
	var ok bool

	start, ok = resolvePoint(req.StartCoords)
	if !ok {
		start, ok = resolvePoint(req.UserLocation)
	}
	if !ok {
		start = DefaultStart
		warnings = append(warnings, fmt.Sprintf("start %v: using default coordinates", domain.ErrLocationUnresolved))
	}

	end, ok = resolvePoint(req.EndCoords)
	if !ok {
		end = DefaultEnd
		warnings = append(warnings, fmt.Sprintf("end %v: using default coordinates", domain.ErrLocationUnresolved))
	}

	return start, end, warnings
}

func resolvePoint(c *domain.Coordinates) (domain.LatLon, bool) {
	p, ok := c.Resolved()
	if !ok || !utils.ValidCoordinate(p.Lat, p.Lon) {
		return domain.LatLon{}, false
	}
	return p, true
}
