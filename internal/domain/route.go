package domain

import "errors"

// ErrLocationUnresolved signals that a route endpoint had no usable coordinates
var ErrLocationUnresolved = errors.New("location unresolved")

// Coordinates is a request-side lat/lon pair; both fields are optional on the wire
type Coordinates struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Resolved returns the point when both fields are present and valid
func (c *Coordinates) Resolved() (LatLon, bool) {
	if c == nil || c.Latitude == nil || c.Longitude == nil {
		return LatLon{}, false
	}
	return LatLon{Lat: *c.Latitude, Lon: *c.Longitude}, true
}

// LatLon is a resolved coordinate in decimal degrees
type LatLon struct {
	Lat float64
	Lon float64
}

// RouteRequest is the body of the safer-routes endpoint.
// StartLocation and EndLocation are display labels only.
type RouteRequest struct {
	StartLocation string       `json:"startLocation"`
	EndLocation   string       `json:"endLocation"`
	UserLocation  *Coordinates `json:"userLocation,omitempty"`
	StartCoords   *Coordinates `json:"startCoords,omitempty"`
	EndCoords     *Coordinates `json:"endCoords,omitempty"`
}

// RouteVariant identifies one of the three suggested routes
type RouteVariant string

const (
	RouteSafest   RouteVariant = "safest"
	RouteBalanced RouteVariant = "balanced"
	RouteFastest  RouteVariant = "fastest"
)

// RouteScoring selects how per-route safety metadata is produced
type RouteScoring string

const (
	// ScoringFixed reports the constant per-variant safety values
	ScoringFixed RouteScoring = "fixed"
	// ScoringCorridor derives crime counts from the grid cells along each path
	ScoringCorridor RouteScoring = "corridor"
)

// SafeRoute is a synthetic route alternative with safety metadata
type SafeRoute struct {
	ID             RouteVariant `json:"id"`
	Distance       float64      `json:"distance"`
	Duration       int          `json:"duration"`
	SafetyScore    float64      `json:"safetyScore"`
	CrimeCount     int          `json:"crimeCount"`
	Coordinates    [][2]float64 `json:"coordinates"`
	Color          string       `json:"color"`
	Recommendation string       `json:"recommendation"`
}

// RouteResponse is returned by the safer-routes endpoint
type RouteResponse struct {
	Routes       []SafeRoute  `json:"routes"`
	Analysis     string       `json:"analysis"`
	ScoringMode  RouteScoring `json:"scoringMode"`
	UsedFallback bool         `json:"usedFallback"`
	Warnings     []string     `json:"warnings,omitempty"`
}
