package domain

import "time"

// CrimeReport is a citizen-submitted report as read from storage
type CrimeReport struct {
	ID        string    `json:"id"`
	CrimeType string    `json:"crimeType"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tier is the ordinal safety label of an area
type Tier string

const (
	TierExcellent Tier = "Excellent"
	TierGood      Tier = "Good"
	TierFair      Tier = "Fair"
	TierPoor      Tier = "Poor"
)

// RecentCrime is the projection of a report shown inside an Area
type RecentCrime struct {
	ID        string    `json:"id"`
	CrimeType string    `json:"crimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Area is a cluster of crime reports with its aggregate safety score.
// Areas are recomputed on every request; AreaID is derived from content.
type Area struct {
	AreaID       string        `json:"areaId"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	CrimeCount   int           `json:"crimeCount"`
	Tier         Tier          `json:"tier"`
	Score        int           `json:"score"`
	RecentCrimes []RecentCrime `json:"recentCrimes"`
}

// HeatmapPoint is one crime-grid cell rendered for the map layer
type HeatmapPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Count     int     `json:"count"`
	Intensity float64 `json:"intensity"`
}

// HeatmapResponse wraps heatmap points with metadata
type HeatmapResponse struct {
	Points      []HeatmapPoint `json:"points"`
	CellSize    float64        `json:"cellSize"`
	ReportCount int            `json:"reportCount"`
	Degraded    bool           `json:"degraded"`
}
