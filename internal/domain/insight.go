package domain

// InsightRequest asks for a safety insight around a point
type InsightRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RadiusKm  float64  `json:"radiusKm,omitempty"`
	Language  string   `json:"language,omitempty"`
}

// CrimeTypeCount is the number of reports of one category near a point
type CrimeTypeCount struct {
	CrimeType string `json:"crimeType"`
	Count     int    `json:"count"`
}

// InsightResponse is an AI or template generated safety summary
type InsightResponse struct {
	Insight      string           `json:"insight"`
	NearbyAreas  []Area           `json:"nearbyAreas"`
	TopCrimes    []CrimeTypeCount `json:"topCrimes"`
	OverallTier  Tier             `json:"overallTier"`
	OverallScore int              `json:"overallScore"`
	IsMock       bool             `json:"isMock"`
}
