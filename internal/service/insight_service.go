package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/safecity/backend/internal/domain"
	"github.com/safecity/backend/pkg/utils"
)

const (
	defaultInsightRadiusKm = 2.0
	maxInsightRadiusKm     = 25.0
	topCrimeLimit          = 5
	insightTimeout         = 20 * time.Second
)

// InsightService writes short safety insights for a location.
// Without an API key, or when the model call fails, it falls back to a
// template built from the same statistics.
type InsightService struct {
	snapshot  *ReportSnapshot
	clusterer *AreaClusterer
	client    *openai.Client
	model     string
	logger    *zap.Logger
}

// NewInsightService creates an insight service; an empty apiKey selects template mode
func NewInsightService(snapshot *ReportSnapshot, clusterer *AreaClusterer, apiKey, model string, logger *zap.Logger) *InsightService {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &InsightService{
		snapshot:  snapshot,
		clusterer: clusterer,
		client:    client,
		model:     model,
		logger:    logger,
	}
}

// Generate summarises reported crime around the requested point
func (s *InsightService) Generate(ctx context.Context, req domain.InsightRequest) (domain.InsightResponse, error) {
	center, ok := (&domain.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude}).Resolved()
	if !ok || !utils.ValidCoordinate(center.Lat, center.Lon) {
		return domain.InsightResponse{}, fmt.Errorf("insight: %w", domain.ErrLocationUnresolved)
	}

	radius := req.RadiusKm
	if radius <= 0 {
		radius = defaultInsightRadiusKm
	}
	radius = utils.Clamp(radius, 0.1, maxInsightRadiusKm)

	snap := s.snapshot.All(ctx)
	nearbyReports := reportsWithin(snap.Reports, center, radius)

	nearbyAreas := make([]domain.Area, 0)
	for _, area := range s.clusterer.Areas(snap.Reports) {
		if utils.Haversine(center.Lat, center.Lon, area.Latitude, area.Longitude) <= radius {
			nearbyAreas = append(nearbyAreas, area)
		}
	}

	tier, score := ScoreArea(len(nearbyReports))
	resp := domain.InsightResponse{
		NearbyAreas:  nearbyAreas,
		TopCrimes:    countCrimeTypes(nearbyReports, parseLanguage(req.Language)),
		OverallTier:  tier,
		OverallScore: score,
	}

	if s.client == nil {
		resp.Insight = templateInsight(resp, len(nearbyReports), radius)
		resp.IsMock = true
		return resp, nil
	}

	text, err := s.complete(ctx, resp, len(nearbyReports), radius, req.Language)
	if err != nil {
		s.logger.Warn("insight model call failed, using template", zap.Error(err))
		resp.Insight = templateInsight(resp, len(nearbyReports), radius)
		resp.IsMock = true
		return resp, nil
	}

	resp.Insight = text
	return resp, nil
}

func (s *InsightService) complete(ctx context.Context, stats domain.InsightResponse, reportCount int, radius float64, lang string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, insightTimeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "Crime reports within %.1f km: %d.\n", radius, reportCount)
	fmt.Fprintf(&b, "Safety tier: %s (score %d/100).\n", stats.OverallTier, stats.OverallScore)
	for _, c := range stats.TopCrimes {
		fmt.Fprintf(&b, "- %s: %d\n", c.CrimeType, c.Count)
	}
	if lang != "" {
		fmt.Fprintf(&b, "Answer in language: %s.\n", lang)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: 200,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a public safety assistant. Given local crime statistics, give one short, practical safety tip in at most three sentences. Do not invent statistics.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: b.String(),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("insight: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("insight: empty completion")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func reportsWithin(reports []domain.CrimeReport, center domain.LatLon, radiusKm float64) []domain.CrimeReport {
	var out []domain.CrimeReport
	for _, r := range ValidReports(reports) {
		if utils.Haversine(center.Lat, center.Lon, r.Latitude, r.Longitude) <= radiusKm {
			out = append(out, r)
		}
	}
	return out
}

// countCrimeTypes groups reports by title-cased category, most frequent first
func countCrimeTypes(reports []domain.CrimeReport, tag language.Tag) []domain.CrimeTypeCount {
	caser := cases.Title(tag)
	counts := make(map[string]int)
	for _, r := range reports {
		label := strings.TrimSpace(r.CrimeType)
		if label == "" {
			label = "unknown"
		}
		counts[caser.String(strings.ToLower(label))]++
	}

	out := make([]domain.CrimeTypeCount, 0, len(counts))
	for crimeType, n := range counts {
		out = append(out, domain.CrimeTypeCount{CrimeType: crimeType, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CrimeType < out[j].CrimeType
	})

	if len(out) > topCrimeLimit {
		out = out[:topCrimeLimit]
	}
	return out
}

func parseLanguage(lang string) language.Tag {
	if lang == "" {
		return language.English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}

// templateInsight returns a fallback insight
func templateInsight(stats domain.InsightResponse, reportCount int, radius float64) string {
	if reportCount == 0 {
		return fmt.Sprintf("No crimes have been reported within %.1f km. The area is rated %s; stay aware of your surroundings as usual.",
			radius, stats.OverallTier)
	}

	summary := fmt.Sprintf("%d crime reports within %.1f km", reportCount, radius)
	if len(stats.TopCrimes) > 0 {
		summary += fmt.Sprintf(", mostly %s", strings.ToLower(stats.TopCrimes[0].CrimeType))
	}

	var tip string
	switch stats.OverallTier {
	case domain.TierPoor:
		tip = "Avoid walking alone after dark, keep valuables out of sight and share your live location with a trusted contact."
	case domain.TierFair:
		tip = "Prefer busy, well-lit streets and keep your phone and bag secured."
	case domain.TierGood:
		tip = "The area is generally safe; stay alert in crowded places."
	default:
		tip = "Very few incidents are reported here; normal precautions are enough."
	}

	return fmt.Sprintf("%s. Safety tier: %s (%d/100). %s", summary, stats.OverallTier, stats.OverallScore, tip)
}
