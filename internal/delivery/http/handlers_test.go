package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/safecity/backend/internal/domain"
	"github.com/safecity/backend/internal/repository/postgres"
	"github.com/safecity/backend/internal/service"
)

// failingRepository simulates a storage outage
type failingRepository struct{}

func (failingRepository) AllReports(ctx context.Context) ([]domain.CrimeReport, error) {
	return nil, errors.New("connection refused")
}

func (failingRepository) RecentReports(ctx context.Context, limit int) ([]domain.CrimeReport, error) {
	return nil, errors.New("connection refused")
}

func (failingRepository) Health(ctx context.Context) error {
	return errors.New("connection refused")
}

func newTestApp(t *testing.T, repo domain.CrimeRepository, limiter *RateLimiter) *fiber.App {
	t.Helper()

	logger := zap.NewNop()
	snapshot := service.NewReportSnapshot(repo, 0, logger)
	clusterer := service.NewAreaClusterer()
	safetySvc := service.NewSafetyService(snapshot, clusterer, service.NewRouteAdvisor(domain.ScoringFixed), 0, logger)
	insightSvc := service.NewInsightService(snapshot, clusterer, "", "", logger)

	app := NewApp(AppConfig{Name: "test"}, logger)
	SetupRoutes(app, safetySvc, insightSvc, limiter, logger)
	return app
}

func identicalReports(n int) []domain.CrimeReport {
	reports := make([]domain.CrimeReport, n)
	for i := range reports {
		reports[i] = domain.CrimeReport{ID: string(rune('a' + i)), CrimeType: "Theft", Latitude: 22.77, Longitude: 88.3786}
	}
	return reports
}

// do sends a request to the app and returns the status code and body
func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func TestGetSafetyScores(t *testing.T) {
	app := newTestApp(t, postgres.NewMockRepositoryWith(identicalReports(16)), nil)

	status, body := do(t, app, http.MethodGet, "/api/v1/safety-scores", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var areas []domain.Area
	if err := json.Unmarshal(body, &areas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(areas) != 1 || areas[0].CrimeCount != 16 || areas[0].Tier != domain.TierPoor || areas[0].Score != 38 {
		t.Errorf("unexpected areas %+v", areas)
	}
	if !strings.Contains(string(body), `"areaId":"22.770_88.379"`) {
		t.Errorf("expected camelCase areaId in body: %s", body)
	}
}

func TestGetSafetyScores_RepositoryDownReturnsEmptyArray(t *testing.T) {
	app := newTestApp(t, failingRepository{}, nil)

	status, body := do(t, app, http.MethodGet, "/api/v1/safety-scores", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestSuggestSaferRoutes(t *testing.T) {
	app := newTestApp(t, postgres.NewMockRepositoryWith(nil), nil)

	body := `{
		"startLocation": "Esplanade",
		"endLocation": "Dum Dum",
		"startCoords": {"latitude": 22.5726, "longitude": 88.3639},
		"endCoords": {"latitude": 22.6420, "longitude": 88.4312}
	}`
	status, data := do(t, app, http.MethodPost, "/api/v1/safer-routes", body)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}

	var resp domain.RouteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Routes) != 3 || resp.Routes[0].ID != domain.RouteSafest || resp.Routes[2].ID != domain.RouteFastest {
		t.Errorf("unexpected routes %+v", resp.Routes)
	}
	if resp.UsedFallback {
		t.Error("did not expect fallback coordinates")
	}
	if resp.Analysis != "Analyzed 0 crime reports to suggest safer routes" {
		t.Errorf("analysis = %q", resp.Analysis)
	}
}

func TestSuggestSaferRoutes_MissingLabels(t *testing.T) {
	app := newTestApp(t, postgres.NewMockRepositoryWith(nil), nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"both missing", `{}`, http.StatusBadRequest},
		{"end missing", `{"startLocation": "Home"}`, http.StatusBadRequest},
		{"malformed", `{"startLocation":`, http.StatusBadRequest},
		{"labels only", `{"startLocation": "Home", "endLocation": "Work"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := do(t, app, http.MethodPost, "/api/v1/safer-routes", tt.body)
			if status != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, status, data)
			}
		})
	}
}

func TestSuggestSaferRoutes_RepositoryDown(t *testing.T) {
	app := newTestApp(t, failingRepository{}, nil)

	status, data := do(t, app, http.MethodPost, "/api/v1/safer-routes", `{"startLocation": "Home", "endLocation": "Work"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}

	var resp domain.RouteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Routes) != 3 || !resp.UsedFallback {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestGetInsights(t *testing.T) {
	app := newTestApp(t, postgres.NewMockRepositoryWith(identicalReports(3)), nil)

	status, data := do(t, app, http.MethodPost, "/api/v1/insights", `{"latitude": 22.77, "longitude": 88.3786}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}

	var resp struct {
		Success bool                   `json:"success"`
		Data    domain.InsightResponse `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || !resp.Data.IsMock || resp.Data.OverallTier != domain.TierExcellent {
		t.Errorf("unexpected insight %+v", resp)
	}

	status, data = do(t, app, http.MethodPost, "/api/v1/insights", `{"latitude": 22.77}`)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 without longitude, got %d: %s", status, data)
	}
	if !strings.Contains(string(data), `"error":true`) {
		t.Errorf("expected error body, got %s", data)
	}
}

func TestHealthCheck(t *testing.T) {
	status, data := do(t, newTestApp(t, postgres.NewMockRepositoryWith(nil), nil), http.MethodGet, "/health", "")
	if status != http.StatusOK || !strings.Contains(string(data), `"status":"ok"`) {
		t.Errorf("unexpected health %d %s", status, data)
	}

	status, data = do(t, newTestApp(t, failingRepository{}, nil), http.MethodGet, "/health", "")
	if status != http.StatusOK || !strings.Contains(string(data), `"status":"degraded"`) {
		t.Errorf("unexpected health %d %s", status, data)
	}
}

func TestRateLimiter(t *testing.T) {
	app := newTestApp(t, postgres.NewMockRepositoryWith(nil), NewRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		if status, _ := do(t, app, http.MethodGet, "/api/v1/heatmap", ""); status != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, status)
		}
	}
	if status, _ := do(t, app, http.MethodGet, "/api/v1/heatmap", ""); status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", status)
	}
	// health is outside the limited group
	if status, _ := do(t, app, http.MethodGet, "/health", ""); status != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", status)
	}
}
