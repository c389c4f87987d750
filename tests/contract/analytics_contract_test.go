package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/handler"
)

type stubSummaryService struct {
	response dto.SummaryResponse
}

func (s stubSummaryService) Summarize(context.Context, string, string) (dto.SummaryResponse, error) {
	return s.response, nil
}

type stubBreakdownService struct {
	response dto.BreakdownResponse
}

func (s stubBreakdownService) Breakdown(context.Context, string, string, string, string) (dto.BreakdownResponse, error) {
	return s.response, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	return schema
}

func fetchPayload(t *testing.T, app *fiber.App, target string) interface{} {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestSummaryContract(t *testing.T) {
	schema := compileSchema(t, "analytics_summary.schema.json")

	summary := dto.SummaryResponse{
		FilterPeriod: "weekly",
		Value:        "2024-10-08",
		Buckets: []dto.SummaryBucket{
			{ID: "2024-10-07", Name: "Monday", Allotted: 40, Claimed: 32, Unclaimed: 8},
			{ID: "2024-10-08", Name: "Tuesday", Allotted: 41, Claimed: 35, Unclaimed: 6},
		},
		CacheHit: true,
	}
	breakdown := dto.BreakdownResponse{GroupBy: "program"}

	analyticsHandler := handler.NewAnalyticsHandler(
		stubSummaryService{response: summary},
		stubBreakdownService{response: breakdown},
		zerolog.Nop(),
	)

	app := fiber.New()
	analyticsHandler.Register(app.Group("/api/v1/admin/analytics"))

	payload := fetchPayload(t, app, "/api/v1/admin/analytics/summary?period=weekly&value=2024-10-08")
	require.NoError(t, schema.Validate(payload))
}

func TestBreakdownContract(t *testing.T) {
	schema := compileSchema(t, "analytics_breakdown.schema.json")

	breakdown := dto.BreakdownResponse{
		FilterPeriod: "monthly",
		Value:        "2024-10",
		GroupBy:      "program",
		Rows: []dto.BreakdownRow{
			{Name: "ACT", Claimed: 18, Unclaimed: 4, Allotted: 22},
			{Name: "BSIT", Claimed: 51, Unclaimed: 9, Allotted: 60},
		},
	}

	analyticsHandler := handler.NewAnalyticsHandler(
		stubSummaryService{},
		stubBreakdownService{response: breakdown},
		zerolog.Nop(),
	)

	app := fiber.New()
	analyticsHandler.Register(app.Group("/api/v1/admin/analytics"))

	payload := fetchPayload(t, app, "/api/v1/admin/analytics/breakdown?period=monthly&value=2024-10&group_by=program")
	require.NoError(t, schema.Validate(payload))
}
