package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/solar-day-service/internal/observability"
	"github.com/i474232898/solar-day-service/internal/solarday"
	"github.com/i474232898/solar-day-service/internal/store"
)

// stubClient returns fixed solar times and counts invocations.
type stubClient struct {
	times map[string]time.Time
	calls int
}

func (s *stubClient) TimesFor(ctx context.Context, date time.Time) (map[string]time.Time, error) {
	s.calls++
	out := make(map[string]time.Time, len(s.times))
	for k, v := range s.times {
		out[k] = v
	}
	return out, nil
}

func newTestApp(repo solarday.Repository, client solarday.SolarClient) *fiber.App {
	app := fiber.New()
	svc := solarday.NewService(repo, client, time.UTC, observability.NewMetricsForTesting(), zerolog.Nop())
	RegisterRoutes(app, svc)
	return app
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// TestGetDateReturnsEmptyShell verifies that reading an unknown date yields an
// empty record without persisting anything.
func TestGetDateReturnsEmptyShell(t *testing.T) {
	memStore := store.NewMemoryStore()
	app := newTestApp(memStore, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/days/2030-01-01", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body solarDayResponse
	decodeBody(t, resp, &body)
	if body.Date != "2030-01-01" {
		t.Fatalf("expected date 2030-01-01, got %q", body.Date)
	}
	if body.Weather != "" || len(body.Values) != 0 {
		t.Fatalf("expected empty shell, got %+v", body)
	}

	// No record may have been created as a side effect.
	if _, err := memStore.FindOneByDate(context.Background(), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)); err != solarday.ErrNotFound {
		t.Fatalf("expected no stored record, got err=%v", err)
	}
}

func TestGetDateRejectsMalformedDate(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(), &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/days/not-a-date", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestGetDatesSortedAscending(t *testing.T) {
	memStore := store.NewMemoryStore()
	for _, d := range []time.Time{
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
	} {
		if err := memStore.Save(context.Background(), solarday.NewSolarDay(d)); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	app := newTestApp(memStore, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/days/dates", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var dates []string
	decodeBody(t, resp, &dates)
	want := []string{"2024-01-01", "2024-02-10", "2024-03-05"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("expected dates %v, got %v", want, dates)
		}
	}
}

func TestPostSolarDayCreatesViaClient(t *testing.T) {
	clientSunset := time.Date(2024, 6, 1, 19, 18, 36, 0, time.UTC)
	client := &stubClient{times: map[string]time.Time{
		"sunrise": time.Date(2024, 6, 1, 2, 50, 11, 0, time.UTC),
		"sunset":  clientSunset,
	}}
	memStore := store.NewMemoryStore()
	app := newTestApp(memStore, client)

	// The request's own sunrise must win over the client's on key collision.
	reqSunrise := time.Date(2024, 6, 1, 2, 55, 0, 0, time.UTC)
	payload := map[string]any{
		"date":    "2024-06-01",
		"weather": "clear",
		"values": []map[string]any{
			{"kind": "sunrise", "timestamp": reqSunrise.Format(time.RFC3339)},
		},
	}
	raw, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly one client call, got %d", client.calls)
	}

	var body solarDayResponse
	decodeBody(t, resp, &body)
	if body.Weather != "clear" {
		t.Fatalf("expected weather clear, got %q", body.Weather)
	}
	if !body.Values["sunrise"].Equal(reqSunrise) {
		t.Fatalf("expected request sunrise to win, got %v", body.Values["sunrise"])
	}
	if !body.Values["sunset"].Equal(clientSunset) {
		t.Fatalf("expected client sunset to be kept, got %v", body.Values["sunset"])
	}
}

func TestPostSolarDayRejectsMissingDate(t *testing.T) {
	app := newTestApp(store.NewMemoryStore(), &stubClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/", bytes.NewReader([]byte(`{"weather":"clear"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestPostValuesReturnsBulkSummary(t *testing.T) {
	client := &stubClient{}
	memStore := store.NewMemoryStore()
	app := newTestApp(memStore, client)

	payload := []map[string]any{
		{"kind": "sunrise", "timestamp": "2024-01-01T08:00:00Z"},
		{"kind": "sunset", "timestamp": "2024-01-01T20:00:00Z"},
		{"kind": "sunrise", "timestamp": "2024-01-02T08:00:00Z"},
	}
	raw, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/values", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	// The batch path never consults the solar client.
	if client.calls != 0 {
		t.Fatalf("expected no client calls, got %d", client.calls)
	}

	var result solarday.BulkResult
	decodeBody(t, resp, &result)
	if result.Inserted != 2 || result.Matched != 0 || result.Modified != 0 {
		t.Fatalf("unexpected bulk result: %+v", result)
	}
}

func TestPostDateRefreshesSolarTimes(t *testing.T) {
	sunrise := time.Date(2024, 6, 1, 2, 50, 11, 0, time.UTC)
	client := &stubClient{times: map[string]time.Time{"sunrise": sunrise}}
	memStore := store.NewMemoryStore()
	app := newTestApp(memStore, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/2024-06-01", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if client.calls != 1 {
		t.Fatalf("expected one client call, got %d", client.calls)
	}

	// The refreshed record must have been persisted.
	stored, err := memStore.FindOneByDate(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected stored record, got err=%v", err)
	}
	if !stored.Values["sunrise"].Equal(sunrise) {
		t.Fatalf("expected refreshed sunrise, got %v", stored.Values["sunrise"])
	}
}
