package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempowatch/sentinel/internal/domain"
	"github.com/tempowatch/sentinel/internal/monitor"
)

const testPair = "AlphaUSD-PathUSD"

func testLogger() *slog.Logger {
	return slog.Default()
}

type fakeMetricsStore struct {
	dashboard   domain.DashboardState
	hasDash     bool
	points      map[domain.MetricName][]domain.HistoryPoint
	listedLimit int
}

func (s *fakeMetricsStore) AppendPoint(ctx context.Context, pair string, metric domain.MetricName, p domain.HistoryPoint) error {
	return nil
}

func (s *fakeMetricsStore) ListRecent(ctx context.Context, pair string, metric domain.MetricName, limit int) ([]domain.HistoryPoint, error) {
	s.listedLimit = limit
	return s.points[metric], nil
}

func (s *fakeMetricsStore) PutDashboard(ctx context.Context, state domain.DashboardState) error {
	return nil
}

func (s *fakeMetricsStore) GetDashboard(ctx context.Context, pair string) (domain.DashboardState, error) {
	if !s.hasDash {
		return domain.DashboardState{}, domain.ErrNotFound
	}
	return s.dashboard, nil
}

func (s *fakeMetricsStore) Prune(ctx context.Context, pair string, keep int) error {
	return nil
}

type fakeAlertStore struct {
	alerts []domain.SentinelAlert
	limit  int
	offset int
}

func (s *fakeAlertStore) Insert(ctx context.Context, pair string, alerts []domain.SentinelAlert) error {
	return nil
}

func (s *fakeAlertStore) ListRecent(ctx context.Context, pair string, limit, offset int) ([]domain.SentinelAlert, error) {
	s.limit, s.offset = limit, offset
	return s.alerts, nil
}

func TestGetDashboardNotFound(t *testing.T) {
	h := NewDashboardHandler(&fakeMetricsStore{}, testPair, testLogger())

	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no dashboard available")
}

func TestGetDashboardReturnsState(t *testing.T) {
	store := &fakeMetricsStore{
		hasDash: true,
		dashboard: domain.DashboardState{
			Pair: testPair,
			PSI:  domain.PSIResult{Value: 42, Level: domain.PSIModerate},
		},
	}
	h := NewDashboardHandler(store, testPair, testLogger())

	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.DashboardState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testPair, got.Pair)
	assert.Equal(t, 42, got.PSI.Value)
}

func TestGetPSIHistoryDefaultsAndCaps(t *testing.T) {
	store := &fakeMetricsStore{points: map[domain.MetricName][]domain.HistoryPoint{
		domain.MetricPSI: {{Time: time.Now().UTC(), Value: 25}},
	}}
	h := NewHistoryHandler(store, testPair, testLogger())

	rec := httptest.NewRecorder()
	h.GetPSI(rec, httptest.NewRequest(http.MethodGet, "/api/history/psi", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultHistoryLimit, store.listedLimit)

	rec = httptest.NewRecorder()
	h.GetPSI(rec, httptest.NewRequest(http.MethodGet, "/api/history/psi?limit=9999", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxHistoryLimit, store.listedLimit)

	var body struct {
		Pair   string                `json:"pair"`
		Metric string                `json:"metric"`
		Points []domain.HistoryPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testPair, body.Pair)
	assert.Equal(t, string(domain.MetricPSI), body.Metric)
	require.Len(t, body.Points, 1)
	assert.Equal(t, 25.0, body.Points[0].Value)
}

func TestListAlertsEmptyIsArray(t *testing.T) {
	store := &fakeAlertStore{}
	h := NewAlertsHandler(store, testPair, testLogger())

	rec := httptest.NewRecorder()
	h.ListAlerts(rec, httptest.NewRequest(http.MethodGet, "/api/alerts?limit=10&offset=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, store.limit)
	assert.Equal(t, 5, store.offset)
	assert.Contains(t, rec.Body.String(), `"alerts":[]`)
}

func TestUpdateThresholdsPartialBody(t *testing.T) {
	mgr := monitor.NewThresholdManager(domain.DefaultThresholds())
	h := NewThresholdsHandler(mgr, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/thresholds",
		strings.NewReader(`{"psiCritical": 75}`))
	rec := httptest.NewRecorder()
	h.UpdateThresholds(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got := mgr.Current()
	assert.Equal(t, 75.0, got.PSICritical)
	// Unmentioned knobs retain their previous values.
	assert.Equal(t, domain.DefaultThresholds().SpreadWarning, got.SpreadWarning)
}

func TestUpdateThresholdsRejectsInvalid(t *testing.T) {
	mgr := monitor.NewThresholdManager(domain.DefaultThresholds())
	h := NewThresholdsHandler(mgr, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/thresholds",
		strings.NewReader(`{"psiWarning": 90}`))
	rec := httptest.NewRecorder()
	h.UpdateThresholds(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.DefaultThresholds(), mgr.Current())
}

func TestUpdateThresholdsRejectsBadJSON(t *testing.T) {
	mgr := monitor.NewThresholdManager(domain.DefaultThresholds())
	h := NewThresholdsHandler(mgr, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/thresholds", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.UpdateThresholds(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
