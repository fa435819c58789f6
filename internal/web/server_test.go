package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/formab/internal/abtest"
	"github.com/emiliopalmerini/formab/internal/adapters/memory"
	"github.com/emiliopalmerini/formab/internal/domain"
)

const adminToken = "admin-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repos := memory.NewRepositories()
	svc := abtest.NewService(repos.Tests, repos.Variants, repos.Assignments, repos.Events)
	return NewServer(Config{AdminTokens: []string{adminToken}}, svc, nil)
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func phoneTestBody(weights ...int) map[string]any {
	variants := []map[string]any{}
	for i, w := range weights {
		v := map[string]any{"name": "VariantA", "trafficWeight": w}
		if i == 0 {
			v["name"] = "Control"
			v["isControl"] = true
		} else {
			v["label"] = "Best number to reach you"
		}
		variants = append(variants, v)
	}
	return map[string]any{
		"name":      "Phone Label Test",
		"formName":  "contact_form",
		"fieldName": "phone",
		"status":    "active",
		"variants":  variants,
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestEndToEnd_AssignTrackStats(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/ab-tests", adminToken, phoneTestBody(50, 50))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[successResponse](t, rec)
	require.True(t, created.Success)
	require.NotEmpty(t, created.TestID)

	path := "/api/ab-tests/assignment?formName=contact_form&fieldName=phone&sessionId=s1"
	first := decode[assignmentResponse](t, do(t, s, http.MethodGet, path, "", nil))
	second := decode[assignmentResponse](t, do(t, s, http.MethodGet, path, "", nil))
	require.True(t, first.HasTest)
	require.NotNil(t, first.Variant)
	assert.Equal(t, created.TestID, first.TestID)
	assert.Equal(t, first.Variant.ID, second.Variant.ID)

	for _, et := range []string{"impression", "form_success"} {
		rec := do(t, s, http.MethodPost, "/api/ab-tests/events", "", map[string]any{
			"testId": created.TestID, "variantId": first.Variant.ID, "sessionId": "s1", "eventType": et,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/ab-tests/"+created.TestID+"/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[statsResponse](t, rec)
	require.Len(t, stats.Variants, 2)
	for _, v := range stats.Variants {
		if v.VariantID == first.Variant.ID {
			assert.Equal(t, int64(1), v.Impressions)
			assert.Equal(t, int64(1), v.Conversions)
			assert.InDelta(t, 100, v.ConversionRate, 1e-9)
		}
	}
	require.Len(t, stats.Comparisons, 1)
	assert.Equal(t, 1.0, stats.Comparisons[0].PValue)

	rec = do(t, s, http.MethodGet, "/admin/ab-tests/"+created.TestID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Phone Label Test")
}

func TestAssignment_NoTest(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/ab-tests/assignment?formName=contact_form&fieldName=email&sessionId=s1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasTest":false,"variant":null}`, rec.Body.String())
}

func TestAssignment_MissingParams(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/ab-tests/assignment?formName=contact_form", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, codeBadRequest, body.Error.Code)
	assert.Contains(t, body.Error.Message, "fieldName is required")
	assert.Contains(t, body.Error.Message, "sessionId is required")
}

func TestCreateTest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"weights sum to 120", phoneTestBody(60, 60), "must sum to 100"},
		{
			"no control",
			map[string]any{"name": "x", "formName": "f", "fieldName": "g", "variants": []map[string]any{
				{"name": "A", "trafficWeight": 50}, {"name": "B", "trafficWeight": 50},
			}},
			"exactly one control variant",
		},
		{"bad status", map[string]any{"name": "x", "formName": "f", "fieldName": "g", "status": "archived",
			"variants": []map[string]any{{"name": "C", "isControl": true, "trafficWeight": 100}}}, "status must be one of"},
		{"allocation over 100", map[string]any{"name": "x", "formName": "f", "fieldName": "g", "trafficAllocation": 101,
			"variants": []map[string]any{{"name": "C", "isControl": true, "trafficWeight": 100}}}, "trafficAllocation must be at most 100"},
		{"missing variant name", map[string]any{"name": "x", "formName": "f", "fieldName": "g",
			"variants": []map[string]any{{"isControl": true, "trafficWeight": 100}}}, "variants[0].name is required"},
		{"unknown field", map[string]any{"name": "x", "bogus": true}, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, "/api/ab-tests", adminToken, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decode[errorBody](t, rec)
			assert.Equal(t, codeBadRequest, body.Error.Code)
			assert.Contains(t, body.Error.Message, tt.wantMsg)
		})
	}
}

func TestCreateTest_WeightsSixtyForty(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/ab-tests", adminToken, phoneTestBody(60, 40))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateTest_ActiveConflict(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/ab-tests", adminToken, phoneTestBody(50, 50)).Code)

	rec := do(t, s, http.MethodPost, "/api/ab-tests", adminToken, phoneTestBody(50, 50))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, codeConflict, decode[errorBody](t, rec).Error.Code)
}

func TestStats_NotFound(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/ab-tests/never-created/stats", adminToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"Test not found"}}`, rec.Body.String())
}

func TestUpdateStatus(t *testing.T) {
	s := newTestServer(t)
	created := decode[successResponse](t, do(t, s, http.MethodPost, "/api/ab-tests", adminToken, phoneTestBody(50, 50)))

	rec := do(t, s, http.MethodPost, "/api/ab-tests/"+created.TestID+"/status", adminToken, map[string]string{"status": "paused"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	details := decode[testDetailsResponse](t, do(t, s, http.MethodGet, "/api/ab-tests/"+created.TestID, adminToken, nil))
	assert.Equal(t, "paused", details.Test.Status)
	assert.Len(t, details.Variants, 2)

	rec = do(t, s, http.MethodPost, "/api/ab-tests/missing/status", adminToken, map[string]string{"status": "paused"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/ab-tests/"+created.TestID+"/status", adminToken, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTests(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/ab-tests", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	do(t, s, http.MethodPost, "/api/ab-tests", adminToken, phoneTestBody(50, 50))
	list := decode[[]testResponse](t, do(t, s, http.MethodGet, "/api/ab-tests", adminToken, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "contact_form", list[0].FormName)
}

func TestAdminAccess(t *testing.T) {
	routes := []struct {
		method, path, action string
	}{
		{http.MethodGet, "/api/ab-tests", "list tests"},
		{http.MethodPost, "/api/ab-tests", "create tests"},
		{http.MethodGet, "/api/ab-tests/t1", "view test details"},
		{http.MethodPost, "/api/ab-tests/t1/status", "update test status"},
		{http.MethodGet, "/api/ab-tests/t1/stats", "view test statistics"},
		{http.MethodGet, "/admin/ab-tests/t1", "view test statistics"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			s := NewServer(Config{AdminTokens: []string{adminToken}}, &stubService{t: t}, nil)

			rec := do(t, s, rt.method, rt.path, "", nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"Admin access required"}}`, rec.Body.String())

			rec = do(t, s, rt.method, rt.path, "visitor-token", nil)
			require.Equal(t, http.StatusForbidden, rec.Code)
			body := decode[errorBody](t, rec)
			assert.Equal(t, codeForbidden, body.Error.Code)
			assert.Equal(t, "Only admins can "+rt.action, body.Error.Message)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		got, ok := bearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestTrackEvent_StoreFailureStillSucceeds(t *testing.T) {
	stub := &stubService{t: t, trackErr: errors.New("database is locked")}
	s := NewServer(Config{}, stub, nil)

	rec := do(t, s, http.MethodPost, "/api/ab-tests/events", "", map[string]any{
		"testId": "t1", "variantId": "v1", "sessionId": "s1", "eventType": "focus",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, 1, stub.trackCalls)
}

func TestTrackEvent_InvalidType(t *testing.T) {
	stub := &stubService{t: t}
	s := NewServer(Config{}, stub, nil)

	rec := do(t, s, http.MethodPost, "/api/ab-tests/events", "", map[string]any{
		"testId": "t1", "variantId": "v1", "sessionId": "s1", "eventType": "click",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(decode[errorBody](t, rec).Error.Message, "eventType must be one of"))
	assert.Zero(t, stub.trackCalls)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	stub := &stubService{t: t, statsErr: errors.New("failed to count events: disk I/O error")}
	s := NewServer(Config{AdminTokens: []string{adminToken}}, stub, nil)

	rec := do(t, s, http.MethodGet, "/api/ab-tests/t1/stats", adminToken, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_SERVER_ERROR","message":"Internal server error"}}`, rec.Body.String())
}

// stubService fails the test on any call the auth layer should have blocked.
type stubService struct {
	t          *testing.T
	trackErr   error
	statsErr   error
	trackCalls int
}

func (s *stubService) GetVariantAssignment(context.Context, string, string, string) abtest.VariantAssignment {
	return abtest.VariantAssignment{}
}

func (s *stubService) TrackTestEvent(context.Context, abtest.TrackEventInput) error {
	s.trackCalls++
	return s.trackErr
}

func (s *stubService) CreateTest(context.Context, domain.NewTest) (*domain.Test, error) {
	s.t.Error("CreateTest reached the service")
	return nil, errors.New("unexpected")
}

func (s *stubService) UpdateTestStatus(context.Context, string, domain.TestStatus) error {
	s.t.Error("UpdateTestStatus reached the service")
	return errors.New("unexpected")
}

func (s *stubService) GetTestStatistics(context.Context, string) (*domain.TestStatistics, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	s.t.Error("GetTestStatistics reached the service")
	return nil, errors.New("unexpected")
}

func (s *stubService) ListTests(context.Context) []*domain.Test {
	s.t.Error("ListTests reached the service")
	return nil
}

func (s *stubService) GetTestDetails(context.Context, string) (*abtest.TestDetails, error) {
	s.t.Error("GetTestDetails reached the service")
	return nil, errors.New("unexpected")
}
