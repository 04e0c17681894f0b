package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/voice-concierge/internal/catalog"
	"github.com/glowdesk/voice-concierge/internal/concierge"
)

type stubPlatform struct {
	services  []catalog.Service
	staff     []catalog.StaffMember
	locations []catalog.Location
	directory map[string]string
	slots     []catalog.RawSlot
	err       error
}

func (s *stubPlatform) ListServices(ctx context.Context) ([]catalog.Service, error) {
	return s.services, s.err
}

func (s *stubPlatform) ListStaff(ctx context.Context, locationID string) ([]catalog.StaffMember, error) {
	return s.staff, s.err
}

func (s *stubPlatform) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	return s.locations, s.err
}

func (s *stubPlatform) StaffDirectory(ctx context.Context, locationID string) (map[string]string, error) {
	return s.directory, s.err
}

func (s *stubPlatform) SearchAvailability(ctx context.Context, q catalog.AvailabilityQuery) ([]catalog.RawSlot, error) {
	return s.slots, s.err
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{
		services: []catalog.Service{
			{ID: "svc_1", Name: "Swedish Massage", VariationName: "60 Minute", DurationMin: 60},
			{ID: "svc_2", Name: "Deep Tissue Massage", VariationName: "60 Minute", DurationMin: 60},
			{ID: "svc_3", Name: "Hydrafacial", DurationMin: 45},
		},
		staff: []catalog.StaffMember{
			{ID: "stf_a", Name: "Sarah Kim", FirstName: "Sarah"},
		},
		locations: []catalog.Location{
			{ID: "loc_1", Name: "Downtown", City: "Portland"},
		},
		directory: map[string]string{"stf_a": "Sarah Kim"},
	}
}

func newConciergeHandler(p *stubPlatform) *ConciergeHandler {
	svc := concierge.NewService(p, nil, nil, nil, concierge.Options{Timezone: "America/Los_Angeles"})
	return NewConciergeHandler(svc, nil)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestResolve_ServiceExact(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.Resolve, "/v1/resolve", map[string]string{
		"kind": "service", "query": "hydrafacial",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Confidence string          `json:"confidence"`
		Match      catalog.Service `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "exact", resp.Confidence)
	assert.Equal(t, "svc_3", resp.Match.ID)
}

func TestResolve_AmbiguousCarriesAlternatives(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.Resolve, "/v1/resolve", map[string]string{
		"kind": "service", "query": "massage",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Confidence   string            `json:"confidence"`
		Alternatives []catalog.Service `json:"alternatives"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ambiguous", resp.Confidence)
	assert.Len(t, resp.Alternatives, 2)
}

func TestResolve_StaffKind(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.Resolve, "/v1/resolve", map[string]string{
		"kind": "staff", "query": "sarah",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Confidence string              `json:"confidence"`
		Match      catalog.StaffMember `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "exact", resp.Confidence)
	assert.Equal(t, "stf_a", resp.Match.ID)
}

func TestResolve_Validation(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.Resolve, "/v1/resolve", map[string]string{"kind": "service"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Resolve, "/v1/resolve", map[string]string{"kind": "robot", "query": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolve_PlatformDown(t *testing.T) {
	p := newStubPlatform()
	p.err = errors.New("dial tcp: connection refused")
	h := newConciergeHandler(p)

	rec := postJSON(t, h.Resolve, "/v1/resolve", map[string]string{
		"kind": "service", "query": "massage",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestParseDateTime_ExactInstant(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.ParseDateTime, "/v1/datetime/parse", map[string]string{
		"phrase":    "tomorrow at 2pm",
		"timezone":  "America/Los_Angeles",
		"reference": "2026-03-02T10:00:00-08:00",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsRange)
	require.NotNil(t, resp.StartAt)
	assert.Equal(t, "2026-03-03T14:00:00-08:00", *resp.StartAt)
	assert.Equal(t, "tomorrow at 2:00 PM", resp.HumanReadable)
}

func TestParseDateTime_FallbackWindow(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.ParseDateTime, "/v1/datetime/parse", map[string]string{
		"phrase":    "whenever works",
		"reference": "2026-03-02T10:00:00-08:00",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsRange)
	assert.Equal(t, "the next 7 days", resp.HumanReadable)
}

func TestParseDateTime_BadReference(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.ParseDateTime, "/v1/datetime/parse", map[string]string{
		"phrase": "tomorrow", "reference": "next tuesday",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailability_EndToEnd(t *testing.T) {
	p := newStubPlatform()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	p.slots = []catalog.RawSlot{
		{StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, loc), StaffID: "stf_a"},
		{StartAt: time.Date(2026, 3, 3, 14, 0, 0, 0, loc), StaffID: "stf_a"},
	}
	h := newConciergeHandler(p)

	rec := postJSON(t, h.Availability, "/v1/availability", map[string]string{
		"service":   "swedish massage",
		"when":      "tomorrow",
		"reference": "2026-03-02T10:00:00-08:00",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "exact", resp.Confidence)
	require.NotNil(t, resp.Service)
	assert.Equal(t, "svc_1", resp.Service.ID)
	assert.Equal(t, 2, resp.TotalSlots)
	assert.Equal(t, 2, resp.SlotsShown)
	require.Len(t, resp.Dates, 1)
	assert.Equal(t, "Tuesday, March 3", resp.Dates[0].Date)
	assert.Contains(t, resp.Summary, "Sarah Kim")
	assert.Equal(t, "tomorrow", resp.HumanReadable)
}

func TestAvailability_AmbiguousServiceStopsEarly(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.Availability, "/v1/availability", map[string]string{
		"service": "massage", "when": "tomorrow",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ambiguous", resp.Confidence)
	assert.Nil(t, resp.Service)
	assert.Len(t, resp.Alternatives, 2)
	assert.Empty(t, resp.Dates)
	assert.Empty(t, resp.Summary)
}

func TestAvailability_RequiresService(t *testing.T) {
	h := newConciergeHandler(newStubPlatform())

	rec := postJSON(t, h.Availability, "/v1/availability", map[string]string{"when": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCatalog_Listings(t *testing.T) {
	p := newStubPlatform()
	h := NewAdminCatalogHandler(p, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/catalog/services", nil)
	rec := httptest.NewRecorder()
	h.ListServices(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Services []catalog.Service `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Services, 3)
}

func TestAdminCatalog_PlatformDown(t *testing.T) {
	p := newStubPlatform()
	p.err = errors.New("boom")
	h := NewAdminCatalogHandler(p, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/catalog/staff", nil)
	rec := httptest.NewRecorder()
	h.ListStaff(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
