// Package handlers exposes the concierge over HTTP for the voice-agent
// runtime. Request and response bodies are JSON; timestamps are RFC3339 with
// numeric zone offsets.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/glowdesk/voice-concierge/internal/availability"
	"github.com/glowdesk/voice-concierge/internal/catalog"
	"github.com/glowdesk/voice-concierge/internal/concierge"
	"github.com/glowdesk/voice-concierge/internal/resolve"
	"github.com/glowdesk/voice-concierge/internal/timeparse"
	"github.com/glowdesk/voice-concierge/pkg/logging"
)

// ConciergeHandler hosts the resolution, parsing, and availability endpoints.
type ConciergeHandler struct {
	svc    *concierge.Service
	logger *logging.Logger
}

func NewConciergeHandler(svc *concierge.Service, logger *logging.Logger) *ConciergeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConciergeHandler{svc: svc, logger: logger}
}

type resolveRequest struct {
	Kind       string `json:"kind"`
	Query      string `json:"query"`
	LocationID string `json:"location_id"`
}

type resolveResponse struct {
	Confidence   string `json:"confidence"`
	Match        any    `json:"match,omitempty"`
	Alternatives any    `json:"alternatives,omitempty"`
}

// Resolve matches a spoken phrase against one entity kind. Ambiguity is a
// successful response carrying alternatives, never an error status.
func (h *ConciergeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	var (
		resp resolveResponse
		err  error
	)
	switch req.Kind {
	case "service", "":
		var m resolve.Match[catalog.Service]
		m, err = h.svc.ResolveService(r.Context(), req.Query)
		resp = matchPayload(m)
	case "staff":
		var m resolve.Match[catalog.StaffMember]
		m, err = h.svc.ResolveStaff(r.Context(), req.Query, req.LocationID)
		resp = matchPayload(m)
	case "location":
		var m resolve.Match[catalog.Location]
		m, err = h.svc.ResolveLocation(r.Context(), req.Query)
		resp = matchPayload(m)
	default:
		http.Error(w, "kind must be service, staff, or location", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("resolve failed", "kind", req.Kind, "error", err)
		http.Error(w, "booking platform unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func matchPayload[T any](m resolve.Match[T]) resolveResponse {
	resp := resolveResponse{Confidence: string(m.Confidence)}
	if m.Entity != nil {
		resp.Match = m.Entity
	}
	if len(m.Alternatives) > 0 {
		resp.Alternatives = m.Alternatives
	}
	return resp
}

type parseRequest struct {
	Phrase   string `json:"phrase"`
	Timezone string `json:"timezone"`
	// Reference pins "tomorrow" to a known instant; RFC3339, optional.
	Reference string `json:"reference"`
}

type parseResponse struct {
	StartAt       *string `json:"start_at,omitempty"`
	IsRange       bool    `json:"is_range"`
	RangeStart    string  `json:"range_start"`
	RangeEnd      string  `json:"range_end"`
	HumanReadable string  `json:"human_readable"`
}

// ParseDateTime parses a temporal phrase. It never returns a parse failure;
// unrecognized phrases come back as the default search window.
func (h *ConciergeHandler) ParseDateTime(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var ref time.Time
	if req.Reference != "" {
		parsed, err := time.Parse(time.RFC3339, req.Reference)
		if err != nil {
			http.Error(w, "reference must be RFC3339", http.StatusBadRequest)
			return
		}
		ref = parsed
	}

	parsed := h.svc.ParseWhen(req.Phrase, req.Timezone, ref)
	writeJSON(w, http.StatusOK, parsePayload(parsed))
}

func parsePayload(p timeparse.Parsed) parseResponse {
	resp := parseResponse{
		IsRange:       p.IsRange,
		RangeStart:    p.RangeStart.Format(time.RFC3339),
		RangeEnd:      p.RangeEnd.Format(time.RFC3339),
		HumanReadable: p.HumanReadable,
	}
	if p.StartAt != nil {
		s := p.StartAt.Format(time.RFC3339)
		resp.StartAt = &s
	}
	return resp
}

type availabilityRequest struct {
	Service    string `json:"service"`
	Staff      string `json:"staff"`
	LocationID string `json:"location_id"`
	When       string `json:"when"`
	Timezone   string `json:"timezone"`
	Reference  string `json:"reference"`
}

type availabilityResponse struct {
	Confidence    string                   `json:"confidence"`
	Service       *catalog.Service         `json:"service,omitempty"`
	Alternatives  []catalog.Service        `json:"alternatives,omitempty"`
	Staff         *catalog.StaffMember     `json:"staff,omitempty"`
	HumanReadable string                   `json:"human_readable,omitempty"`
	Dates         []availability.DateGroup `json:"dates"`
	Summary       string                   `json:"summary"`
	TotalSlots    int                      `json:"total_slots"`
	SlotsShown    int                      `json:"slots_shown"`
}

// Availability runs the full resolve → parse → search → summarize pipeline.
// An ambiguous or unmatched service returns 200 with the confidence and
// alternatives so the agent can ask a clarifying question.
func (h *ConciergeHandler) Availability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Service) == "" {
		http.Error(w, "service is required", http.StatusBadRequest)
		return
	}
	var ref time.Time
	if req.Reference != "" {
		parsed, err := time.Parse(time.RFC3339, req.Reference)
		if err != nil {
			http.Error(w, "reference must be RFC3339", http.StatusBadRequest)
			return
		}
		ref = parsed
	}

	out, err := h.svc.CheckAvailability(r.Context(), concierge.AvailabilityRequest{
		ServicePhrase: req.Service,
		StaffPhrase:   req.Staff,
		LocationID:    req.LocationID,
		WhenPhrase:    req.When,
		Timezone:      req.Timezone,
		Ref:           ref,
	})
	if err != nil {
		h.logger.Error("availability check failed", "error", err)
		http.Error(w, "booking platform unavailable", http.StatusBadGateway)
		return
	}

	resp := availabilityResponse{
		Confidence:   string(out.ServiceMatch.Confidence),
		Service:      out.ResolvedService,
		Alternatives: out.ServiceMatch.Alternatives,
		Staff:        out.ResolvedStaff,
	}
	if out.ResolvedService == nil {
		resp.Dates = []availability.DateGroup{}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.HumanReadable = out.Parsed.HumanReadable
	resp.Dates = out.Service.Dates
	if resp.Dates == nil {
		resp.Dates = []availability.DateGroup{}
	}
	resp.Summary = out.Service.Summary
	resp.TotalSlots = out.Service.TotalSlots
	resp.SlotsShown = out.Service.SlotsShown
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
