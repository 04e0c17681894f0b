package handlers

import (
	"net/http"

	"github.com/glowdesk/voice-concierge/internal/concierge"
	"github.com/glowdesk/voice-concierge/pkg/logging"
)

// AdminCatalogHandler exposes read-only catalog listings for operators, so a
// misresolved phrase can be checked against what the platform actually
// returns.
type AdminCatalogHandler struct {
	platform concierge.Platform
	logger   *logging.Logger
}

func NewAdminCatalogHandler(platform concierge.Platform, logger *logging.Logger) *AdminCatalogHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminCatalogHandler{platform: platform, logger: logger}
}

func (h *AdminCatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.platform.ListServices(r.Context())
	if err != nil {
		h.logger.Error("admin list services failed", "error", err)
		http.Error(w, "booking platform unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *AdminCatalogHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.platform.ListStaff(r.Context(), r.URL.Query().Get("location_id"))
	if err != nil {
		h.logger.Error("admin list staff failed", "error", err)
		http.Error(w, "booking platform unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (h *AdminCatalogHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.platform.ListLocations(r.Context())
	if err != nil {
		h.logger.Error("admin list locations failed", "error", err)
		http.Error(w, "booking platform unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}
