// Package handlers exposes the HTTP surface and maps service errors onto
// status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nishajha1234/mgnrega-backend/datagov"
	"github.com/nishajha1234/mgnrega-backend/service"
)

// Handler holds the service the routes delegate to. It is constructed once
// in main and registered on the router; no package-level state.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches all API routes to the given (sub)router.
func (h *Handler) Register(api *mux.Router) {
	api.HandleFunc("/districts", h.GetDistricts).Methods("GET")
	api.HandleFunc("/data/{district_code}", h.GetDistrictData).Methods("GET")
	api.HandleFunc("/state-comparison", h.GetStateComparison).Methods("GET")
	api.HandleFunc("/state/{state_name}", h.GetStateSeries).Methods("GET")
	api.HandleFunc("/availability", h.GetAvailability).Methods("GET")
	api.HandleFunc("/metadata", h.GetMetadata).Methods("GET")
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

// GetDistricts returns the district directory sorted by name.
func (h *Handler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.svc.Districts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, districts)
}

// GetDistrictData runs the cache-aside pipeline and returns KPIs plus a
// time series for one district.
func (h *Handler) GetDistrictData(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["district_code"]
	data, err := h.svc.DistrictData(r.Context(), code)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GetStateComparison aggregates households worked per financial year across
// all locally cached records.
func (h *Handler) GetStateComparison(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.StateComparison(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// GetStateSeries returns per-month state-level series for the financial
// years in the ?years=a,b query parameter.
func (h *Handler) GetStateSeries(w http.ResponseWriter, r *http.Request) {
	stateName := mux.Vars(r)["state_name"]

	var years []string
	for _, y := range strings.Split(r.URL.Query().Get("years"), ",") {
		if y = strings.TrimSpace(y); y != "" {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		writeError(w, http.StatusBadRequest, "Please specify years in query")
		return
	}

	data, err := h.svc.StateSeries(r.Context(), stateName, years)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state_name": strings.ToUpper(stateName),
		"data":       data,
	})
}

// GetAvailability lists the states and years the upstream resource covers.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	av, err := h.svc.Availability(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

// GetMetadata returns all stored metadata rows.
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Metadata(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is an internal fault and deliberately not echoed to the
// client.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, datagov.ErrNoData):
		writeError(w, http.StatusNotFound, "No data found")
	case errors.Is(err, datagov.ErrRemoteUnavailable):
		log.Printf("%s %s: upstream failure: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadGateway, "Upstream data source unavailable")
	default:
		log.Printf("%s %s: internal error: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
