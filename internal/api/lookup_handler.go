package api

import (
	"net/http"

	"membership-api/internal/auth"
	"membership-api/internal/domain"

	"github.com/google/uuid"
)

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	kind := domain.LocationKind(r.URL.Query().Get("kind"))
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown location kind")
		return
	}
	locations, err := s.lookups.ListLocations(r.Context(), kind)
	if err != nil {
		writeRepoError(w, err, "locations")
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (s *Server) createLocation(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload domain.Location
	if !decodeBody(w, r, &payload) {
		return
	}
	if !payload.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown location kind")
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "location name is required")
		return
	}
	loc, err := s.lookups.CreateLocation(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "location create")
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid location id")
		return
	}
	var payload domain.Location
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "location name is required")
		return
	}
	payload.ID = id
	loc, err := s.lookups.UpdateLocation(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "location update")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) deleteLocation(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid location id")
		return
	}
	if err := s.lookups.DeleteLocation(r.Context(), id); err != nil {
		writeRepoError(w, err, "location delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMembershipStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.lookups.ListMembershipStatuses(r.Context())
	if err != nil {
		writeRepoError(w, err, "membership statuses")
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) listMembershipTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.lookups.ListMembershipTypes(r.Context())
	if err != nil {
		writeRepoError(w, err, "membership types")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) listEventTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.lookups.ListEventTypes(r.Context())
	if err != nil {
		writeRepoError(w, err, "event types")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := s.lookups.ListPaymentMethods(r.Context())
	if err != nil {
		writeRepoError(w, err, "payment methods")
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

// listVistas returns the caller's saved vistas for one list view.
func (s *Server) listVistas(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	if _, ok := s.settings[model]; !ok {
		writeError(w, http.StatusNotFound, "unknown model")
		return
	}
	userID, _ := requestUser(r)
	if userID == uuid.Nil {
		writeJSON(w, http.StatusOK, []domain.Vista{})
		return
	}
	vistas, err := s.vistaRepo.List(r.Context(), userID, model)
	if err != nil {
		writeRepoError(w, err, "vistas")
		return
	}
	writeJSON(w, http.StatusOK, vistas)
}
