package api

import (
	"log"
	"net/http"

	"membership-api/internal/auth"
	"membership-api/internal/domain"
	"membership-api/internal/export"
	"membership-api/internal/repository"
)

type eventListResponse struct {
	Events []repository.EventRow `json:"events"`
	Meta   listMeta              `json:"meta"`
	Spec   domain.QuerySpec      `json:"spec"`
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	userID, _ := requestUser(r)

	res, err := s.vistas.Resolve(r.Context(), s.settings["event"], userID, values)
	if err != nil {
		writeRepoError(w, err, "event list")
		return
	}

	page := pageNumber(values)
	rows, total, err := s.events.List(r.Context(), res.Spec, repository.ListPage{Page: page, PageSize: res.Spec.PageSize})
	if err != nil {
		writeRepoError(w, err, "event list")
		return
	}

	writeJSON(w, http.StatusOK, eventListResponse{
		Events: rows,
		Meta: listMeta{
			Total:     total,
			Page:      page,
			PageSize:  res.Spec.PageSize,
			VistaMode: string(res.Mode),
			VistaName: res.VistaName,
		},
		Spec: res.Spec,
	})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := s.events.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload domain.Event
	if !decodeBody(w, r, &payload) {
		return
	}
	event, err := s.events.Create(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "event create")
		return
	}

	_, userID := requestUser(r)
	if _, err := s.history.RecordCreation(r.Context(), "event", event.ID, userID, event.FieldValues()); err != nil {
		log.Printf("[api] event creation history: %v", err)
	}

	s.stashReturnQuery(r, "event")
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	current, err := s.events.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "event")
		return
	}

	var payload domain.Event
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.ID = id

	updated, err := s.events.Update(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "event update")
		return
	}

	_, userID := requestUser(r)
	if _, err := s.history.RecordChanges(r.Context(), "event", id, userID, current.FieldValues(), updated.FieldValues()); err != nil {
		log.Printf("[api] event change history: %v", err)
	}

	s.stashReturnQuery(r, "event")
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	if err := s.events.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "event delete")
		return
	}
	s.stashReturnQuery(r, "event")
	w.WriteHeader(http.StatusNoContent)
}

type participantsPayload struct {
	Entries []domain.Participation `json:"entries"`
}

func (s *Server) replaceParticipants(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	var payload participantsPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.events.ReplaceParticipation(r.Context(), id, payload.Entries); err != nil {
		writeRepoError(w, err, "participation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	entries, err := s.events.ListParticipation(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "participation")
		return
	}
	writeJSON(w, http.StatusOK, participantsPayload{Entries: entries})
}

func (s *Server) resolveEventsForExport(w http.ResponseWriter, r *http.Request) (export.Table, bool) {
	userID, _ := requestUser(r)
	res, err := s.vistas.Resolve(r.Context(), s.settings["event"], userID, formValues(r))
	if err != nil {
		writeRepoError(w, err, "event export")
		return export.Table{}, false
	}
	rows, _, err := s.events.List(r.Context(), res.Spec, repository.ListPage{})
	if err != nil {
		writeRepoError(w, err, "event export")
		return export.Table{}, false
	}
	return export.EventTable(rows, res.Spec.ShowColumns), true
}

func (s *Server) exportEventsCSV(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveEventsForExport(w, r)
	if !ok {
		return
	}
	writeCSVResponse(w, "events.csv", table)
}

func (s *Server) exportEventsXLSX(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveEventsForExport(w, r)
	if !ok {
		return
	}
	writeXLSXResponse(w, "events.xlsx", table)
}
