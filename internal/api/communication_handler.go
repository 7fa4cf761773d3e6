package api

import (
	"net/http"

	"membership-api/internal/auth"
	"membership-api/internal/domain"
	"membership-api/internal/export"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

type communicationListResponse struct {
	Communications []repository.CommunicationEventRow `json:"communications"`
	Meta           listMeta                           `json:"meta"`
	Spec           domain.QuerySpec                   `json:"spec"`
}

func (s *Server) listCommunications(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	userID, _ := requestUser(r)

	res, err := s.vistas.Resolve(r.Context(), s.settings["communicationevent"], userID, values)
	if err != nil {
		writeRepoError(w, err, "communication list")
		return
	}

	page := pageNumber(values)
	rows, total, err := s.comms.List(r.Context(), res.Spec, repository.ListPage{Page: page, PageSize: res.Spec.PageSize})
	if err != nil {
		writeRepoError(w, err, "communication list")
		return
	}

	writeJSON(w, http.StatusOK, communicationListResponse{
		Communications: rows,
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

func (s *Server) getCommunication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid communication id")
		return
	}
	event, err := s.comms.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "communication")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) createCommunication(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload domain.CommunicationEvent
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.TargetID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}

	event, err := s.comms.Create(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "communication create")
		return
	}
	s.stashReturnQuery(r, "communicationevent")
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) updateCommunication(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid communication id")
		return
	}
	var payload domain.CommunicationEvent
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.TargetID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}
	payload.ID = id
	event, err := s.comms.Update(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "communication update")
		return
	}
	s.stashReturnQuery(r, "communicationevent")
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) deleteCommunication(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid communication id")
		return
	}
	if err := s.comms.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "communication delete")
		return
	}
	s.stashReturnQuery(r, "communicationevent")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resolveCommunicationsForExport(w http.ResponseWriter, r *http.Request) (export.Table, bool) {
	userID, _ := requestUser(r)
	res, err := s.vistas.Resolve(r.Context(), s.settings["communicationevent"], userID, formValues(r))
	if err != nil {
		writeRepoError(w, err, "communication export")
		return export.Table{}, false
	}
	rows, _, err := s.comms.List(r.Context(), res.Spec, repository.ListPage{})
	if err != nil {
		writeRepoError(w, err, "communication export")
		return export.Table{}, false
	}
	return export.CommunicationTable(rows, res.Spec.ShowColumns), true
}

func (s *Server) exportCommunicationsCSV(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveCommunicationsForExport(w, r)
	if !ok {
		return
	}
	writeCSVResponse(w, "communications.csv", table)
}

func (s *Server) exportCommunicationsXLSX(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveCommunicationsForExport(w, r)
	if !ok {
		return
	}
	writeXLSXResponse(w, "communications.xlsx", table)
}

type bulkCommunicationListResponse struct {
	Bulks []repository.BulkCommunicationRow `json:"bulk_communications"`
	Meta  listMeta                          `json:"meta"`
	Spec  domain.QuerySpec                  `json:"spec"`
}

func (s *Server) listBulkCommunications(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	userID, _ := requestUser(r)

	res, err := s.vistas.Resolve(r.Context(), s.settings["bulkcommunication"], userID, values)
	if err != nil {
		writeRepoError(w, err, "bulk communication list")
		return
	}

	page := pageNumber(values)
	rows, total, err := s.comms.ListBulks(r.Context(), res.Spec, repository.ListPage{Page: page, PageSize: res.Spec.PageSize})
	if err != nil {
		writeRepoError(w, err, "bulk communication list")
		return
	}

	writeJSON(w, http.StatusOK, bulkCommunicationListResponse{
		Bulks: rows,
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

func (s *Server) getBulkCommunication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bulk communication id")
		return
	}
	bulk, err := s.comms.GetBulkByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "bulk communication")
		return
	}
	writeJSON(w, http.StatusOK, bulk)
}

func (s *Server) createBulkCommunication(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload domain.BulkCommunication
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	bulk, err := s.comms.CreateBulk(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "bulk communication create")
		return
	}
	s.stashReturnQuery(r, "bulkcommunication")
	writeJSON(w, http.StatusCreated, bulk)
}

func (s *Server) updateBulkCommunication(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bulk communication id")
		return
	}
	var payload domain.BulkCommunication
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	payload.ID = id
	bulk, err := s.comms.UpdateBulk(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "bulk communication update")
		return
	}
	s.stashReturnQuery(r, "bulkcommunication")
	writeJSON(w, http.StatusOK, bulk)
}

func (s *Server) deleteBulkCommunication(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bulk communication id")
		return
	}
	if err := s.comms.DeleteBulk(r.Context(), id); err != nil {
		writeRepoError(w, err, "bulk communication delete")
		return
	}
	s.stashReturnQuery(r, "bulkcommunication")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resolveBulkCommunicationsForExport(w http.ResponseWriter, r *http.Request) (export.Table, bool) {
	userID, _ := requestUser(r)
	res, err := s.vistas.Resolve(r.Context(), s.settings["bulkcommunication"], userID, formValues(r))
	if err != nil {
		writeRepoError(w, err, "bulk communication export")
		return export.Table{}, false
	}
	rows, _, err := s.comms.ListBulks(r.Context(), res.Spec, repository.ListPage{})
	if err != nil {
		writeRepoError(w, err, "bulk communication export")
		return export.Table{}, false
	}
	return export.BulkCommunicationTable(rows, res.Spec.ShowColumns), true
}

func (s *Server) exportBulkCommunicationsCSV(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveBulkCommunicationsForExport(w, r)
	if !ok {
		return
	}
	writeCSVResponse(w, "bulk-communications.csv", table)
}

func (s *Server) exportBulkCommunicationsXLSX(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveBulkCommunicationsForExport(w, r)
	if !ok {
		return
	}
	writeXLSXResponse(w, "bulk-communications.xlsx", table)
}

func (s *Server) listCommunicationResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.comms.ListResults(r.Context())
	if err != nil {
		writeRepoError(w, err, "communication results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}
