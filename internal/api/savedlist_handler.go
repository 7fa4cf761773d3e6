package api

import (
	"net/http"

	"membership-api/internal/auth"
	"membership-api/internal/domain"
	"membership-api/internal/export"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

type savedListListResponse struct {
	Lists []repository.SavedListRow `json:"lists"`
	Meta  listMeta                  `json:"meta"`
	Spec  domain.QuerySpec          `json:"spec"`
}

func (s *Server) listSavedLists(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	userID, _ := requestUser(r)

	res, err := s.vistas.Resolve(r.Context(), s.settings["savedlist"], userID, values)
	if err != nil {
		writeRepoError(w, err, "saved list list")
		return
	}

	page := pageNumber(values)
	rows, total, err := s.savedLists.List(r.Context(), res.Spec, repository.ListPage{Page: page, PageSize: res.Spec.PageSize})
	if err != nil {
		writeRepoError(w, err, "saved list list")
		return
	}

	writeJSON(w, http.StatusOK, savedListListResponse{
		Lists: rows,
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

func (s *Server) getSavedList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid saved list id")
		return
	}
	list, err := s.savedLists.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "saved list")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type savedListPayload struct {
	Name      string      `json:"name"`
	PersonIDs []uuid.UUID `json:"person_ids"`
}

// createSavedList saves a named list, optionally seeded with the person
// ids the caller selected.
func (s *Server) createSavedList(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload savedListPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := s.savedLists.Create(r.Context(), domain.SavedList{Name: payload.Name})
	if err != nil {
		writeRepoError(w, err, "saved list create")
		return
	}
	if len(payload.PersonIDs) > 0 {
		if err := s.savedLists.ReplaceMembers(r.Context(), list.ID, payload.PersonIDs); err != nil {
			writeRepoError(w, err, "saved list members")
			return
		}
	}
	s.stashReturnQuery(r, "savedlist")
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) updateSavedList(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid saved list id")
		return
	}
	var payload domain.SavedList
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.ID = id
	list, err := s.savedLists.Update(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "saved list update")
		return
	}
	s.stashReturnQuery(r, "savedlist")
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) deleteSavedList(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid saved list id")
		return
	}
	if err := s.savedLists.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "saved list delete")
		return
	}
	s.stashReturnQuery(r, "savedlist")
	w.WriteHeader(http.StatusNoContent)
}

type savedListMembersPayload struct {
	PersonIDs []uuid.UUID `json:"person_ids"`
}

func (s *Server) replaceSavedListMembers(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid saved list id")
		return
	}
	var payload savedListMembersPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.savedLists.ReplaceMembers(r.Context(), id, payload.PersonIDs); err != nil {
		writeRepoError(w, err, "saved list members")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSavedListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid saved list id")
		return
	}
	ids, err := s.savedLists.ListMembers(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "saved list members")
		return
	}
	writeJSON(w, http.StatusOK, savedListMembersPayload{PersonIDs: ids})
}

func (s *Server) resolveSavedListsForExport(w http.ResponseWriter, r *http.Request) (export.Table, bool) {
	userID, _ := requestUser(r)
	res, err := s.vistas.Resolve(r.Context(), s.settings["savedlist"], userID, formValues(r))
	if err != nil {
		writeRepoError(w, err, "saved list export")
		return export.Table{}, false
	}
	rows, _, err := s.savedLists.List(r.Context(), res.Spec, repository.ListPage{})
	if err != nil {
		writeRepoError(w, err, "saved list export")
		return export.Table{}, false
	}
	return export.SavedListTable(rows, res.Spec.ShowColumns), true
}

func (s *Server) exportSavedListsCSV(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveSavedListsForExport(w, r)
	if !ok {
		return
	}
	writeCSVResponse(w, "saved-lists.csv", table)
}

func (s *Server) exportSavedListsXLSX(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveSavedListsForExport(w, r)
	if !ok {
		return
	}
	writeXLSXResponse(w, "saved-lists.xlsx", table)
}
