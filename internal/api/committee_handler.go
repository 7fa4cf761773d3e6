package api

import (
	"net/http"

	"membership-api/internal/auth"
	"membership-api/internal/domain"
	"membership-api/internal/export"
	"membership-api/internal/repository"
)

type subCommitteeListResponse struct {
	SubCommittees []domain.SubCommittee `json:"subcommittees"`
	Meta          listMeta              `json:"meta"`
	Spec          domain.QuerySpec      `json:"spec"`
}

func (s *Server) listSubCommittees(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	userID, _ := requestUser(r)

	res, err := s.vistas.Resolve(r.Context(), s.settings["subcommittee"], userID, values)
	if err != nil {
		writeRepoError(w, err, "subcommittee list")
		return
	}

	page := pageNumber(values)
	rows, total, err := s.committees.List(r.Context(), res.Spec, repository.ListPage{Page: page, PageSize: res.Spec.PageSize})
	if err != nil {
		writeRepoError(w, err, "subcommittee list")
		return
	}

	writeJSON(w, http.StatusOK, subCommitteeListResponse{
		SubCommittees: rows,
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

func (s *Server) getSubCommittee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subcommittee id")
		return
	}
	sc, err := s.committees.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "subcommittee")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) createSubCommittee(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload domain.SubCommittee
	if !decodeBody(w, r, &payload) {
		return
	}
	sc, err := s.committees.Create(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "subcommittee create")
		return
	}
	s.stashReturnQuery(r, "subcommittee")
	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) updateSubCommittee(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subcommittee id")
		return
	}
	var payload domain.SubCommittee
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.ID = id
	sc, err := s.committees.Update(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "subcommittee update")
		return
	}
	s.stashReturnQuery(r, "subcommittee")
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) deleteSubCommittee(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subcommittee id")
		return
	}
	if err := s.committees.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "subcommittee delete")
		return
	}
	s.stashReturnQuery(r, "subcommittee")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.committees.ListPositions(r.Context())
	if err != nil {
		writeRepoError(w, err, "positions")
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) resolveSubCommitteesForExport(w http.ResponseWriter, r *http.Request) (export.Table, bool) {
	userID, _ := requestUser(r)
	res, err := s.vistas.Resolve(r.Context(), s.settings["subcommittee"], userID, formValues(r))
	if err != nil {
		writeRepoError(w, err, "subcommittee export")
		return export.Table{}, false
	}
	rows, _, err := s.committees.List(r.Context(), res.Spec, repository.ListPage{})
	if err != nil {
		writeRepoError(w, err, "subcommittee export")
		return export.Table{}, false
	}
	return export.SubCommitteeTable(rows, res.Spec.ShowColumns), true
}

func (s *Server) exportSubCommitteesCSV(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveSubCommitteesForExport(w, r)
	if !ok {
		return
	}
	writeCSVResponse(w, "subcommittees.csv", table)
}

func (s *Server) exportSubCommitteesXLSX(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveSubCommitteesForExport(w, r)
	if !ok {
		return
	}
	writeXLSXResponse(w, "subcommittees.xlsx", table)
}
