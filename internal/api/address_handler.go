package api

import (
	"net/http"

	"membership-api/internal/auth"
	"membership-api/internal/domain"
	"membership-api/internal/export"
	"membership-api/internal/repository"
)

type votingAddressListResponse struct {
	Addresses []repository.VotingAddressRow `json:"addresses"`
	Meta      listMeta                      `json:"meta"`
	Spec      domain.QuerySpec              `json:"spec"`
}

func (s *Server) listVotingAddresses(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	userID, _ := requestUser(r)

	res, err := s.vistas.Resolve(r.Context(), s.settings["votingaddress"], userID, values)
	if err != nil {
		writeRepoError(w, err, "voting address list")
		return
	}

	page := pageNumber(values)
	rows, total, err := s.addresses.List(r.Context(), res.Spec, repository.ListPage{Page: page, PageSize: res.Spec.PageSize})
	if err != nil {
		writeRepoError(w, err, "voting address list")
		return
	}

	writeJSON(w, http.StatusOK, votingAddressListResponse{
		Addresses: rows,
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

func (s *Server) getVotingAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address id")
		return
	}
	addr, err := s.addresses.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "voting address")
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (s *Server) createVotingAddress(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload domain.VotingAddress
	if !decodeBody(w, r, &payload) {
		return
	}
	addr, err := s.addresses.Create(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "voting address create")
		return
	}
	s.stashReturnQuery(r, "votingaddress")
	writeJSON(w, http.StatusCreated, addr)
}

func (s *Server) updateVotingAddress(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address id")
		return
	}
	var payload domain.VotingAddress
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.ID = id
	addr, err := s.addresses.Update(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "voting address update")
		return
	}
	s.stashReturnQuery(r, "votingaddress")
	writeJSON(w, http.StatusOK, addr)
}

func (s *Server) deleteVotingAddress(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address id")
		return
	}
	if err := s.addresses.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "voting address delete")
		return
	}
	s.stashReturnQuery(r, "votingaddress")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resolveVotingAddressesForExport(w http.ResponseWriter, r *http.Request) (export.Table, bool) {
	userID, _ := requestUser(r)
	res, err := s.vistas.Resolve(r.Context(), s.settings["votingaddress"], userID, formValues(r))
	if err != nil {
		writeRepoError(w, err, "voting address export")
		return export.Table{}, false
	}
	rows, _, err := s.addresses.List(r.Context(), res.Spec, repository.ListPage{})
	if err != nil {
		writeRepoError(w, err, "voting address export")
		return export.Table{}, false
	}
	return export.VotingAddressTable(rows, res.Spec.ShowColumns), true
}

func (s *Server) exportVotingAddressesCSV(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveVotingAddressesForExport(w, r)
	if !ok {
		return
	}
	writeCSVResponse(w, "voting-addresses.csv", table)
}

func (s *Server) exportVotingAddressesXLSX(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolveVotingAddressesForExport(w, r)
	if !ok {
		return
	}
	writeXLSXResponse(w, "voting-addresses.xlsx", table)
}
