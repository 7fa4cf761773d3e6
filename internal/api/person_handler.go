package api

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"membership-api/internal/auth"
	"membership-api/internal/domain"
	"membership-api/internal/export"
	"membership-api/internal/ingestion"
	"membership-api/internal/repository"
)

type personListResponse struct {
	People []repository.PersonRow `json:"people"`
	Meta   listMeta               `json:"meta"`
	Spec   domain.QuerySpec       `json:"spec"`
}

func (s *Server) listPeople(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	userID, _ := requestUser(r)

	res, err := s.vistas.Resolve(r.Context(), s.settings["person"], userID, values)
	if err != nil {
		writeRepoError(w, err, "person list")
		return
	}

	page := pageNumber(values)
	rows, total, err := s.persons.List(r.Context(), res.Spec, repository.ListPage{Page: page, PageSize: res.Spec.PageSize})
	if err != nil {
		writeRepoError(w, err, "person list")
		return
	}

	writeJSON(w, http.StatusOK, personListResponse{
		People: rows,
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

func (s *Server) getPerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	row, err := s.persons.GetRow(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "person")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	var payload domain.Person
	if !decodeBody(w, r, &payload) {
		return
	}

	person, err := s.persons.Create(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "person create")
		return
	}

	_, userID := requestUser(r)
	if _, err := s.history.RecordCreation(r.Context(), "person", person.ID, userID, person.FieldValues()); err != nil {
		log.Printf("[api] person creation history: %v", err)
	}

	s.stashReturnQuery(r, "person")
	writeJSON(w, http.StatusCreated, person)
}

func (s *Server) updatePerson(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	current, err := s.persons.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "person")
		return
	}

	var payload domain.Person
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.ID = id
	payload.CreatedAt = current.CreatedAt

	updated, err := s.persons.Update(r.Context(), payload)
	if err != nil {
		writeRepoError(w, err, "person update")
		return
	}

	_, userID := requestUser(r)
	if _, err := s.history.RecordChanges(r.Context(), "person", id, userID, current.FieldValues(), updated.FieldValues()); err != nil {
		log.Printf("[api] person change history: %v", err)
	}

	statusChanged := (current.MembershipStatusID == nil) != (updated.MembershipStatusID == nil) ||
		(current.MembershipStatusID != nil && updated.MembershipStatusID != nil &&
			*current.MembershipStatusID != *updated.MembershipStatusID)
	if statusChanged {
		entry := domain.MembershipHistory{PersonID: id, MembershipStatusID: updated.MembershipStatusID}
		if err := s.persons.AppendMembershipHistory(r.Context(), entry); err != nil {
			log.Printf("[api] membership history: %v", err)
		}
	}

	s.stashReturnQuery(r, "person")
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deletePerson(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermDelete) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	if err := s.persons.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "person delete")
		return
	}

	_, userID := requestUser(r)
	if err := s.history.RecordAction(r.Context(), "person", id, "Deleted. ", userID, nil); err != nil {
		log.Printf("[api] delete action: %v", err)
	}

	s.stashReturnQuery(r, "person")
	w.WriteHeader(http.StatusNoContent)
}

type personHistoryResponse struct {
	Changes    []domain.HistoryEntry      `json:"changes"`
	Membership []domain.MembershipHistory `json:"membership"`
}

func (s *Server) personHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	changes, err := s.history.ListForObject(r.Context(), "person", id)
	if err != nil {
		writeRepoError(w, err, "person history")
		return
	}
	membership, err := s.persons.ListMembershipHistory(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "membership history")
		return
	}
	writeJSON(w, http.StatusOK, personHistoryResponse{Changes: changes, Membership: membership})
}

type contactsPayload struct {
	Voice []domain.ContactVoice `json:"voice"`
	Text  []domain.ContactText  `json:"text"`
	Email []domain.ContactEmail `json:"email"`
}

func (s *Server) replaceContacts(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	var payload contactsPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.persons.ReplaceContacts(r.Context(), id, payload.Voice, payload.Text, payload.Email); err != nil {
		writeRepoError(w, err, "contacts")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type subMembershipsPayload struct {
	Memberships []domain.SubMembership `json:"memberships"`
}

func (s *Server) replaceSubMemberships(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermChange) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	var payload subMembershipsPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.persons.ReplaceSubMemberships(r.Context(), id, payload.Memberships); err != nil {
		writeRepoError(w, err, "submemberships")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolvePeopleForExport re-resolves the caller's vista and loads the
// full, unpaginated result set.
func (s *Server) resolvePeopleForExport(w http.ResponseWriter, r *http.Request) (export.Table, bool) {
	userID, _ := requestUser(r)
	res, err := s.vistas.Resolve(r.Context(), s.settings["person"], userID, formValues(r))
	if err != nil {
		writeRepoError(w, err, "person export")
		return export.Table{}, false
	}
	rows, _, err := s.persons.List(r.Context(), res.Spec, repository.ListPage{})
	if err != nil {
		writeRepoError(w, err, "person export")
		return export.Table{}, false
	}
	return export.PersonTable(rows, res.Spec.ShowColumns), true
}

func (s *Server) exportPeopleCSV(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolvePeopleForExport(w, r)
	if !ok {
		return
	}
	writeCSVResponse(w, "people.csv", table)
}

func (s *Server) exportPeopleXLSX(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermExport) {
		return
	}
	table, ok := s.resolvePeopleForExport(w, r)
	if !ok {
		return
	}
	writeXLSXResponse(w, "people.xlsx", table)
}

type uploadResponse struct {
	Summary   ingestion.Summary `json:"summary"`
	ListQuery string            `json:"list_query"`
}

// uploadPeople ingests a person CSV or XLSX file. The response carries
// a ready-made list query filtering on the upload's bulk action, so the
// client can jump straight to everyone the file touched.
func (s *Server) uploadPeople(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, auth.PermImport) {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	_, userID := requestUser(r)
	summary, err := s.ingest.Ingest(r.Context(), ingestion.Request{
		FileName:  header.Filename,
		Data:      file,
		Overwrite: r.FormValue("overwrite") != "",
		UserID:    userID,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("upload failed: %v", err))
		return
	}

	listQuery := url.Values{}
	listQuery.Set("vista_query_submitted", "1")
	listQuery.Set("filter__fieldname__0", "record_action__bulk_record_action")
	listQuery.Set("filter__op__0", "exact")
	listQuery.Set("filter__value__0", summary.BulkActionID.String())

	writeJSON(w, http.StatusOK, uploadResponse{
		Summary:   summary,
		ListQuery: listQuery.Encode(),
	})
}
