package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"membership-api/internal/auth"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeRepoError maps repository errors onto HTTP statuses.
func writeRepoError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	log.Printf("[api] %s: %v", what, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// formValues merges the URL query with an urlencoded body, so list
// views accept both plain links and filter form submissions.
func formValues(r *http.Request) url.Values {
	values := url.Values{}
	for key, vals := range r.URL.Query() {
		values[key] = vals
	}
	ct := r.Header.Get("Content-Type")
	if r.Method == http.MethodPost && strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err == nil {
			for key, vals := range r.PostForm {
				values[key] = append(values[key], vals...)
			}
		}
	}
	return values
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

func pageNumber(values url.Values) int {
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// requestUser returns the authenticated user id, uuid.Nil when the
// request is anonymous, plus a pointer form for audit rows.
func requestUser(r *http.Request) (uuid.UUID, *uuid.UUID) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, nil
	}
	return id, &id
}

// requirePermission gates a handler. It reports false after writing
// the 403 so callers can simply return.
func requirePermission(w http.ResponseWriter, r *http.Request, name string) bool {
	if err := auth.RequirePermission(r.Context(), name); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// stashReturnQuery saves the list query a mutation should hand back to
// its originating list view, replayed by the next list request.
func (s *Server) stashReturnQuery(r *http.Request, modelName string) {
	userID, _ := requestUser(r)
	if userID == uuid.Nil {
		return
	}
	if q := r.URL.Query().Get("return_query"); q != "" {
		s.vistas.Sessions().Put(userID, modelName, q)
	}
}

// listMeta describes a resolved list page.
type listMeta struct {
	Total     int    `json:"total"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	VistaMode string `json:"vista_mode"`
	VistaName string `json:"vista_name,omitempty"`
}
