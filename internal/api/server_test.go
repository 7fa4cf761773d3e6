package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"membership-api/internal/domain"
	"membership-api/internal/history"
	"membership-api/internal/middleware"
	"membership-api/internal/repository"
	"membership-api/internal/vista"

	"github.com/google/uuid"
)

type stubPersonRepo struct {
	rows     []repository.PersonRow
	lastSpec domain.QuerySpec
	lastPage repository.ListPage
	people   map[uuid.UUID]domain.Person
	deleted  []uuid.UUID
}

func newStubPersonRepo() *stubPersonRepo {
	return &stubPersonRepo{people: map[uuid.UUID]domain.Person{}}
}

func (s *stubPersonRepo) Create(_ context.Context, person domain.Person) (domain.Person, error) {
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	s.people[person.ID] = person
	return person, nil
}

func (s *stubPersonRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Person, error) {
	p, ok := s.people[id]
	if !ok {
		return domain.Person{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *stubPersonRepo) GetByVoterID(_ context.Context, _ string) (domain.Person, error) {
	return domain.Person{}, repository.ErrNotFound
}

func (s *stubPersonRepo) GetRow(_ context.Context, id uuid.UUID) (repository.PersonRow, error) {
	for _, row := range s.rows {
		if row.Person.ID == id {
			return row, nil
		}
	}
	return repository.PersonRow{}, repository.ErrNotFound
}

func (s *stubPersonRepo) List(_ context.Context, spec domain.QuerySpec, page repository.ListPage) ([]repository.PersonRow, int, error) {
	s.lastSpec = spec
	s.lastPage = page
	return s.rows, len(s.rows), nil
}

func (s *stubPersonRepo) Update(_ context.Context, person domain.Person) (domain.Person, error) {
	if _, ok := s.people[person.ID]; !ok {
		return domain.Person{}, repository.ErrNotFound
	}
	s.people[person.ID] = person
	return person, nil
}

func (s *stubPersonRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPersonRepo) AppendMembershipHistory(_ context.Context, _ domain.MembershipHistory) error {
	return nil
}

func (s *stubPersonRepo) ListMembershipHistory(_ context.Context, _ uuid.UUID) ([]domain.MembershipHistory, error) {
	return nil, nil
}

func (s *stubPersonRepo) ReplaceContacts(_ context.Context, _ uuid.UUID, _ []domain.ContactVoice, _ []domain.ContactText, _ []domain.ContactEmail) error {
	return nil
}

func (s *stubPersonRepo) ReplaceSubMemberships(_ context.Context, _ uuid.UUID, _ []domain.SubMembership) error {
	return nil
}

func (s *stubPersonRepo) EnsureVoiceNumber(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

type stubVistaRepo struct {
	saved map[string]domain.Vista
}

func newStubVistaRepo() *stubVistaRepo {
	return &stubVistaRepo{saved: map[string]domain.Vista{}}
}

func (s *stubVistaRepo) key(userID uuid.UUID, modelName, name string) string {
	return userID.String() + "/" + modelName + "/" + name
}

func (s *stubVistaRepo) Save(_ context.Context, v domain.Vista) (domain.Vista, error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	s.saved[s.key(v.UserID, v.ModelName, v.Name)] = v
	return v, nil
}

func (s *stubVistaRepo) GetByName(_ context.Context, userID uuid.UUID, modelName, name string) (domain.Vista, error) {
	v, ok := s.saved[s.key(userID, modelName, name)]
	if !ok {
		return domain.Vista{}, repository.ErrNotFound
	}
	return v, nil
}

func (s *stubVistaRepo) GetDefault(_ context.Context, userID uuid.UUID, modelName string) (domain.Vista, error) {
	for _, v := range s.saved {
		if v.UserID == userID && v.ModelName == modelName && v.IsDefault {
			return v, nil
		}
	}
	return domain.Vista{}, repository.ErrNotFound
}

func (s *stubVistaRepo) Latest(_ context.Context, userID uuid.UUID, modelName string) (domain.Vista, error) {
	for _, v := range s.saved {
		if v.UserID == userID && v.ModelName == modelName {
			return v, nil
		}
	}
	return domain.Vista{}, repository.ErrNotFound
}

func (s *stubVistaRepo) List(_ context.Context, userID uuid.UUID, modelName string) ([]domain.Vista, error) {
	out := []domain.Vista{}
	for _, v := range s.saved {
		if v.UserID == userID && v.ModelName == modelName {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVistaRepo) Touch(_ context.Context, _ uuid.UUID) error { return nil }

func (s *stubVistaRepo) Delete(_ context.Context, userID uuid.UUID, modelName, name string) error {
	delete(s.saved, s.key(userID, modelName, name))
	return nil
}

type stubHistoryRepo struct{ entries []domain.HistoryEntry }

func (s *stubHistoryRepo) Append(_ context.Context, entries []domain.HistoryEntry) error {
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *stubHistoryRepo) ListForObject(_ context.Context, _ string, _ uuid.UUID) ([]domain.HistoryEntry, error) {
	return s.entries, nil
}

type stubActionRepo struct{ actions []domain.RecordAction }

func (s *stubActionRepo) Record(_ context.Context, a domain.RecordAction) (domain.RecordAction, error) {
	s.actions = append(s.actions, a)
	return a, nil
}

func (s *stubActionRepo) CreateBulk(_ context.Context, b domain.BulkRecordAction) (domain.BulkRecordAction, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return b, nil
}

func (s *stubActionRepo) ListForBulk(_ context.Context, _ uuid.UUID) ([]domain.RecordAction, error) {
	return nil, nil
}

type stubLookupRepo struct {
	locations map[uuid.UUID]domain.Location
}

func newStubLookupRepo() *stubLookupRepo {
	return &stubLookupRepo{locations: map[uuid.UUID]domain.Location{}}
}

func (s *stubLookupRepo) LocationByName(_ context.Context, kind domain.LocationKind, name string) (domain.Location, error) {
	for _, loc := range s.locations {
		if loc.Kind == kind && loc.Name == name {
			return loc, nil
		}
	}
	return domain.Location{}, repository.ErrNotFound
}

func (s *stubLookupRepo) CreateLocation(_ context.Context, loc domain.Location) (domain.Location, error) {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	s.locations[loc.ID] = loc
	return loc, nil
}

func (s *stubLookupRepo) UpdateLocation(_ context.Context, loc domain.Location) (domain.Location, error) {
	current, ok := s.locations[loc.ID]
	if !ok {
		return domain.Location{}, repository.ErrNotFound
	}
	current.Name = loc.Name
	s.locations[loc.ID] = current
	return current, nil
}

func (s *stubLookupRepo) DeleteLocation(_ context.Context, id uuid.UUID) error {
	if _, ok := s.locations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.locations, id)
	return nil
}

func (s *stubLookupRepo) ListLocations(_ context.Context, kind domain.LocationKind) ([]domain.Location, error) {
	out := []domain.Location{}
	for _, loc := range s.locations {
		if loc.Kind == kind {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *stubLookupRepo) ListMembershipStatuses(_ context.Context) ([]domain.MembershipStatus, error) {
	return nil, nil
}

func (s *stubLookupRepo) ListMembershipTypes(_ context.Context) ([]domain.MembershipType, error) {
	return nil, nil
}

func (s *stubLookupRepo) ListEventTypes(_ context.Context) ([]domain.EventType, error) {
	return nil, nil
}

func (s *stubLookupRepo) ListPaymentMethods(_ context.Context) ([]domain.PaymentMethod, error) {
	return nil, nil
}

type stubCommRepo struct {
	rows     []repository.CommunicationEventRow
	lastSpec domain.QuerySpec
	events   map[uuid.UUID]domain.CommunicationEvent
}

func newStubCommRepo() *stubCommRepo {
	return &stubCommRepo{events: map[uuid.UUID]domain.CommunicationEvent{}}
}

func (s *stubCommRepo) Create(_ context.Context, event domain.CommunicationEvent) (domain.CommunicationEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubCommRepo) GetByID(_ context.Context, id uuid.UUID) (domain.CommunicationEvent, error) {
	event, ok := s.events[id]
	if !ok {
		return domain.CommunicationEvent{}, repository.ErrNotFound
	}
	return event, nil
}

func (s *stubCommRepo) List(_ context.Context, spec domain.QuerySpec, _ repository.ListPage) ([]repository.CommunicationEventRow, int, error) {
	s.lastSpec = spec
	return s.rows, len(s.rows), nil
}

func (s *stubCommRepo) Update(_ context.Context, event domain.CommunicationEvent) (domain.CommunicationEvent, error) {
	if _, ok := s.events[event.ID]; !ok {
		return domain.CommunicationEvent{}, repository.ErrNotFound
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubCommRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *stubCommRepo) CreateBulk(_ context.Context, bulk domain.BulkCommunication) (domain.BulkCommunication, error) {
	if bulk.ID == uuid.Nil {
		bulk.ID = uuid.New()
	}
	return bulk, nil
}

func (s *stubCommRepo) GetBulkByID(_ context.Context, _ uuid.UUID) (domain.BulkCommunication, error) {
	return domain.BulkCommunication{}, repository.ErrNotFound
}

func (s *stubCommRepo) ListBulks(_ context.Context, _ domain.QuerySpec, _ repository.ListPage) ([]repository.BulkCommunicationRow, int, error) {
	return nil, 0, nil
}

func (s *stubCommRepo) UpdateBulk(_ context.Context, bulk domain.BulkCommunication) (domain.BulkCommunication, error) {
	return bulk, nil
}

func (s *stubCommRepo) DeleteBulk(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (s *stubCommRepo) ListResults(_ context.Context) ([]domain.CommunicationResult, error) {
	return nil, nil
}

func newTestServer(persons *stubPersonRepo) (*Server, http.Handler) {
	return newTestServerWith(persons, newStubCommRepo(), newStubLookupRepo())
}

func newTestServerWith(persons *stubPersonRepo, comms *stubCommRepo, lookups *stubLookupRepo) (*Server, http.Handler) {
	vistaRepo := newStubVistaRepo()
	vistaSvc := vista.NewService(vistaRepo, vista.NewMemorySessionStore())
	historySvc := history.NewService(&stubHistoryRepo{}, &stubActionRepo{})
	srv := NewServer(persons, nil, nil, nil, nil, comms, lookups, vistaRepo, vistaSvc, historySvc, nil)
	return srv, middleware.AuthMiddleware(srv.Routes())
}

func samplePersonRow() repository.PersonRow {
	return repository.PersonRow{
		Person:           domain.Person{ID: uuid.New(), NameLast: "Smith", NameFirst: "Jane"},
		MembershipStatus: "Regular: Good Standing",
		SubCommittees:    []string{"Finance"},
		LocationNames:    map[domain.LocationKind]string{domain.LocationKindCity: "Springfield"},
	}
}

func TestListPeopleAppliesBuiltInDefaults(t *testing.T) {
	persons := newStubPersonRepo()
	persons.rows = []repository.PersonRow{samplePersonRow()}
	_, handler := newTestServer(persons)

	req := httptest.NewRequest(http.MethodGet, "/people", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp personListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta.Total != 1 || resp.Meta.PageSize != 30 {
		t.Errorf("meta = %+v", resp.Meta)
	}
	if len(persons.lastSpec.Filters) != 1 || persons.lastSpec.Filters[0].FieldName != "membership_status__is_member" {
		t.Errorf("defaults not applied: %+v", persons.lastSpec)
	}
}

func TestListPeopleSubmittedFilterReachesRepository(t *testing.T) {
	persons := newStubPersonRepo()
	_, handler := newTestServer(persons)

	form := url.Values{}
	form.Set("vista_query_submitted", "1")
	form.Set("filter__fieldname__0", "name_last")
	form.Set("filter__op__0", "icontains")
	form.Set("filter__value__0", "smith")
	form.Set("paginate_by", "10")

	req := httptest.NewRequest(http.MethodPost, "/people", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(persons.lastSpec.Filters) != 1 || persons.lastSpec.Filters[0].FieldName != "name_last" {
		t.Errorf("submitted filter lost: %+v", persons.lastSpec)
	}
	if persons.lastPage.PageSize != 10 {
		t.Errorf("page size = %d, want 10", persons.lastPage.PageSize)
	}
}

func TestSubmittedVistaIsSavedForAuthenticatedUser(t *testing.T) {
	persons := newStubPersonRepo()
	srv, handler := newTestServer(persons)

	userID := uuid.New()
	form := url.Values{}
	form.Set("vista_query_submitted", "1")
	form.Set("filter__fieldname__0", "name_last")
	form.Set("filter__op__0", "exact")
	form.Set("filter__value__0", "Smith")
	form.Set("vista_name", "smiths")

	req := httptest.NewRequest(http.MethodPost, "/people", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-User-Id", userID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	stub := srv.vistaRepo.(*stubVistaRepo)
	if _, err := stub.GetByName(context.Background(), userID, "person", "smiths"); err != nil {
		t.Errorf("vista was not saved: %v", err)
	}
}

func TestGetPersonNotFound(t *testing.T) {
	persons := newStubPersonRepo()
	_, handler := newTestServer(persons)

	req := httptest.NewRequest(http.MethodGet, "/people/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeletePersonRequiresPermission(t *testing.T) {
	persons := newStubPersonRepo()
	_, handler := newTestServer(persons)

	req := httptest.NewRequest(http.MethodDelete, "/people/"+uuid.NewString(), nil)
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Permissions", "view,change")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if len(persons.deleted) != 0 {
		t.Errorf("delete ran despite missing permission")
	}
}

func TestDeletePersonWithPermission(t *testing.T) {
	persons := newStubPersonRepo()
	id := uuid.New()
	persons.people[id] = domain.Person{ID: id}
	_, handler := newTestServer(persons)

	req := httptest.NewRequest(http.MethodDelete, "/people/"+id.String(), nil)
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Permissions", "view,change,delete")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if len(persons.deleted) != 1 || persons.deleted[0] != id {
		t.Errorf("delete not recorded: %v", persons.deleted)
	}
}

func TestExportPeopleCSV(t *testing.T) {
	persons := newStubPersonRepo()
	persons.rows = []repository.PersonRow{samplePersonRow()}
	_, handler := newTestServer(persons)

	req := httptest.NewRequest(http.MethodGet, "/people/export.csv", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Smith") || !strings.Contains(body, "Springfield") {
		t.Errorf("export missing row data: %q", body)
	}
	// Exports ignore pagination entirely.
	if persons.lastPage.PageSize != 0 {
		t.Errorf("export paginated: %+v", persons.lastPage)
	}
}

func TestUpdatePersonRecordsChangeHistory(t *testing.T) {
	persons := newStubPersonRepo()
	id := uuid.New()
	persons.people[id] = domain.Person{ID: id, NameLast: "Smith"}

	vistaRepo := newStubVistaRepo()
	vistaSvc := vista.NewService(vistaRepo, vista.NewMemorySessionStore())
	histRepo := &stubHistoryRepo{}
	historySvc := history.NewService(histRepo, &stubActionRepo{})
	srv := NewServer(persons, nil, nil, nil, nil, nil, nil, vistaRepo, vistaSvc, historySvc, nil)
	handler := middleware.AuthMiddleware(srv.Routes())

	req := httptest.NewRequest(http.MethodPut, "/people/"+id.String(),
		strings.NewReader(`{"name_last":"Smythe"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	found := false
	for _, e := range histRepo.entries {
		if e.FieldName == "name_last" && e.OldValue == "Smith" && e.NewValue == "Smythe" {
			found = true
		}
	}
	if !found {
		t.Errorf("change history missing: %+v", histRepo.entries)
	}
}

func TestCreateLocation(t *testing.T) {
	lookups := newStubLookupRepo()
	_, handler := newTestServerWith(newStubPersonRepo(), newStubCommRepo(), lookups)

	req := httptest.NewRequest(http.MethodPost, "/lookups/locations",
		strings.NewReader(`{"kind":"city","name":"Springfield"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Permissions", "view,change")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, err := lookups.LocationByName(context.Background(), domain.LocationKindCity, "Springfield"); err != nil {
		t.Errorf("created location not findable by name: %v", err)
	}
}

func TestCreateLocationRequiresChangePermission(t *testing.T) {
	lookups := newStubLookupRepo()
	_, handler := newTestServerWith(newStubPersonRepo(), newStubCommRepo(), lookups)

	req := httptest.NewRequest(http.MethodPost, "/lookups/locations",
		strings.NewReader(`{"kind":"city","name":"Springfield"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Permissions", "view")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if len(lookups.locations) != 0 {
		t.Errorf("location created despite missing permission")
	}
}

func TestCreateLocationRejectsUnknownKind(t *testing.T) {
	_, handler := newTestServer(newStubPersonRepo())

	req := httptest.NewRequest(http.MethodPost, "/lookups/locations",
		strings.NewReader(`{"kind":"planet","name":"Mars"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateLocationRenames(t *testing.T) {
	lookups := newStubLookupRepo()
	loc, _ := lookups.CreateLocation(context.Background(), domain.Location{Kind: domain.LocationKindBorough, Name: "Old Side"})
	_, handler := newTestServerWith(newStubPersonRepo(), newStubCommRepo(), lookups)

	req := httptest.NewRequest(http.MethodPut, "/lookups/locations/"+loc.ID.String(),
		strings.NewReader(`{"name":"New Side"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := lookups.locations[loc.ID].Name; got != "New Side" {
		t.Errorf("name = %q, want New Side", got)
	}
}

func TestDeleteLocationMissingIsNotFound(t *testing.T) {
	_, handler := newTestServer(newStubPersonRepo())

	req := httptest.NewRequest(http.MethodDelete, "/lookups/locations/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListCommunicationsAppliesBuiltInDefaults(t *testing.T) {
	comms := newStubCommRepo()
	comms.rows = []repository.CommunicationEventRow{{
		Communication: domain.CommunicationEvent{ID: uuid.New(), TargetID: uuid.New(), Details: "left voicemail"},
		TargetName:    "Jane Smith",
	}}
	_, handler := newTestServerWith(newStubPersonRepo(), comms, newStubLookupRepo())

	req := httptest.NewRequest(http.MethodGet, "/communications", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	wantOrder := []string{"-when", "target"}
	if len(comms.lastSpec.OrderBy) != 2 || comms.lastSpec.OrderBy[0] != wantOrder[0] || comms.lastSpec.OrderBy[1] != wantOrder[1] {
		t.Errorf("order = %v, want %v", comms.lastSpec.OrderBy, wantOrder)
	}

	var resp communicationListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta.Total != 1 || resp.Communications[0].TargetName != "Jane Smith" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateCommunicationRequiresTarget(t *testing.T) {
	comms := newStubCommRepo()
	_, handler := newTestServerWith(newStubPersonRepo(), comms, newStubLookupRepo())

	req := httptest.NewRequest(http.MethodPost, "/communications/new",
		strings.NewReader(`{"details":"no target"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(comms.events) != 0 {
		t.Errorf("communication created without a target")
	}
}

func TestExportCommunicationsCSV(t *testing.T) {
	comms := newStubCommRepo()
	comms.rows = []repository.CommunicationEventRow{{
		Communication: domain.CommunicationEvent{ID: uuid.New(), TargetID: uuid.New(), Details: "door knock"},
		TargetName:    "Jane Smith",
		VolunteerName: "Pat Jones",
		ResultName:    "Spoke",
	}}
	_, handler := newTestServerWith(newStubPersonRepo(), comms, newStubLookupRepo())

	req := httptest.NewRequest(http.MethodGet, "/communications/export.csv", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Jane Smith") || !strings.Contains(body, "door knock") || !strings.Contains(body, "Spoke") {
		t.Errorf("export missing row data: %q", body)
	}
}

func TestListVistasAnonymousIsEmpty(t *testing.T) {
	persons := newStubPersonRepo()
	_, handler := newTestServer(persons)

	req := httptest.NewRequest(http.MethodGet, "/vistas/person", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var vistas []domain.Vista
	if err := json.Unmarshal(rec.Body.Bytes(), &vistas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(vistas) != 0 {
		t.Errorf("anonymous must see no saved vistas")
	}
}
