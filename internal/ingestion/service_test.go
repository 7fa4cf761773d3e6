package ingestion

import (
	"context"
	"strings"
	"testing"

	"membership-api/internal/domain"
	"membership-api/internal/history"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

type stubPersonRepo struct {
	byVoterID map[string]domain.Person
	byID      map[uuid.UUID]domain.Person
	voice     map[uuid.UUID][]string
	histories []domain.MembershipHistory
}

func newStubPersonRepo() *stubPersonRepo {
	return &stubPersonRepo{
		byVoterID: map[string]domain.Person{},
		byID:      map[uuid.UUID]domain.Person{},
		voice:     map[uuid.UUID][]string{},
	}
}

func (s *stubPersonRepo) Create(_ context.Context, person domain.Person) (domain.Person, error) {
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	s.byID[person.ID] = person
	if person.VBVoterID != "" {
		s.byVoterID[person.VBVoterID] = person
	}
	return person, nil
}

func (s *stubPersonRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Person, error) {
	p, ok := s.byID[id]
	if !ok {
		return domain.Person{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *stubPersonRepo) GetByVoterID(_ context.Context, voterID string) (domain.Person, error) {
	p, ok := s.byVoterID[voterID]
	if !ok {
		return domain.Person{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *stubPersonRepo) GetRow(_ context.Context, id uuid.UUID) (repository.PersonRow, error) {
	return repository.PersonRow{}, repository.ErrNotFound
}

func (s *stubPersonRepo) List(_ context.Context, _ domain.QuerySpec, _ repository.ListPage) ([]repository.PersonRow, int, error) {
	return nil, 0, nil
}

func (s *stubPersonRepo) Update(_ context.Context, person domain.Person) (domain.Person, error) {
	if _, ok := s.byID[person.ID]; !ok {
		return domain.Person{}, repository.ErrNotFound
	}
	s.byID[person.ID] = person
	if person.VBVoterID != "" {
		s.byVoterID[person.VBVoterID] = person
	}
	return person, nil
}

func (s *stubPersonRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (s *stubPersonRepo) AppendMembershipHistory(_ context.Context, entry domain.MembershipHistory) error {
	s.histories = append(s.histories, entry)
	return nil
}

func (s *stubPersonRepo) ListMembershipHistory(_ context.Context, _ uuid.UUID) ([]domain.MembershipHistory, error) {
	return s.histories, nil
}

func (s *stubPersonRepo) ReplaceContacts(_ context.Context, _ uuid.UUID, _ []domain.ContactVoice, _ []domain.ContactText, _ []domain.ContactEmail) error {
	return nil
}

func (s *stubPersonRepo) ReplaceSubMemberships(_ context.Context, _ uuid.UUID, _ []domain.SubMembership) error {
	return nil
}

func (s *stubPersonRepo) EnsureVoiceNumber(_ context.Context, personID uuid.UUID, number string) error {
	for _, n := range s.voice[personID] {
		if n == number {
			return nil
		}
	}
	s.voice[personID] = append(s.voice[personID], number)
	return nil
}

type stubAddressRepo struct {
	byStreet map[string]domain.VotingAddress
}

func newStubAddressRepo() *stubAddressRepo {
	return &stubAddressRepo{byStreet: map[string]domain.VotingAddress{}}
}

func (s *stubAddressRepo) Create(_ context.Context, addr domain.VotingAddress) (domain.VotingAddress, error) {
	if addr.ID == uuid.Nil {
		addr.ID = uuid.New()
	}
	s.byStreet[addr.StreetAddress] = addr
	return addr, nil
}

func (s *stubAddressRepo) GetByID(_ context.Context, id uuid.UUID) (domain.VotingAddress, error) {
	for _, addr := range s.byStreet {
		if addr.ID == id {
			return addr, nil
		}
	}
	return domain.VotingAddress{}, repository.ErrNotFound
}

func (s *stubAddressRepo) GetOrCreateByStreet(ctx context.Context, streetAddress string) (domain.VotingAddress, error) {
	if addr, ok := s.byStreet[streetAddress]; ok {
		return addr, nil
	}
	return s.Create(ctx, domain.VotingAddress{StreetAddress: streetAddress})
}

func (s *stubAddressRepo) List(_ context.Context, _ domain.QuerySpec, _ repository.ListPage) ([]repository.VotingAddressRow, int, error) {
	return nil, 0, nil
}

func (s *stubAddressRepo) Update(_ context.Context, addr domain.VotingAddress) (domain.VotingAddress, error) {
	s.byStreet[addr.StreetAddress] = addr
	return addr, nil
}

func (s *stubAddressRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type stubLookupRepo struct {
	locations map[domain.LocationKind]map[string]domain.Location
	statuses  []domain.MembershipStatus
}

func newStubLookupRepo() *stubLookupRepo {
	return &stubLookupRepo{locations: map[domain.LocationKind]map[string]domain.Location{}}
}

func (s *stubLookupRepo) addLocation(kind domain.LocationKind, name string) domain.Location {
	loc := domain.Location{ID: uuid.New(), Kind: kind, Name: name}
	if s.locations[kind] == nil {
		s.locations[kind] = map[string]domain.Location{}
	}
	s.locations[kind][name] = loc
	return loc
}

func (s *stubLookupRepo) LocationByName(_ context.Context, kind domain.LocationKind, name string) (domain.Location, error) {
	loc, ok := s.locations[kind][name]
	if !ok {
		return domain.Location{}, repository.ErrNotFound
	}
	return loc, nil
}

func (s *stubLookupRepo) CreateLocation(_ context.Context, loc domain.Location) (domain.Location, error) {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	if s.locations[loc.Kind] == nil {
		s.locations[loc.Kind] = map[string]domain.Location{}
	}
	s.locations[loc.Kind][loc.Name] = loc
	return loc, nil
}

func (s *stubLookupRepo) UpdateLocation(_ context.Context, loc domain.Location) (domain.Location, error) {
	return loc, nil
}

func (s *stubLookupRepo) DeleteLocation(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (s *stubLookupRepo) ListLocations(_ context.Context, kind domain.LocationKind) ([]domain.Location, error) {
	out := []domain.Location{}
	for _, loc := range s.locations[kind] {
		out = append(out, loc)
	}
	return out, nil
}

func (s *stubLookupRepo) ListMembershipStatuses(_ context.Context) ([]domain.MembershipStatus, error) {
	return s.statuses, nil
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

type stubHistoryRepo struct {
	entries []domain.HistoryEntry
}

func (s *stubHistoryRepo) Append(_ context.Context, entries []domain.HistoryEntry) error {
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *stubHistoryRepo) ListForObject(_ context.Context, _ string, _ uuid.UUID) ([]domain.HistoryEntry, error) {
	return s.entries, nil
}

type stubActionRepo struct {
	actions []domain.RecordAction
	bulks   []domain.BulkRecordAction
}

func (s *stubActionRepo) Record(_ context.Context, action domain.RecordAction) (domain.RecordAction, error) {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	s.actions = append(s.actions, action)
	return action, nil
}

func (s *stubActionRepo) CreateBulk(_ context.Context, bulk domain.BulkRecordAction) (domain.BulkRecordAction, error) {
	if bulk.ID == uuid.Nil {
		bulk.ID = uuid.New()
	}
	s.bulks = append(s.bulks, bulk)
	return bulk, nil
}

func (s *stubActionRepo) ListForBulk(_ context.Context, bulkID uuid.UUID) ([]domain.RecordAction, error) {
	out := []domain.RecordAction{}
	for _, a := range s.actions {
		if a.BulkRecordActionID != nil && *a.BulkRecordActionID == bulkID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fixture struct {
	svc     *Service
	persons *stubPersonRepo
	addrs   *stubAddressRepo
	lookups *stubLookupRepo
	hist    *stubHistoryRepo
	actions *stubActionRepo
}

func newFixture() *fixture {
	persons := newStubPersonRepo()
	addrs := newStubAddressRepo()
	lookups := newStubLookupRepo()
	hist := &stubHistoryRepo{}
	actions := &stubActionRepo{}
	return &fixture{
		svc:     NewService(persons, addrs, lookups, history.NewService(hist, actions)),
		persons: persons,
		addrs:   addrs,
		lookups: lookups,
		hist:    hist,
		actions: actions,
	}
}

func upload(t *testing.T, f *fixture, csvBody string, overwrite bool) Summary {
	t.Helper()
	summary, err := f.svc.Ingest(context.Background(), Request{
		FileName:  "members.csv",
		Data:      strings.NewReader(csvBody),
		Overwrite: overwrite,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return summary
}

func TestIngestCreatesPersonWithSplitNameAndCity(t *testing.T) {
	f := newFixture()
	springfield := f.lookups.addLocation(domain.LocationKindCity, "Springfield")

	body := "vanid,full_name,street_address,city\n" +
		`123,"Smith, Jane",12 Main St,Springfield` + "\n"
	summary := upload(t, f, body, false)

	if summary.Created != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	person, err := f.persons.GetByVoterID(context.Background(), "123")
	if err != nil {
		t.Fatalf("person not created: %v", err)
	}
	if person.NameLast != "Smith" || person.NameFirst != "Jane" {
		t.Errorf("full_name not split: %+v", person)
	}
	if person.VotingAddressID == nil {
		t.Fatalf("voting address not linked")
	}
	addr, _ := f.addrs.GetByID(context.Background(), *person.VotingAddressID)
	if addr.CityID == nil || *addr.CityID != springfield.ID {
		t.Errorf("city reference not resolved: %+v", addr)
	}
}

func TestIngestCityWithoutStreetColumnStillLinksAddress(t *testing.T) {
	f := newFixture()
	springfield := f.lookups.addLocation(domain.LocationKindCity, "Springfield")

	body := "vanid,full_name,city\n" +
		`123,"Smith, Jane",Springfield` + "\n"
	summary := upload(t, f, body, false)

	if summary.Created != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	person, err := f.persons.GetByVoterID(context.Background(), "123")
	if err != nil {
		t.Fatalf("person not created: %v", err)
	}
	if person.NameLast != "Smith" || person.NameFirst != "Jane" {
		t.Errorf("full_name not split: %+v", person)
	}
	if person.VotingAddressID == nil {
		t.Fatalf("city-only row must still create a voting address")
	}
	addr, _ := f.addrs.GetByID(context.Background(), *person.VotingAddressID)
	if addr.CityID == nil || *addr.CityID != springfield.ID {
		t.Errorf("city reference not resolved: %+v", addr)
	}
}

func TestIngestCityOnlyReusesExistingAddress(t *testing.T) {
	f := newFixture()
	springfield := f.lookups.addLocation(domain.LocationKindCity, "Springfield")

	upload(t, f, "vanid,name_last,street_address\n123,Smith,12 Main St\n", false)
	upload(t, f, "vanid,name_last,city\n123,Smith,Springfield\n", true)

	person, _ := f.persons.GetByVoterID(context.Background(), "123")
	if person.VotingAddressID == nil {
		t.Fatalf("address link lost")
	}
	addr, _ := f.addrs.GetByID(context.Background(), *person.VotingAddressID)
	if addr.StreetAddress != "12 Main St" {
		t.Errorf("existing address should be reused, got %q", addr.StreetAddress)
	}
	if addr.CityID == nil || *addr.CityID != springfield.ID {
		t.Errorf("city not applied to existing address: %+v", addr)
	}
}

func TestIngestUnknownLocationSkipsJustThatField(t *testing.T) {
	f := newFixture()

	body := "vanid,full_name,street_address,city\n" +
		`123,"Smith, Jane",12 Main St,Atlantis` + "\n"
	summary := upload(t, f, body, false)

	if summary.Created != 1 || summary.Failed != 0 {
		t.Fatalf("unknown location must not fail the row: %+v", summary)
	}
	person, _ := f.persons.GetByVoterID(context.Background(), "123")
	if person.VotingAddressID == nil {
		t.Fatalf("address should still be created")
	}
	addr, _ := f.addrs.GetByID(context.Background(), *person.VotingAddressID)
	if addr.CityID != nil {
		t.Errorf("unresolvable city must stay unset")
	}
}

func TestIngestRepeatVoterIDWithoutOverwrite(t *testing.T) {
	f := newFixture()

	body := "vanid,name_last\n123,Smith\n"
	upload(t, f, body, false)

	body = "vanid,name_last\n123,Smythe\n"
	summary := upload(t, f, body, false)

	if summary.Unchanged != 1 || summary.Updated != 0 {
		t.Fatalf("repeat row without overwrite must not change: %+v", summary)
	}
	person, _ := f.persons.GetByVoterID(context.Background(), "123")
	if person.NameLast != "Smith" {
		t.Errorf("person changed despite overwrite=false: %q", person.NameLast)
	}
}

func TestIngestRepeatVoterIDWithOverwrite(t *testing.T) {
	f := newFixture()

	upload(t, f, "vanid,name_last\n123,Smith\n", false)
	summary := upload(t, f, "vanid,name_last\n123,Smythe\n", true)

	if summary.Updated != 1 {
		t.Fatalf("overwrite should update: %+v", summary)
	}
	person, _ := f.persons.GetByVoterID(context.Background(), "123")
	if person.NameLast != "Smythe" {
		t.Errorf("overwrite did not apply: %q", person.NameLast)
	}

	// The update leaves a change trail.
	changed := false
	for _, e := range f.hist.entries {
		if e.FieldName == "name_last" && e.OldValue == "Smith" && e.NewValue == "Smythe" {
			changed = true
		}
	}
	if !changed {
		t.Errorf("history entry for the overwrite missing: %+v", f.hist.entries)
	}
}

func TestIngestGroupsRowsUnderOneBulkAction(t *testing.T) {
	f := newFixture()

	body := "vanid,name_last\n1,Adams\n2,Brown\n3,Clark\n"
	summary := upload(t, f, body, false)

	if len(f.actions.bulks) != 1 {
		t.Fatalf("expected one bulk action per upload, got %d", len(f.actions.bulks))
	}
	linked, _ := f.actions.ListForBulk(context.Background(), summary.BulkActionID)
	if len(linked) != 3 {
		t.Errorf("all rows must link to the upload's bulk action, got %d", len(linked))
	}
}

func TestIngestEmptyVoterIDAlwaysCreates(t *testing.T) {
	f := newFixture()

	body := "vanid,name_last\n,Nobody\n,Nobody\n"
	summary := upload(t, f, body, false)

	if summary.Created != 2 {
		t.Errorf("blank voter ids must create fresh people each time: %+v", summary)
	}
}

func TestIngestPhoneColumn(t *testing.T) {
	f := newFixture()

	upload(t, f, "vanid,name_last,phone\n123,Smith,555-0100\n", false)
	upload(t, f, "vanid,name_last,phone\n123,Smith,555-0100\n", true)

	person, _ := f.persons.GetByVoterID(context.Background(), "123")
	if got := f.persons.voice[person.ID]; len(got) != 1 || got[0] != "555-0100" {
		t.Errorf("phone should be added once: %v", got)
	}
}

func TestIngestRejectsUnsupportedFormat(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Ingest(context.Background(), Request{
		FileName: "members.pdf",
		Data:     strings.NewReader("junk"),
	})
	if err == nil {
		t.Fatalf("unsupported extension must be rejected")
	}
}

func TestIngestMembershipStatusColumn(t *testing.T) {
	f := newFixture()
	status := domain.MembershipStatus{ID: uuid.New(), Name: "Good Standing", TypeName: "Regular"}
	f.lookups.statuses = []domain.MembershipStatus{status}

	body := "vanid,name_last,membership_status\n123,Smith,good standing regular\n"
	upload(t, f, body, false)

	person, _ := f.persons.GetByVoterID(context.Background(), "123")
	if person.MembershipStatusID == nil || *person.MembershipStatusID != status.ID {
		t.Fatalf("membership status not matched case-insensitively: %+v", person.MembershipStatusID)
	}
	if len(f.persons.histories) != 1 {
		t.Errorf("status change should append membership history, got %d entries", len(f.persons.histories))
	}
}
