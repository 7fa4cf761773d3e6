package vista

import (
	"context"
	"net/url"
	"testing"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

type stubVistaRepo struct {
	saved    map[string]domain.Vista
	touched  []uuid.UUID
	deleted  []string
	saveErr  error
	saveSeen []domain.Vista
}

func newStubVistaRepo() *stubVistaRepo {
	return &stubVistaRepo{saved: make(map[string]domain.Vista)}
}

func (s *stubVistaRepo) key(userID uuid.UUID, modelName, name string) string {
	return userID.String() + "/" + modelName + "/" + name
}

func (s *stubVistaRepo) Save(_ context.Context, vista domain.Vista) (domain.Vista, error) {
	if s.saveErr != nil {
		return domain.Vista{}, s.saveErr
	}
	if vista.ID == uuid.Nil {
		vista.ID = uuid.New()
	}
	if vista.IsDefault {
		for k, v := range s.saved {
			if v.UserID == vista.UserID && v.ModelName == vista.ModelName {
				v.IsDefault = false
				s.saved[k] = v
			}
		}
	}
	s.saved[s.key(vista.UserID, vista.ModelName, vista.Name)] = vista
	s.saveSeen = append(s.saveSeen, vista)
	return vista, nil
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
	var (
		latest domain.Vista
		found  bool
	)
	for _, v := range s.saved {
		if v.UserID != userID || v.ModelName != modelName {
			continue
		}
		if !found || v.Modified.After(latest.Modified) {
			latest = v
			found = true
		}
	}
	if !found {
		return domain.Vista{}, repository.ErrNotFound
	}
	return latest, nil
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

func (s *stubVistaRepo) Touch(_ context.Context, id uuid.UUID) error {
	s.touched = append(s.touched, id)
	return nil
}

func (s *stubVistaRepo) Delete(_ context.Context, userID uuid.UUID, modelName, name string) error {
	delete(s.saved, s.key(userID, modelName, name))
	s.deleted = append(s.deleted, name)
	return nil
}

func personSettings() Settings {
	return Settings{
		ModelName:       "person",
		Catalog:         catalog.Person(),
		Defaults:        personDefaults(),
		MaxSearchKeys:   5,
		DefaultPageSize: 30,
	}
}

func personDefaults() domain.QuerySpec {
	return domain.QuerySpec{
		Filters: []domain.FilterClause{
			{FieldName: "membership_status__is_member", Op: domain.OpExact, Values: []string{"True"}},
		},
		OrderBy:  []string{"name_last", "name_common"},
		PageSize: 30,
	}
}

func TestResolveSubmitParsesAndSaves(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())
	userID := uuid.New()

	values := url.Values{}
	values.Set("vista_query_submitted", "1")
	values.Set("filter__fieldname__0", "name_last")
	values.Set("filter__op__0", "icontains")
	values.Set("filter__value__0", "smith")
	values.Set("vista_name", "my smiths")
	values.Set("make_default", "on")

	res, err := svc.Resolve(context.Background(), personSettings(), userID, values)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if res.Mode != ModeSubmit {
		t.Errorf("mode = %s, want submit", res.Mode)
	}
	if len(res.Spec.Filters) != 1 || res.Spec.Filters[0].FieldName != "name_last" {
		t.Errorf("parsed spec wrong: %+v", res.Spec)
	}
	saved, err := repo.GetByName(context.Background(), userID, "person", "my smiths")
	if err != nil {
		t.Fatalf("submit with name should persist the vista: %v", err)
	}
	if !saved.IsDefault {
		t.Errorf("make_default flag should mark the saved vista default")
	}
}

func TestResolveMakeDefaultDemotesPreviousDefault(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())
	userID := uuid.New()

	submit := func(name string) {
		values := url.Values{}
		values.Set("vista_query_submitted", "1")
		values.Set("filter__fieldname__0", "name_last")
		values.Set("filter__op__0", "icontains")
		values.Set("filter__value__0", "smith")
		values.Set("vista_name", name)
		values.Set("make_default", "on")
		if _, err := svc.Resolve(context.Background(), personSettings(), userID, values); err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
	}

	submit("first")
	submit("second")

	def, err := repo.GetDefault(context.Background(), userID, "person")
	if err != nil {
		t.Fatalf("default lookup: %v", err)
	}
	if def.Name != "second" {
		t.Errorf("default = %q, want second", def.Name)
	}
	first, err := repo.GetByName(context.Background(), userID, "person", "first")
	if err != nil {
		t.Fatalf("first vista lookup: %v", err)
	}
	if first.IsDefault {
		t.Errorf("old default not demoted")
	}
}

func TestResolveSubmitWithoutNamePersistsNothing(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())

	values := url.Values{}
	values.Set("vista_query_submitted", "1")
	values.Set("filter__fieldname__0", "name_last")
	values.Set("filter__op__0", "exact")
	values.Set("filter__value__0", "Smith")

	res, err := svc.Resolve(context.Background(), personSettings(), uuid.New(), values)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Mode != ModeSubmit {
		t.Errorf("mode = %s, want submit", res.Mode)
	}
	if len(repo.saveSeen) != 0 {
		t.Errorf("anonymous submit must not persist, saved %d vistas", len(repo.saveSeen))
	}
}

func TestResolveRetrieveByName(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())
	userID := uuid.New()

	stored := domain.NewVista(userID, "person", "officers", domain.QuerySpec{
		Filters: []domain.FilterClause{
			{FieldName: "membership_status__is_quorum", Op: domain.OpExact, Values: []string{"True"}},
		},
	})
	repo.Save(context.Background(), *stored)

	values := url.Values{}
	values.Set("retrieve_vista", "1")
	values.Set("vista_name", "officers")

	res, err := svc.Resolve(context.Background(), personSettings(), userID, values)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if res.Mode != ModeRetrieve || res.VistaName != "officers" {
		t.Errorf("mode/name = %s/%s, want retrieve/officers", res.Mode, res.VistaName)
	}
	if len(res.Spec.Filters) != 1 || res.Spec.Filters[0].FieldName != "membership_status__is_quorum" {
		t.Errorf("stored spec not restored: %+v", res.Spec)
	}
	if len(repo.touched) != 1 {
		t.Errorf("retrieve should touch the vista so last-used tracking works")
	}
}

func TestResolveRetrieveMissDegradesToDefault(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())

	values := url.Values{}
	values.Set("retrieve_vista", "1")
	values.Set("vista_name", "no such vista")

	res, err := svc.Resolve(context.Background(), personSettings(), uuid.New(), values)
	if err != nil {
		t.Fatalf("miss must not surface an error, got %v", err)
	}
	if res.Mode != ModeDefault {
		t.Errorf("mode = %s, want default degradation", res.Mode)
	}
	if len(res.Spec.Filters) != 1 || res.Spec.Filters[0].FieldName != "membership_status__is_member" {
		t.Errorf("built-in defaults not applied: %+v", res.Spec)
	}
}

func TestResolveDefaultPrefersSavedDefault(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())
	userID := uuid.New()

	stored := domain.NewVista(userID, "person", "everyone", domain.QuerySpec{PageSize: 50})
	stored.IsDefault = true
	repo.Save(context.Background(), *stored)

	values := url.Values{}
	values.Set("default_vista", "1")

	res, err := svc.Resolve(context.Background(), personSettings(), userID, values)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Mode != ModeDefault || res.VistaName != "everyone" {
		t.Errorf("saved default not used: mode=%s name=%s", res.Mode, res.VistaName)
	}
	if res.Spec.PageSize != 50 {
		t.Errorf("stored page size lost: %d", res.Spec.PageSize)
	}
}

func TestResolveLastUsedWhenNothingRequested(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())
	userID := uuid.New()

	stored := domain.NewVista(userID, "person", "recent", domain.QuerySpec{TextSearch: "jane"})
	repo.Save(context.Background(), *stored)

	res, err := svc.Resolve(context.Background(), personSettings(), userID, url.Values{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Mode != ModeLatest || res.VistaName != "recent" {
		t.Errorf("latest vista not reused: mode=%s name=%s", res.Mode, res.VistaName)
	}
	if res.Spec.TextSearch != "jane" {
		t.Errorf("latest spec lost: %+v", res.Spec)
	}
}

func TestResolveLatestFallsBackToDefaultsWhenNoneSaved(t *testing.T) {
	svc := NewService(newStubVistaRepo(), NewMemorySessionStore())

	res, err := svc.Resolve(context.Background(), personSettings(), uuid.New(), url.Values{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Spec.PageSize != 30 {
		t.Errorf("default page size not applied: %d", res.Spec.PageSize)
	}
	if len(res.Spec.OrderBy) != 2 {
		t.Errorf("built-in ordering not applied: %v", res.Spec.OrderBy)
	}
}

func TestResolveSessionHandOffWinsAndIsConsumed(t *testing.T) {
	repo := newStubVistaRepo()
	sessions := NewMemorySessionStore()
	svc := NewService(repo, sessions)
	userID := uuid.New()

	stashed := url.Values{}
	stashed.Set("filter__fieldname__0", "name_first")
	stashed.Set("filter__op__0", "exact")
	stashed.Set("filter__value__0", "Jane")
	sessions.Put(userID, "person", stashed.Encode())

	// The submitted form would normally win, so the stash taking
	// precedence proves the hand-off is checked first.
	values := url.Values{}
	values.Set("vista_query_submitted", "1")
	values.Set("filter__fieldname__0", "name_last")
	values.Set("filter__op__0", "exact")
	values.Set("filter__value__0", "Smith")

	res, err := svc.Resolve(context.Background(), personSettings(), userID, values)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Mode != ModeSession {
		t.Errorf("mode = %s, want session", res.Mode)
	}
	if res.Spec.Filters[0].FieldName != "name_first" {
		t.Errorf("stashed query not replayed: %+v", res.Spec)
	}

	// Second resolve: the stash is consumed, submit applies.
	res, err = svc.Resolve(context.Background(), personSettings(), userID, values)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if res.Mode != ModeSubmit {
		t.Errorf("stash must be one-shot, second mode = %s", res.Mode)
	}
}

func TestResolveDeleteVistaSideChannel(t *testing.T) {
	repo := newStubVistaRepo()
	svc := NewService(repo, NewMemorySessionStore())
	userID := uuid.New()

	stored := domain.NewVista(userID, "person", "stale", domain.QuerySpec{})
	repo.Save(context.Background(), *stored)

	values := url.Values{}
	values.Set("delete_vista", "1")
	values.Set("vista_name", "stale")

	res, err := svc.Resolve(context.Background(), personSettings(), userID, values)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "stale" {
		t.Errorf("delete side channel not honoured: %v", repo.deleted)
	}
	// Resolution continues past the delete.
	if res.Mode == "" {
		t.Errorf("resolution should still produce a spec")
	}
}
