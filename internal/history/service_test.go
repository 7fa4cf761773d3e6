package history

import (
	"context"
	"testing"

	"membership-api/internal/domain"

	"github.com/google/uuid"
)

type stubHistoryRepo struct {
	appended []domain.HistoryEntry
}

func (s *stubHistoryRepo) Append(_ context.Context, entries []domain.HistoryEntry) error {
	s.appended = append(s.appended, entries...)
	return nil
}

func (s *stubHistoryRepo) ListForObject(_ context.Context, modelName string, objectID uuid.UUID) ([]domain.HistoryEntry, error) {
	out := []domain.HistoryEntry{}
	for _, e := range s.appended {
		if e.ModelName == modelName && e.ObjectID == objectID {
			out = append(out, e)
		}
	}
	return out, nil
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

func TestRecordChangesAppendsOneEntryPerChangedField(t *testing.T) {
	histories := &stubHistoryRepo{}
	svc := NewService(histories, &stubActionRepo{})
	objectID := uuid.New()

	initial := map[string]string{"name_last": "Smith", "name_first": "Jane", "name_common": ""}
	submitted := map[string]string{"name_last": "Smythe", "name_first": "Jane", "name_common": "Janie"}

	n, err := svc.RecordChanges(context.Background(), "person", objectID, nil, initial, submitted)
	if err != nil {
		t.Fatalf("record changes: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}

	// DiffFields sorts by field name.
	if histories.appended[0].FieldName != "name_common" || histories.appended[0].NewValue != "Janie" {
		t.Errorf("unexpected first entry: %+v", histories.appended[0])
	}
	if histories.appended[1].FieldName != "name_last" || histories.appended[1].OldValue != "Smith" || histories.appended[1].NewValue != "Smythe" {
		t.Errorf("unexpected second entry: %+v", histories.appended[1])
	}
}

func TestRecordChangesNoOpWritesNothing(t *testing.T) {
	histories := &stubHistoryRepo{}
	svc := NewService(histories, &stubActionRepo{})

	values := map[string]string{"name_last": "Smith"}
	n, err := svc.RecordChanges(context.Background(), "person", uuid.New(), nil, values, values)
	if err != nil {
		t.Fatalf("record changes: %v", err)
	}
	if n != 0 || len(histories.appended) != 0 {
		t.Errorf("no-change save must append zero entries, got %d", len(histories.appended))
	}
}

func TestRecordCreationDiffsAgainstEmpty(t *testing.T) {
	histories := &stubHistoryRepo{}
	svc := NewService(histories, &stubActionRepo{})

	n, err := svc.RecordCreation(context.Background(), "person", uuid.New(), nil, map[string]string{
		"name_last":  "Smith",
		"name_first": "",
	})
	if err != nil {
		t.Fatalf("record creation: %v", err)
	}
	// Empty submitted values diff equal against the empty initial map.
	if n != 1 {
		t.Errorf("expected 1 entry for the one non-empty field, got %d", n)
	}
}

func TestBulkGroupingLinksActions(t *testing.T) {
	actions := &stubActionRepo{}
	svc := NewService(&stubHistoryRepo{}, actions)

	bulk, err := svc.BeginBulk(context.Background(), "Uploaded members.csv")
	if err != nil {
		t.Fatalf("begin bulk: %v", err)
	}

	for i := 0; i < 3; i++ {
		personID := uuid.New()
		if err := svc.RecordAction(context.Background(), "person", personID, "created by upload", nil, &bulk.ID); err != nil {
			t.Fatalf("record action: %v", err)
		}
	}

	linked, err := actions.ListForBulk(context.Background(), bulk.ID)
	if err != nil {
		t.Fatalf("list for bulk: %v", err)
	}
	if len(linked) != 3 {
		t.Errorf("expected 3 actions under the bulk grouping, got %d", len(linked))
	}
}
