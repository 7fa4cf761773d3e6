package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"membership-api/internal/domain"
	"membership-api/internal/repository"

	"github.com/xuri/excelize/v2"
)

func samplePersonRows() []repository.PersonRow {
	return []repository.PersonRow{
		{
			Person:           domain.Person{NameLast: "Smith", NameFirst: "Jane"},
			MembershipStatus: "Regular: Good Standing",
			IsQuorum:         true,
			Positions:        []string{"Chair", "Treasurer"},
			SubCommittees:    []string{"Outreach"},
			VoiceNumbers:     []string{"555-0100"},
			EmailAddresses:   []string{"jane@example.org"},
			VotingAddress:    "12 Main St",
			LocationNames: map[domain.LocationKind]string{
				domain.LocationKindCity: "Springfield",
			},
		},
		{
			Person: domain.Person{NameLast: "Jones", NameFirst: "Sam"},
		},
	}
}

func TestPersonTableAllColumns(t *testing.T) {
	table := PersonTable(samplePersonRows(), nil)

	if len(table.Columns) != len(personColumns) {
		t.Fatalf("empty selection should keep all %d columns, got %d", len(personColumns), len(table.Columns))
	}
	if table.Headers()[0] != "Name Last" {
		t.Errorf("unexpected first header: %q", table.Headers()[0])
	}

	row := table.Rows[0]
	if row[0] != "Smith" || row[1] != "Jane" {
		t.Errorf("name columns wrong: %v", row[:2])
	}
	if row[2] != "true" {
		t.Errorf("quorum column wrong: %q", row[2])
	}
	if row[4] != "Chair, Treasurer" {
		t.Errorf("multi-value join must use comma-space with no trailing delimiter: %q", row[4])
	}
	if row[10] != "Springfield" {
		t.Errorf("city column wrong: %q", row[10])
	}
}

func TestPersonTableShowColumnsNarrows(t *testing.T) {
	table := PersonTable(samplePersonRows(), []string{"name_last", "name_first"})

	if len(table.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(table.Columns))
	}
	if table.Headers()[0] != "Name Last" || table.Headers()[1] != "Name First" {
		t.Errorf("unexpected headers: %v", table.Headers())
	}
	for _, row := range table.Rows {
		if len(row) != 2 {
			t.Errorf("row width must match selection, got %d", len(row))
		}
	}
}

func TestPersonTableEmptyRelationsRenderEmpty(t *testing.T) {
	table := PersonTable(samplePersonRows(), nil)

	row := table.Rows[1]
	for i, col := range table.Columns {
		switch col.Key {
		case "name_last":
			if row[i] != "Jones" {
				t.Errorf("name_last = %q", row[i])
			}
		case "name_first":
			if row[i] != "Sam" {
				t.Errorf("name_first = %q", row[i])
			}
		case "is_quorum":
			if row[i] != "false" {
				t.Errorf("is_quorum = %q", row[i])
			}
		default:
			if row[i] != "" {
				t.Errorf("column %s should be empty for a bare person, got %q", col.Key, row[i])
			}
		}
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	table := PersonTable(samplePersonRows(), []string{"name_last", "name_first"})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "Name Last" {
		t.Errorf("header row wrong: %v", records[0])
	}
	if records[1][0] != "Smith" || records[2][0] != "Jones" {
		t.Errorf("data rows wrong: %v %v", records[1], records[2])
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	table := PersonTable(samplePersonRows(), []string{"name_last", "name_first"})

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, table); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Name Last" || rows[1][0] != "Smith" {
		t.Errorf("unexpected workbook content: %v", rows[:2])
	}
}

func TestEventTable(t *testing.T) {
	rows := []repository.EventRow{
		{Event: domain.Event{Name: "Annual Meeting"}, EventTypeName: "Convention", Participants: 42},
	}
	table := EventTable(rows, nil)

	if table.Rows[0][0] != "Annual Meeting" || table.Rows[0][1] != "Convention" {
		t.Errorf("unexpected event row: %v", table.Rows[0])
	}
	if table.Rows[0][2] != "" {
		t.Errorf("nil date should render empty, got %q", table.Rows[0][2])
	}
	if table.Rows[0][3] != "42" {
		t.Errorf("participant count wrong: %q", table.Rows[0][3])
	}
}

func TestCommunicationTable(t *testing.T) {
	rows := []repository.CommunicationEventRow{
		{
			Communication: domain.CommunicationEvent{Details: "left voicemail"},
			TargetName:    "Jane Smith",
			VolunteerName: "Pat Jones",
			BulkName:      "Spring phone bank",
			ResultName:    "Left message",
		},
	}
	table := CommunicationTable(rows, nil)

	want := []string{"Jane Smith", "Pat Jones", "left voicemail", "Spring phone bank", "Left message"}
	for i, v := range want {
		if table.Rows[0][i] != v {
			t.Errorf("column %d = %q, want %q", i, table.Rows[0][i], v)
		}
	}

	narrowed := CommunicationTable(rows, []string{"target", "result"})
	if len(narrowed.Columns) != 2 || narrowed.Rows[0][1] != "Left message" {
		t.Errorf("narrowed table wrong: %+v", narrowed)
	}
}

func TestNarrowIgnoresUnknownKeys(t *testing.T) {
	table := PersonTable(samplePersonRows(), []string{"name_last", "no_such_column"})

	if len(table.Columns) != 1 {
		t.Errorf("unknown keys must be ignored, got %d columns", len(table.Columns))
	}
}

func TestJoinList(t *testing.T) {
	if got := joinList(nil); got != "" {
		t.Errorf("nil join = %q", got)
	}
	if got := joinList([]string{"one"}); got != "one" {
		t.Errorf("single join = %q", got)
	}
	if got := joinList([]string{"one", "two"}); got != "one, two" {
		t.Errorf("double join = %q", got)
	}
}
