// Package export renders resolved list results as flat tabular files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"membership-api/internal/domain"
	"membership-api/internal/repository"

	"github.com/xuri/excelize/v2"
)

// Column pairs a selectable column key with its header text.
type Column struct {
	Key    string
	Header string
}

// Table is a fully materialised export: a header row and one row per
// record, already narrowed to the selected columns.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Headers returns the header row.
func (t Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	return headers
}

// WriteCSV streams the table as comma-delimited text.
func WriteCSV(w io.Writer, t Table) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(t.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return nil
}

// WriteXLSX streams the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// personColumns is the full person export column set in its fixed order.
var personColumns = []Column{
	{Key: "name_last", Header: "Name Last"},
	{Key: "name_first", Header: "Name First"},
	{Key: "is_quorum", Header: "Quorum"},
	{Key: "membership_status", Header: "Membership Status"},
	{Key: "positions", Header: "Positions"},
	{Key: "submemberships", Header: "SubCommittees"},
	{Key: "contactvoice", Header: "Voice"},
	{Key: "contacttext", Header: "Text"},
	{Key: "contactemail", Header: "Email"},
	{Key: "voting_address", Header: "Voting Address"},
	{Key: "voting_address.locationcity", Header: "City"},
	{Key: "voting_address.locationcongress", Header: "Congress"},
	{Key: "voting_address.locationstatesenate", Header: "Senate"},
	{Key: "voting_address.locationstatehouse", Header: "House"},
	{Key: "voting_address.locationmagistrate", Header: "Magistrate"},
	{Key: "voting_address.locationborough", Header: "Borough"},
	{Key: "voting_address.locationprecinct", Header: "Precinct"},
}

// PersonTable flattens person rows into an export table. An empty
// showColumns selects every column; otherwise only the named columns
// are emitted, in catalog order.
func PersonTable(rows []repository.PersonRow, showColumns []string) Table {
	columns := narrow(personColumns, showColumns)

	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = personValue(row, col.Key)
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

func personValue(row repository.PersonRow, key string) string {
	switch key {
	case "name_last":
		return row.Person.NameLast
	case "name_first":
		return row.Person.NameFirst
	case "is_quorum":
		return formatBool(row.IsQuorum)
	case "membership_status":
		return row.MembershipStatus
	case "positions":
		return joinList(row.Positions)
	case "submemberships":
		return joinList(row.SubCommittees)
	case "contactvoice":
		return joinList(row.VoiceNumbers)
	case "contacttext":
		return joinList(row.TextNumbers)
	case "contactemail":
		return joinList(row.EmailAddresses)
	case "voting_address":
		return row.VotingAddress
	case "voting_address.locationcity":
		return row.LocationNames[domain.LocationKindCity]
	case "voting_address.locationcongress":
		return row.LocationNames[domain.LocationKindCongress]
	case "voting_address.locationstatesenate":
		return row.LocationNames[domain.LocationKindStateSenate]
	case "voting_address.locationstatehouse":
		return row.LocationNames[domain.LocationKindStateHouse]
	case "voting_address.locationmagistrate":
		return row.LocationNames[domain.LocationKindMagistrate]
	case "voting_address.locationborough":
		return row.LocationNames[domain.LocationKindBorough]
	case "voting_address.locationprecinct":
		return row.LocationNames[domain.LocationKindPrecinct]
	}
	return ""
}

var eventColumns = []Column{
	{Key: "name", Header: "Name"},
	{Key: "event_type", Header: "Event Type"},
	{Key: "when", Header: "When"},
	{Key: "participants", Header: "Participants"},
}

// EventTable flattens event rows into an export table.
func EventTable(rows []repository.EventRow, showColumns []string) Table {
	columns := narrow(eventColumns, showColumns)

	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			switch col.Key {
			case "name":
				record[i] = row.Event.Name
			case "event_type":
				record[i] = row.EventTypeName
			case "when":
				record[i] = formatTime(row.Event.HappenedAt)
			case "participants":
				record[i] = fmt.Sprintf("%d", row.Participants)
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

var savedListColumns = []Column{
	{Key: "name", Header: "Name"},
	{Key: "when", Header: "Created"},
	{Key: "members", Header: "Members"},
}

// SavedListTable flattens saved list rows into an export table.
func SavedListTable(rows []repository.SavedListRow, showColumns []string) Table {
	columns := narrow(savedListColumns, showColumns)

	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			switch col.Key {
			case "name":
				record[i] = row.SavedList.Name
			case "when":
				record[i] = row.SavedList.CreatedAt.Format("2006-01-02")
			case "members":
				record[i] = fmt.Sprintf("%d", row.Members)
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

var communicationColumns = []Column{
	{Key: "target", Header: "Target"},
	{Key: "volunteer", Header: "Volunteer"},
	{Key: "details", Header: "Details"},
	{Key: "bulk_communication", Header: "Bulk Communication"},
	{Key: "result", Header: "Result"},
	{Key: "when", Header: "When"},
}

// CommunicationTable flattens communication log rows into an export
// table.
func CommunicationTable(rows []repository.CommunicationEventRow, showColumns []string) Table {
	columns := narrow(communicationColumns, showColumns)

	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			switch col.Key {
			case "target":
				record[i] = row.TargetName
			case "volunteer":
				record[i] = row.VolunteerName
			case "details":
				record[i] = row.Communication.Details
			case "bulk_communication":
				record[i] = row.BulkName
			case "result":
				record[i] = row.ResultName
			case "when":
				record[i] = row.Communication.CreatedAt.Format("2006-01-02")
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

var bulkCommunicationColumns = []Column{
	{Key: "name", Header: "Name"},
	{Key: "when", Header: "Created"},
	{Key: "events", Header: "Events"},
}

// BulkCommunicationTable flattens bulk communication rows into an
// export table.
func BulkCommunicationTable(rows []repository.BulkCommunicationRow, showColumns []string) Table {
	columns := narrow(bulkCommunicationColumns, showColumns)

	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			switch col.Key {
			case "name":
				record[i] = row.Bulk.Name
			case "when":
				record[i] = row.Bulk.CreatedAt.Format("2006-01-02")
			case "events":
				record[i] = fmt.Sprintf("%d", row.Events)
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

var subCommitteeColumns = []Column{
	{Key: "name", Header: "Name"},
	{Key: "rank", Header: "Rank"},
}

// SubCommitteeTable flattens subcommittees into an export table.
func SubCommitteeTable(rows []domain.SubCommittee, showColumns []string) Table {
	columns := narrow(subCommitteeColumns, showColumns)

	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, sc := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			switch col.Key {
			case "name":
				record[i] = sc.Name
			case "rank":
				record[i] = fmt.Sprintf("%d", sc.RankNumber)
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

var votingAddressColumns = []Column{
	{Key: "street_address", Header: "Street Address"},
	{Key: "locationcity", Header: "City"},
	{Key: "locationcongress", Header: "Congress"},
	{Key: "locationstatesenate", Header: "Senate"},
	{Key: "locationstatehouse", Header: "House"},
	{Key: "locationmagistrate", Header: "Magistrate"},
	{Key: "locationborough", Header: "Borough"},
	{Key: "locationprecinct", Header: "Precinct"},
}

// VotingAddressTable flattens voting address rows into an export table.
func VotingAddressTable(rows []repository.VotingAddressRow, showColumns []string) Table {
	columns := narrow(votingAddressColumns, showColumns)

	kinds := map[string]domain.LocationKind{
		"locationcity":        domain.LocationKindCity,
		"locationcongress":    domain.LocationKindCongress,
		"locationstatesenate": domain.LocationKindStateSenate,
		"locationstatehouse":  domain.LocationKindStateHouse,
		"locationmagistrate":  domain.LocationKindMagistrate,
		"locationborough":     domain.LocationKindBorough,
		"locationprecinct":    domain.LocationKindPrecinct,
	}

	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			if col.Key == "street_address" {
				record[i] = row.Address.StreetAddress
				continue
			}
			if kind, ok := kinds[col.Key]; ok {
				record[i] = row.LocationNames[kind]
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

// narrow keeps the declared column order while restricting to the
// selected keys. Unknown keys are ignored; an empty selection keeps
// everything.
func narrow(all []Column, showColumns []string) []Column {
	if len(showColumns) == 0 {
		return all
	}
	selected := make(map[string]struct{}, len(showColumns))
	for _, key := range showColumns {
		selected[key] = struct{}{}
	}
	columns := make([]Column, 0, len(all))
	for _, col := range all {
		if _, ok := selected[col.Key]; ok {
			columns = append(columns, col)
		}
	}
	return columns
}

// joinList renders a multi-value relation as a comma separated string
// with no trailing delimiter.
func joinList(values []string) string {
	return strings.Join(values, ", ")
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
