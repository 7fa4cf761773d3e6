// Package ingestion imports person records from uploaded CSV or XLSX
// files, mapping allow-listed columns onto fields and references.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"membership-api/internal/domain"
	"membership-api/internal/history"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

// allowedColumns is the header allow-list. The first column is always
// the voter id and is not header-matched; any other header outside this
// set is ignored.
var allowedColumns = map[string]struct{}{
	"full_name":         {},
	"name_prefix":       {},
	"name_last":         {},
	"name_first":        {},
	"name_middles":      {},
	"name_common":       {},
	"name_suffix":       {},
	"voting_address":    {},
	"street_address":    {},
	"membership_status": {},
	"city":              {},
	"congress":          {},
	"statesenate":       {},
	"statehouse":        {},
	"magistrate":        {},
	"borough":           {},
	"precinct":          {},
	"phone":             {},
}

var locationColumns = map[string]domain.LocationKind{
	"city":        domain.LocationKindCity,
	"congress":    domain.LocationKindCongress,
	"statesenate": domain.LocationKindStateSenate,
	"statehouse":  domain.LocationKindStateHouse,
	"magistrate":  domain.LocationKindMagistrate,
	"borough":     domain.LocationKindBorough,
	"precinct":    domain.LocationKindPrecinct,
}

// Service imports person uploads. Each row commits on its own; a bad
// row is logged and skipped without rolling back earlier rows.
type Service struct {
	persons   repository.PersonRepository
	addresses repository.VotingAddressRepository
	lookups   repository.LookupRepository
	history   *history.Service
}

// NewService wires an ingestion service.
func NewService(
	persons repository.PersonRepository,
	addresses repository.VotingAddressRepository,
	lookups repository.LookupRepository,
	historySvc *history.Service,
) *Service {
	return &Service{
		persons:   persons,
		addresses: addresses,
		lookups:   lookups,
		history:   historySvc,
	}
}

// Request describes one person upload.
type Request struct {
	FileName string
	Data     io.Reader
	// Overwrite updates existing people matched by voter id; without
	// it a matched row is noted but left unchanged.
	Overwrite bool
	UserID    *uuid.UUID
}

// Summary reports what an upload did. Every touched person is linked to
// BulkActionID, so the list view can show exactly who the upload hit.
type Summary struct {
	TotalRows    int
	Created      int
	Updated      int
	Unchanged    int
	Failed       int
	BulkActionID uuid.UUID
}

// Ingest reads the upload and applies it row by row.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	var summary Summary

	if req.Data == nil {
		return summary, errors.New("data reader is required")
	}
	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return summary, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return summary, errors.New("file is empty")
	}

	table, err := parseTable(req.FileName, payload)
	if err != nil {
		return summary, err
	}

	// Column 0 carries the voter id regardless of its header text.
	// Header order is preserved so columns apply left to right.
	var columns []columnRef
	for col := 1; col < len(table.header); col++ {
		name := strings.TrimSpace(table.header[col])
		if _, ok := allowedColumns[name]; ok {
			columns = append(columns, columnRef{name: name, col: col})
		}
	}

	statuses, err := s.statusIndex(ctx)
	if err != nil {
		return summary, err
	}

	bulk, err := s.history.BeginBulk(ctx, "CSV Upload "+req.FileName)
	if err != nil {
		return summary, err
	}
	summary.BulkActionID = bulk.ID
	summary.TotalRows = len(table.rows)

	for i, row := range table.rows {
		if err := s.ingestRow(ctx, req, row, columns, statuses, bulk.ID, &summary); err != nil {
			log.Printf("[ingest] row %d skipped: %v", i+2, err)
			summary.Failed++
		}
	}

	log.Printf("[ingest] %s: %d rows, %d created, %d updated, %d unchanged, %d failed",
		req.FileName, summary.TotalRows, summary.Created, summary.Updated, summary.Unchanged, summary.Failed)
	return summary, nil
}

// statusIndex keys membership statuses by "name typename" lowercased,
// the spelling upload files use.
func (s *Service) statusIndex(ctx context.Context) (map[string]domain.MembershipStatus, error) {
	all, err := s.lookups.ListMembershipStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership statuses: %w", err)
	}
	index := make(map[string]domain.MembershipStatus, len(all))
	for _, status := range all {
		key := strings.ToLower(strings.TrimSpace(status.Name + " " + status.TypeName))
		index[key] = status
	}
	return index, nil
}

type columnRef struct {
	name string
	col  int
}

func (s *Service) ingestRow(
	ctx context.Context,
	req Request,
	row []string,
	columns []columnRef,
	statuses map[string]domain.MembershipStatus,
	bulkID uuid.UUID,
	summary *Summary,
) error {
	cell := func(col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	voterID := cell(0)

	var (
		person  domain.Person
		created bool
		err     error
	)
	if voterID != "" {
		person, err = s.persons.GetByVoterID(ctx, voterID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			person, err = s.persons.Create(ctx, domain.Person{ID: uuid.New(), VBVoterID: voterID})
			if err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		}
	} else {
		person, err = s.persons.Create(ctx, domain.Person{ID: uuid.New()})
		if err != nil {
			return err
		}
		created = true
	}

	details := "CSV Created. "
	if !created {
		if !req.Overwrite {
			summary.Unchanged++
			return s.history.RecordAction(ctx, "person", person.ID, "CSV Noted Not Changed. ", req.UserID, &bulkID)
		}
		details = "CSV Updated. "
	}

	initial := person.FieldValues()
	priorStatus := person.MembershipStatusID

	var (
		streetAddress string
		locations     = map[domain.LocationKind]uuid.UUID{}
		phone         string
	)

	for _, ref := range columns {
		name := ref.name
		value := cell(ref.col)
		if value == "" {
			continue
		}
		details += name + ": " + value + "; "

		switch name {
		case "full_name":
			applyFullName(&person, value)
		case "name_prefix":
			person.NamePrefix = value
		case "name_last":
			person.NameLast = value
		case "name_first":
			person.NameFirst = value
		case "name_middles":
			person.NameMiddles = value
		case "name_common":
			person.NameCommon = value
		case "name_suffix":
			person.NameSuffix = value
		case "voting_address", "street_address":
			streetAddress = value
		case "phone":
			phone = value
		case "membership_status":
			if status, ok := statuses[strings.ToLower(value)]; ok {
				id := status.ID
				person.MembershipStatusID = &id
			}
		default:
			if kind, ok := locationColumns[name]; ok {
				loc, lookupErr := s.lookups.LocationByName(ctx, kind, value)
				if lookupErr != nil {
					// Unknown location names skip just that field.
					if !errors.Is(lookupErr, repository.ErrNotFound) {
						return lookupErr
					}
					continue
				}
				locations[kind] = loc.ID
			}
		}
	}

	// A resolved location is enough to warrant an address row, with or
	// without street text: "vanid,full_name,city" files carry no street
	// column at all.
	if streetAddress != "" || len(locations) > 0 {
		var addr domain.VotingAddress
		switch {
		case streetAddress != "":
			if addr, err = s.addresses.GetOrCreateByStreet(ctx, streetAddress); err != nil {
				return err
			}
		case person.VotingAddressID != nil:
			if addr, err = s.addresses.GetByID(ctx, *person.VotingAddressID); err != nil {
				return err
			}
		default:
			if addr, err = s.addresses.Create(ctx, domain.VotingAddress{ID: uuid.New()}); err != nil {
				return err
			}
		}
		if len(locations) > 0 {
			for kind, id := range locations {
				addr.SetLocation(kind, id)
			}
			if addr, err = s.addresses.Update(ctx, addr); err != nil {
				return err
			}
		}
		id := addr.ID
		person.VotingAddressID = &id
	}

	if person, err = s.persons.Update(ctx, person); err != nil {
		return err
	}

	if phone != "" {
		if err := s.persons.EnsureVoiceNumber(ctx, person.ID, phone); err != nil {
			return err
		}
	}

	if statusChanged(priorStatus, person.MembershipStatusID) {
		entry := domain.MembershipHistory{PersonID: person.ID, MembershipStatusID: person.MembershipStatusID}
		if err := s.persons.AppendMembershipHistory(ctx, entry); err != nil {
			return err
		}
	}

	if _, err := s.history.RecordChanges(ctx, "person", person.ID, req.UserID, initial, person.FieldValues()); err != nil {
		return err
	}
	if err := s.history.RecordAction(ctx, "person", person.ID, details, req.UserID, &bulkID); err != nil {
		return err
	}

	if created {
		summary.Created++
	} else {
		summary.Updated++
	}
	return nil
}

// applyFullName splits "Last, First Middles" into name parts. A value
// without a comma sets only the last name.
func applyFullName(person *domain.Person, value string) {
	last, rest, found := strings.Cut(value, ", ")
	person.NameLast = last
	if !found {
		return
	}
	first, middles, hasMiddles := strings.Cut(rest, " ")
	person.NameFirst = first
	if hasMiddles {
		person.NameMiddles = middles
	}
}

func statusChanged(before, after *uuid.UUID) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	default:
		return *before != *after
	}
}
