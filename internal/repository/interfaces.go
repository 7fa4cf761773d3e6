package repository

import (
	"context"
	"errors"

	"membership-api/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ListPage bounds a list query. Page is 1-based; PageSize <= 0 means
// unbounded (used by exports, which emit the full result set).
type ListPage struct {
	Page     int
	PageSize int
}

// PersonRow is one person list row with the relation values the list
// and export views render. The multi-row relations arrive pre-joined
// as display strings.
type PersonRow struct {
	Person           domain.Person                  `json:"person"`
	MembershipStatus string                         `json:"membership_status"`
	IsQuorum         bool                           `json:"is_quorum"`
	Positions        []string                       `json:"positions"`
	SubCommittees    []string                       `json:"subcommittees"`
	VoiceNumbers     []string                       `json:"voice_numbers"`
	TextNumbers      []string                       `json:"text_numbers"`
	EmailAddresses   []string                       `json:"email_addresses"`
	VotingAddress    string                         `json:"voting_address"`
	LocationNames    map[domain.LocationKind]string `json:"location_names"`
}

// EventRow is one event list row.
type EventRow struct {
	Event         domain.Event `json:"event"`
	EventTypeName string       `json:"event_type_name"`
	Participants  int          `json:"participants"`
}

// SavedListRow is one saved list row.
type SavedListRow struct {
	SavedList domain.SavedList `json:"saved_list"`
	Members   int              `json:"members"`
}

// CommunicationEventRow is one communication log row with the names of
// its referenced records resolved for display.
type CommunicationEventRow struct {
	Communication domain.CommunicationEvent `json:"communication"`
	TargetName    string                    `json:"target_name"`
	VolunteerName string                    `json:"volunteer_name"`
	BulkName      string                    `json:"bulk_name"`
	ResultName    string                    `json:"result_name"`
}

// BulkCommunicationRow is one bulk communication list row.
type BulkCommunicationRow struct {
	Bulk   domain.BulkCommunication `json:"bulk_communication"`
	Events int                      `json:"events"`
}

// VotingAddressRow is one voting address list row.
type VotingAddressRow struct {
	Address       domain.VotingAddress           `json:"address"`
	LocationNames map[domain.LocationKind]string `json:"location_names"`
}

// PersonRepository persists people. List queries run against the
// non-deleted collection unless the spec filters on is_deleted
// explicitly.
type PersonRepository interface {
	Create(ctx context.Context, person domain.Person) (domain.Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Person, error)
	GetByVoterID(ctx context.Context, voterID string) (domain.Person, error)
	GetRow(ctx context.Context, id uuid.UUID) (PersonRow, error)
	List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]PersonRow, int, error)
	Update(ctx context.Context, person domain.Person) (domain.Person, error)
	// Delete soft-deletes on the first call and physically removes an
	// already-flagged person on the second.
	Delete(ctx context.Context, id uuid.UUID) error

	AppendMembershipHistory(ctx context.Context, entry domain.MembershipHistory) error
	ListMembershipHistory(ctx context.Context, personID uuid.UUID) ([]domain.MembershipHistory, error)

	ReplaceContacts(ctx context.Context, personID uuid.UUID, voice []domain.ContactVoice, text []domain.ContactText, email []domain.ContactEmail) error
	ReplaceSubMemberships(ctx context.Context, personID uuid.UUID, memberships []domain.SubMembership) error
	// EnsureVoiceNumber adds a voice contact unless the person already
	// has one with the same number.
	EnsureVoiceNumber(ctx context.Context, personID uuid.UUID, number string) error
}

// EventRepository persists events and participation.
type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]EventRow, int, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceParticipation(ctx context.Context, eventID uuid.UUID, entries []domain.Participation) error
	ListParticipation(ctx context.Context, eventID uuid.UUID) ([]domain.Participation, error)
}

// SubCommitteeRepository persists subcommittees and positions.
type SubCommitteeRepository interface {
	Create(ctx context.Context, sc domain.SubCommittee) (domain.SubCommittee, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.SubCommittee, error)
	List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]domain.SubCommittee, int, error)
	Update(ctx context.Context, sc domain.SubCommittee) (domain.SubCommittee, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPositions(ctx context.Context) ([]domain.Position, error)
}

// VotingAddressRepository persists voting addresses.
type VotingAddressRepository interface {
	Create(ctx context.Context, addr domain.VotingAddress) (domain.VotingAddress, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.VotingAddress, error)
	// GetOrCreateByStreet returns the address with the exact street
	// text, creating it when absent.
	GetOrCreateByStreet(ctx context.Context, streetAddress string) (domain.VotingAddress, error)
	List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]VotingAddressRow, int, error)
	Update(ctx context.Context, addr domain.VotingAddress) (domain.VotingAddress, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SavedListRepository persists saved lists and their memberships.
type SavedListRepository interface {
	Create(ctx context.Context, list domain.SavedList) (domain.SavedList, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.SavedList, error)
	List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]SavedListRow, int, error)
	Update(ctx context.Context, list domain.SavedList) (domain.SavedList, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceMembers(ctx context.Context, listID uuid.UUID, personIDs []uuid.UUID) error
	ListMembers(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
}

// CommunicationRepository persists the communication log and the bulk
// communications grouping it.
type CommunicationRepository interface {
	Create(ctx context.Context, event domain.CommunicationEvent) (domain.CommunicationEvent, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.CommunicationEvent, error)
	List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]CommunicationEventRow, int, error)
	Update(ctx context.Context, event domain.CommunicationEvent) (domain.CommunicationEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateBulk(ctx context.Context, bulk domain.BulkCommunication) (domain.BulkCommunication, error)
	GetBulkByID(ctx context.Context, id uuid.UUID) (domain.BulkCommunication, error)
	ListBulks(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]BulkCommunicationRow, int, error)
	UpdateBulk(ctx context.Context, bulk domain.BulkCommunication) (domain.BulkCommunication, error)
	DeleteBulk(ctx context.Context, id uuid.UUID) error
	ListResults(ctx context.Context) ([]domain.CommunicationResult, error)
}

// LookupRepository serves the small reference tables that populate
// filter dropdowns and resolve import-time name lookups.
type LookupRepository interface {
	LocationByName(ctx context.Context, kind domain.LocationKind, name string) (domain.Location, error)
	CreateLocation(ctx context.Context, loc domain.Location) (domain.Location, error)
	UpdateLocation(ctx context.Context, loc domain.Location) (domain.Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
	ListLocations(ctx context.Context, kind domain.LocationKind) ([]domain.Location, error)
	ListMembershipStatuses(ctx context.Context) ([]domain.MembershipStatus, error)
	ListMembershipTypes(ctx context.Context) ([]domain.MembershipType, error)
	ListEventTypes(ctx context.Context) ([]domain.EventType, error)
	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
}

// VistaRepository persists saved query specifications.
type VistaRepository interface {
	// Save upserts by (user, model, name). When the vista is marked
	// default, any prior default for the pair is cleared in the same
	// transaction.
	Save(ctx context.Context, vista domain.Vista) (domain.Vista, error)
	GetByName(ctx context.Context, userID uuid.UUID, modelName, name string) (domain.Vista, error)
	GetDefault(ctx context.Context, userID uuid.UUID, modelName string) (domain.Vista, error)
	// Latest returns the most recently modified vista for the pair.
	Latest(ctx context.Context, userID uuid.UUID, modelName string) (domain.Vista, error)
	List(ctx context.Context, userID uuid.UUID, modelName string) ([]domain.Vista, error)
	// Touch bumps the modified stamp so last-used resolution tracks use.
	Touch(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID, modelName, name string) error
}

// HistoryRepository stores immutable per-field change rows.
type HistoryRepository interface {
	Append(ctx context.Context, entries []domain.HistoryEntry) error
	ListForObject(ctx context.Context, modelName string, objectID uuid.UUID) ([]domain.HistoryEntry, error)
}

// RecordActionRepository stores audit actions and their bulk groupings.
type RecordActionRepository interface {
	Record(ctx context.Context, action domain.RecordAction) (domain.RecordAction, error)
	CreateBulk(ctx context.Context, bulk domain.BulkRecordAction) (domain.BulkRecordAction, error)
	ListForBulk(ctx context.Context, bulkID uuid.UUID) ([]domain.RecordAction, error)
}
