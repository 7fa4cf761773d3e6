// Package api exposes the membership data over HTTP. List endpoints
// resolve their query through the vista service, so a plain GET replays
// the caller's last-used filters while form submissions define new ones.
package api

import (
	"net/http"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"
	"membership-api/internal/history"
	"membership-api/internal/ingestion"
	"membership-api/internal/repository"
	"membership-api/internal/vista"
)

// Server holds the wired repositories and services behind the HTTP API.
type Server struct {
	persons    repository.PersonRepository
	events     repository.EventRepository
	committees repository.SubCommitteeRepository
	addresses  repository.VotingAddressRepository
	savedLists repository.SavedListRepository
	comms      repository.CommunicationRepository
	lookups    repository.LookupRepository
	vistaRepo  repository.VistaRepository

	vistas  *vista.Service
	history *history.Service
	ingest  *ingestion.Service

	settings map[string]vista.Settings
}

// NewServer wires the API server.
func NewServer(
	persons repository.PersonRepository,
	events repository.EventRepository,
	committees repository.SubCommitteeRepository,
	addresses repository.VotingAddressRepository,
	savedLists repository.SavedListRepository,
	comms repository.CommunicationRepository,
	lookups repository.LookupRepository,
	vistaRepo repository.VistaRepository,
	vistaSvc *vista.Service,
	historySvc *history.Service,
	ingestSvc *ingestion.Service,
) *Server {
	return &Server{
		persons:    persons,
		events:     events,
		committees: committees,
		addresses:  addresses,
		savedLists: savedLists,
		comms:      comms,
		lookups:    lookups,
		vistaRepo:  vistaRepo,
		vistas:     vistaSvc,
		history:    historySvc,
		ingest:     ingestSvc,
		settings:   defaultSettings(),
	}
}

// defaultSettings builds the per-model vista settings with each list
// view's built-in fallback spec.
func defaultSettings() map[string]vista.Settings {
	return map[string]vista.Settings{
		"person": {
			ModelName: "person",
			Catalog:   catalog.Person(),
			Defaults: domain.QuerySpec{
				Filters: []domain.FilterClause{
					{FieldName: "membership_status__is_member", Op: domain.OpExact, Values: []string{"True"}},
				},
				OrderBy:  []string{"name_last", "name_common"},
				PageSize: 30,
			},
			MaxSearchKeys:   5,
			DefaultPageSize: 30,
		},
		"event": {
			ModelName: "event",
			Catalog:   catalog.Event(),
			Defaults: domain.QuerySpec{
				OrderBy:  []string{"-when"},
				PageSize: 30,
			},
			MaxSearchKeys:   5,
			DefaultPageSize: 30,
		},
		"subcommittee": {
			ModelName: "subcommittee",
			Catalog:   catalog.SubCommittee(),
			Defaults: domain.QuerySpec{
				OrderBy:  []string{"-rank", "name"},
				PageSize: 30,
			},
			MaxSearchKeys:   5,
			DefaultPageSize: 30,
		},
		"votingaddress": {
			ModelName: "votingaddress",
			Catalog:   catalog.VotingAddress(),
			Defaults: domain.QuerySpec{
				OrderBy:  []string{"street_address"},
				PageSize: 30,
			},
			MaxSearchKeys:   5,
			DefaultPageSize: 30,
		},
		"savedlist": {
			ModelName: "savedlist",
			Catalog:   catalog.SavedList(),
			Defaults: domain.QuerySpec{
				OrderBy:  []string{"-when"},
				PageSize: 30,
			},
			MaxSearchKeys:   5,
			DefaultPageSize: 30,
		},
		"communicationevent": {
			ModelName: "communicationevent",
			Catalog:   catalog.CommunicationEvent(),
			Defaults: domain.QuerySpec{
				OrderBy:  []string{"-when", "target"},
				PageSize: 30,
			},
			MaxSearchKeys:   5,
			DefaultPageSize: 30,
		},
		"bulkcommunication": {
			ModelName: "bulkcommunication",
			Catalog:   catalog.BulkCommunication(),
			Defaults: domain.QuerySpec{
				OrderBy:  []string{"-when"},
				PageSize: 30,
			},
			MaxSearchKeys:   5,
			DefaultPageSize: 30,
		},
	}
}

// Routes builds the request mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /people", s.listPeople)
	mux.HandleFunc("POST /people", s.listPeople)
	mux.HandleFunc("POST /people/new", s.createPerson)
	mux.HandleFunc("GET /people/export.csv", s.exportPeopleCSV)
	mux.HandleFunc("GET /people/export.xlsx", s.exportPeopleXLSX)
	mux.HandleFunc("POST /people/upload", s.uploadPeople)
	mux.HandleFunc("GET /people/{id}", s.getPerson)
	mux.HandleFunc("PUT /people/{id}", s.updatePerson)
	mux.HandleFunc("DELETE /people/{id}", s.deletePerson)
	mux.HandleFunc("GET /people/{id}/history", s.personHistory)
	mux.HandleFunc("PUT /people/{id}/contacts", s.replaceContacts)
	mux.HandleFunc("PUT /people/{id}/submemberships", s.replaceSubMemberships)

	mux.HandleFunc("GET /events", s.listEvents)
	mux.HandleFunc("POST /events", s.listEvents)
	mux.HandleFunc("POST /events/new", s.createEvent)
	mux.HandleFunc("GET /events/export.csv", s.exportEventsCSV)
	mux.HandleFunc("GET /events/export.xlsx", s.exportEventsXLSX)
	mux.HandleFunc("GET /events/{id}", s.getEvent)
	mux.HandleFunc("PUT /events/{id}", s.updateEvent)
	mux.HandleFunc("DELETE /events/{id}", s.deleteEvent)
	mux.HandleFunc("PUT /events/{id}/participants", s.replaceParticipants)
	mux.HandleFunc("GET /events/{id}/participants", s.listParticipants)

	mux.HandleFunc("GET /subcommittees", s.listSubCommittees)
	mux.HandleFunc("POST /subcommittees", s.listSubCommittees)
	mux.HandleFunc("POST /subcommittees/new", s.createSubCommittee)
	mux.HandleFunc("GET /subcommittees/export.csv", s.exportSubCommitteesCSV)
	mux.HandleFunc("GET /subcommittees/export.xlsx", s.exportSubCommitteesXLSX)
	mux.HandleFunc("GET /subcommittees/{id}", s.getSubCommittee)
	mux.HandleFunc("PUT /subcommittees/{id}", s.updateSubCommittee)
	mux.HandleFunc("DELETE /subcommittees/{id}", s.deleteSubCommittee)
	mux.HandleFunc("GET /positions", s.listPositions)

	mux.HandleFunc("GET /voting-addresses", s.listVotingAddresses)
	mux.HandleFunc("POST /voting-addresses", s.listVotingAddresses)
	mux.HandleFunc("POST /voting-addresses/new", s.createVotingAddress)
	mux.HandleFunc("GET /voting-addresses/export.csv", s.exportVotingAddressesCSV)
	mux.HandleFunc("GET /voting-addresses/export.xlsx", s.exportVotingAddressesXLSX)
	mux.HandleFunc("GET /voting-addresses/{id}", s.getVotingAddress)
	mux.HandleFunc("PUT /voting-addresses/{id}", s.updateVotingAddress)
	mux.HandleFunc("DELETE /voting-addresses/{id}", s.deleteVotingAddress)

	mux.HandleFunc("GET /saved-lists", s.listSavedLists)
	mux.HandleFunc("POST /saved-lists", s.listSavedLists)
	mux.HandleFunc("POST /saved-lists/new", s.createSavedList)
	mux.HandleFunc("GET /saved-lists/export.csv", s.exportSavedListsCSV)
	mux.HandleFunc("GET /saved-lists/export.xlsx", s.exportSavedListsXLSX)
	mux.HandleFunc("GET /saved-lists/{id}", s.getSavedList)
	mux.HandleFunc("PUT /saved-lists/{id}", s.updateSavedList)
	mux.HandleFunc("DELETE /saved-lists/{id}", s.deleteSavedList)
	mux.HandleFunc("PUT /saved-lists/{id}/members", s.replaceSavedListMembers)
	mux.HandleFunc("GET /saved-lists/{id}/members", s.listSavedListMembers)

	mux.HandleFunc("GET /communications", s.listCommunications)
	mux.HandleFunc("POST /communications", s.listCommunications)
	mux.HandleFunc("POST /communications/new", s.createCommunication)
	mux.HandleFunc("GET /communications/export.csv", s.exportCommunicationsCSV)
	mux.HandleFunc("GET /communications/export.xlsx", s.exportCommunicationsXLSX)
	mux.HandleFunc("GET /communications/{id}", s.getCommunication)
	mux.HandleFunc("PUT /communications/{id}", s.updateCommunication)
	mux.HandleFunc("DELETE /communications/{id}", s.deleteCommunication)

	mux.HandleFunc("GET /bulk-communications", s.listBulkCommunications)
	mux.HandleFunc("POST /bulk-communications", s.listBulkCommunications)
	mux.HandleFunc("POST /bulk-communications/new", s.createBulkCommunication)
	mux.HandleFunc("GET /bulk-communications/export.csv", s.exportBulkCommunicationsCSV)
	mux.HandleFunc("GET /bulk-communications/export.xlsx", s.exportBulkCommunicationsXLSX)
	mux.HandleFunc("GET /bulk-communications/{id}", s.getBulkCommunication)
	mux.HandleFunc("PUT /bulk-communications/{id}", s.updateBulkCommunication)
	mux.HandleFunc("DELETE /bulk-communications/{id}", s.deleteBulkCommunication)

	mux.HandleFunc("GET /lookups/locations", s.listLocations)
	mux.HandleFunc("POST /lookups/locations", s.createLocation)
	mux.HandleFunc("PUT /lookups/locations/{id}", s.updateLocation)
	mux.HandleFunc("DELETE /lookups/locations/{id}", s.deleteLocation)
	mux.HandleFunc("GET /lookups/membership-statuses", s.listMembershipStatuses)
	mux.HandleFunc("GET /lookups/membership-types", s.listMembershipTypes)
	mux.HandleFunc("GET /lookups/event-types", s.listEventTypes)
	mux.HandleFunc("GET /lookups/payment-methods", s.listPaymentMethods)
	mux.HandleFunc("GET /lookups/communication-results", s.listCommunicationResults)

	mux.HandleFunc("GET /vistas/{model}", s.listVistas)

	return mux
}
