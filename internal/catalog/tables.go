package catalog

import "membership-api/internal/domain"

// Select bases establish the table aliases the descriptor expressions
// below rely on. Repositories embed these verbatim in their list queries.
const (
	// PersonFrom joins the single-row relations of a person; multi-row
	// relations go through descriptor subqueries instead.
	PersonFrom = `persons p
		LEFT JOIN membership_statuses ms ON ms.id = p.membership_status_id
		LEFT JOIN membership_types mt ON mt.id = ms.membership_type_id
		LEFT JOIN voting_addresses va ON va.id = p.voting_address_id`

	EventFrom = `events e
		LEFT JOIN event_types et ON et.id = e.event_type_id`

	SubCommitteeFrom = `subcommittees sc`

	VotingAddressFrom = `voting_addresses va`

	SavedListFrom = `saved_lists sl`

	CommunicationEventFrom = `communication_events ce
		LEFT JOIN persons tp ON tp.id = ce.target_id
		LEFT JOIN persons vp ON vp.id = ce.volunteer_id
		LEFT JOIN bulk_communications bc ON bc.id = ce.bulk_communication_id
		LEFT JOIN communication_results cr ON cr.id = ce.result_id`

	BulkCommunicationFrom = `bulk_communications bc`
)

// Person is the field catalog for the person list view.
func Person() *Catalog {
	return New("person",
		FieldDescriptor{Path: "name_prefix", Type: domain.FieldTypeText, Expr: "p.name_prefix"},
		FieldDescriptor{Path: "name_last", Type: domain.FieldTypeText, Expr: "p.name_last"},
		FieldDescriptor{Path: "name_first", Type: domain.FieldTypeText, Expr: "p.name_first"},
		FieldDescriptor{Path: "name_middles", Type: domain.FieldTypeText, Expr: "p.name_middles"},
		FieldDescriptor{Path: "name_common", Type: domain.FieldTypeText, Expr: "p.name_common"},
		FieldDescriptor{Path: "name_suffix", Type: domain.FieldTypeText, Expr: "p.name_suffix"},
		FieldDescriptor{
			Path: "voting_address", Type: domain.FieldTypeReference, Ref: "votingaddress",
			Usage: domain.UsageFilter | domain.UsageColumn,
			Expr:  "p.voting_address_id",
		},
		FieldDescriptor{
			Path: "subcommittees", Label: "SubCommittees",
			Type: domain.FieldTypeReferenceMany, Ref: "subcommittee",
			Usage:    domain.UsageFilter,
			Subquery: "p.id IN (SELECT sm.person_id FROM submemberships sm WHERE sm.subcommittee_id %s)",
		},
		FieldDescriptor{
			Path: "membership_status", Type: domain.FieldTypeReference, Ref: "membershipstatus",
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "p.membership_status_id",
		},
		FieldDescriptor{
			Path: "membership_status__is_member", Label: "Is member",
			Type:  domain.FieldTypeBoolean,
			Usage: domain.UsageFilter | domain.UsageColumn,
			Expr:  "ms.is_member",
		},
		FieldDescriptor{
			Path: "membership_status__is_quorum", Label: "Is quorum",
			Type:  domain.FieldTypeBoolean,
			Usage: domain.UsageFilter | domain.UsageColumn,
			Expr:  "ms.is_quorum",
		},
		FieldDescriptor{
			Path: "positions", Type: domain.FieldTypeReferenceMany, Ref: "position",
			Usage:    domain.UsageFilter,
			Subquery: "p.id IN (SELECT sm.person_id FROM submemberships sm WHERE sm.position_id %s)",
		},
		FieldDescriptor{
			Path: "participation__event", Label: "Participation in Event",
			Type: domain.FieldTypeReferenceMany, Ref: "event",
			Usage:    domain.UsageFilter,
			Subquery: "p.id IN (SELECT pt.person_id FROM participations pt WHERE pt.event_id %s)",
		},
		FieldDescriptor{
			Path: "record_action__bulk_record_action", Label: "Bulk Record Action",
			Type: domain.FieldTypeReferenceMany, Ref: "bulkrecordaction",
			Usage:    domain.UsageFilter,
			Subquery: "p.id IN (SELECT ra.object_id FROM record_actions ra WHERE ra.model_name = 'person' AND ra.bulk_record_action_id %s)",
		},
		FieldDescriptor{
			Path: "is_deleted", Label: "Is deleted",
			Type:  domain.FieldTypeBoolean,
			Usage: domain.UsageFilter | domain.UsageColumn,
			Expr:  "p.is_deleted",
		},
		FieldDescriptor{
			Path: "list_membership__saved_list", Label: "Saved List",
			Type: domain.FieldTypeReferenceMany, Ref: "savedlist",
			Usage:    domain.UsageFilter,
			Subquery: "p.id IN (SELECT lm.person_id FROM list_memberships lm WHERE lm.saved_list_id %s)",
		},
	)
}

// Event is the field catalog for the event list view.
func Event() *Catalog {
	return New("event",
		FieldDescriptor{Path: "name", Type: domain.FieldTypeText, Expr: "e.name"},
		FieldDescriptor{
			Path: "event_type", Label: "Event type",
			Type: domain.FieldTypeReference, Ref: "eventtype",
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "e.event_type_id",
		},
		FieldDescriptor{
			Path: "when", Type: domain.FieldTypeDate,
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "e.happened_at",
		},
		FieldDescriptor{
			Path: "participation__person", Label: "Participant",
			Type: domain.FieldTypeReferenceMany, Ref: "person",
			Usage:    domain.UsageFilter,
			Subquery: "e.id IN (SELECT pt.event_id FROM participations pt WHERE pt.person_id %s)",
		},
	)
}

// SubCommittee is the field catalog for the subcommittee list view.
func SubCommittee() *Catalog {
	return New("subcommittee",
		FieldDescriptor{Path: "name", Type: domain.FieldTypeText, Expr: "sc.name"},
		FieldDescriptor{
			Path: "rank", Type: domain.FieldTypeNumber,
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "sc.rank_number",
		},
		FieldDescriptor{
			Path: "submembership__person", Label: "Member",
			Type: domain.FieldTypeReferenceMany, Ref: "person",
			Usage:    domain.UsageFilter,
			Subquery: "sc.id IN (SELECT sm.subcommittee_id FROM submemberships sm WHERE sm.person_id %s)",
		},
	)
}

// VotingAddress is the field catalog for the voting address list view.
func VotingAddress() *Catalog {
	refUsage := domain.UsageFilter | domain.UsageColumn
	return New("votingaddress",
		FieldDescriptor{Path: "street_address", Label: "Street address", Type: domain.FieldTypeText, Expr: "va.street_address"},
		FieldDescriptor{Path: "locationcity", Label: "City", Type: domain.FieldTypeReference, Ref: "location", Usage: refUsage, Expr: "va.city_id"},
		FieldDescriptor{Path: "locationcongress", Label: "Congressional District", Type: domain.FieldTypeReference, Ref: "location", Usage: refUsage, Expr: "va.congress_id"},
		FieldDescriptor{Path: "locationstatesenate", Label: "State Senate District", Type: domain.FieldTypeReference, Ref: "location", Usage: refUsage, Expr: "va.state_senate_id"},
		FieldDescriptor{Path: "locationstatehouse", Label: "State House District", Type: domain.FieldTypeReference, Ref: "location", Usage: refUsage, Expr: "va.state_house_id"},
		FieldDescriptor{Path: "locationmagistrate", Label: "Magisterial District", Type: domain.FieldTypeReference, Ref: "location", Usage: refUsage, Expr: "va.magistrate_id"},
		FieldDescriptor{Path: "locationborough", Label: "Borough", Type: domain.FieldTypeReference, Ref: "location", Usage: refUsage, Expr: "va.borough_id"},
		FieldDescriptor{Path: "locationprecinct", Label: "Precinct", Type: domain.FieldTypeReference, Ref: "location", Usage: refUsage, Expr: "va.precinct_id"},
	)
}

// CommunicationEvent is the field catalog for the communication log
// list view.
func CommunicationEvent() *Catalog {
	return New("communicationevent",
		FieldDescriptor{
			Path: "target", Type: domain.FieldTypeReference, Ref: "person",
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "ce.target_id",
		},
		FieldDescriptor{
			Path: "volunteer", Type: domain.FieldTypeReference, Ref: "person",
			Usage: domain.UsageFilter | domain.UsageColumn,
			Expr:  "ce.volunteer_id",
		},
		FieldDescriptor{Path: "details", Type: domain.FieldTypeText, Expr: "ce.details"},
		FieldDescriptor{
			Path: "bulk_communication", Label: "Bulk Communication",
			Type: domain.FieldTypeReference, Ref: "bulkcommunication",
			Usage: domain.UsageFilter | domain.UsageColumn,
			Expr:  "ce.bulk_communication_id",
		},
		FieldDescriptor{
			Path: "result", Type: domain.FieldTypeReference, Ref: "communicationresult",
			Usage: domain.UsageFilter | domain.UsageColumn,
			Expr:  "ce.result_id",
		},
		FieldDescriptor{
			Path: "when", Type: domain.FieldTypeDate,
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "ce.created_at",
		},
	)
}

// BulkCommunication is the field catalog for the bulk communication
// list view.
func BulkCommunication() *Catalog {
	return New("bulkcommunication",
		FieldDescriptor{Path: "name", Type: domain.FieldTypeText, Expr: "bc.name"},
		FieldDescriptor{
			Path: "when", Type: domain.FieldTypeDate,
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "bc.created_at",
		},
	)
}

// SavedList is the field catalog for the saved list view.
func SavedList() *Catalog {
	return New("savedlist",
		FieldDescriptor{Path: "name", Type: domain.FieldTypeText, Expr: "sl.name"},
		FieldDescriptor{
			Path: "when", Type: domain.FieldTypeDate,
			Usage: domain.UsageFilter | domain.UsageColumn | domain.UsageOrder,
			Expr:  "sl.created_at",
		},
		FieldDescriptor{
			Path: "list_membership__person", Label: "Member",
			Type: domain.FieldTypeReferenceMany, Ref: "person",
			Usage:    domain.UsageFilter,
			Subquery: "sl.id IN (SELECT lm.saved_list_id FROM list_memberships lm WHERE lm.person_id %s)",
		},
	)
}
