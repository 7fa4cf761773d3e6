package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type personRepository struct {
	pool *pgxpool.Pool
	cat  *catalog.Catalog
}

// NewPersonRepository wires a repository backed by pgxpool.
func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &personRepository{pool: pool, cat: catalog.Person()}
}

const personColumns = `p.id, p.name_prefix, p.name_last, p.name_first, p.name_middles,
	p.name_common, p.name_suffix, p.vb_voter_id, p.voting_address_id,
	p.membership_status_id, p.is_deleted, p.created_at, p.updated_at`

func (r *personRepository) Create(ctx context.Context, person domain.Person) (domain.Person, error) {
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	now := time.Now()
	person.CreatedAt = now
	person.UpdatedAt = now

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO persons (id, name_prefix, name_last, name_first, name_middles,
			name_common, name_suffix, vb_voter_id, voting_address_id,
			membership_status_id, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		person.ID,
		person.NamePrefix,
		person.NameLast,
		person.NameFirst,
		person.NameMiddles,
		person.NameCommon,
		person.NameSuffix,
		person.VBVoterID,
		person.VotingAddressID,
		person.MembershipStatusID,
		person.IsDeleted,
		person.CreatedAt,
		person.UpdatedAt,
	)
	if err != nil {
		return domain.Person{}, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}

func (r *personRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Person, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+personColumns+` FROM persons p WHERE p.id = $1`,
		id,
	)
	return scanPerson(row)
}

func (r *personRepository) GetByVoterID(ctx context.Context, voterID string) (domain.Person, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+personColumns+` FROM persons p WHERE p.vb_voter_id = $1 AND p.is_deleted = FALSE`,
		voterID,
	)
	return scanPerson(row)
}

func (r *personRepository) Update(ctx context.Context, person domain.Person) (domain.Person, error) {
	person.UpdatedAt = time.Now()

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE persons SET name_prefix = $2, name_last = $3, name_first = $4,
			name_middles = $5, name_common = $6, name_suffix = $7, vb_voter_id = $8,
			voting_address_id = $9, membership_status_id = $10, updated_at = $11
		 WHERE id = $1`,
		person.ID,
		person.NamePrefix,
		person.NameLast,
		person.NameFirst,
		person.NameMiddles,
		person.NameCommon,
		person.NameSuffix,
		person.VBVoterID,
		person.VotingAddressID,
		person.MembershipStatusID,
		person.UpdatedAt,
	)
	if err != nil {
		return domain.Person{}, fmt.Errorf("failed to update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Person{}, ErrNotFound
	}

	return person, nil
}

// Delete soft-deletes on first call. A person already flagged as
// deleted is physically removed along with their dependent rows.
func (r *personRepository) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !current.IsDeleted {
		_, err := r.pool.Exec(ctx, `UPDATE persons SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to flag person deleted: %w", err)
		}
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		`DELETE FROM contact_voices WHERE person_id = $1`,
		`DELETE FROM contact_texts WHERE person_id = $1`,
		`DELETE FROM contact_emails WHERE person_id = $1`,
		`DELETE FROM submemberships WHERE person_id = $1`,
		`DELETE FROM participations WHERE person_id = $1`,
		`DELETE FROM list_memberships WHERE person_id = $1`,
		`DELETE FROM membership_histories WHERE person_id = $1`,
		`DELETE FROM membership_applications WHERE person_id = $1`,
		`DELETE FROM dues_payments WHERE person_id = $1`,
		`DELETE FROM persons WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to remove person: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit person removal: %w", err)
	}
	return nil
}

const personRowSelect = `SELECT ` + personColumns + `,
	COALESCE(mt.name, ''), COALESCE(ms.name, ''), COALESCE(ms.is_quorum, FALSE),
	COALESCE(va.street_address, ''),
	COALESCE(lc.name, ''), COALESCE(lcg.name, ''), COALESCE(lss.name, ''),
	COALESCE(lsh.name, ''), COALESCE(lmg.name, ''), COALESCE(lb.name, ''),
	COALESCE(lp.name, ''),
	(SELECT COALESCE(array_agg(po.title ORDER BY po.rank_number), '{}')
	   FROM submemberships sm JOIN positions po ON po.id = sm.position_id
	  WHERE sm.person_id = p.id),
	(SELECT COALESCE(array_agg(sc.name ORDER BY sc.rank_number), '{}')
	   FROM submemberships sm JOIN subcommittees sc ON sc.id = sm.subcommittee_id
	  WHERE sm.person_id = p.id),
	(SELECT COALESCE(array_agg(cv.number ORDER BY cv.rank_number), '{}')
	   FROM contact_voices cv WHERE cv.person_id = p.id),
	(SELECT COALESCE(array_agg(ct.number), '{}')
	   FROM contact_texts ct WHERE ct.person_id = p.id),
	(SELECT COALESCE(array_agg(ce.address), '{}')
	   FROM contact_emails ce WHERE ce.person_id = p.id)`

const personRowFrom = ` FROM ` + catalog.PersonFrom + `
	LEFT JOIN locations lc ON lc.id = va.city_id
	LEFT JOIN locations lcg ON lcg.id = va.congress_id
	LEFT JOIN locations lss ON lss.id = va.state_senate_id
	LEFT JOIN locations lsh ON lsh.id = va.state_house_id
	LEFT JOIN locations lmg ON lmg.id = va.magistrate_id
	LEFT JOIN locations lb ON lb.id = va.borough_id
	LEFT JOIN locations lp ON lp.id = va.precinct_id`

func (r *personRepository) GetRow(ctx context.Context, id uuid.UUID) (PersonRow, error) {
	rows, err := r.pool.Query(
		ctx,
		personRowSelect+", 1"+personRowFrom+` WHERE p.id = $1`,
		id,
	)
	if err != nil {
		return PersonRow{}, fmt.Errorf("failed to get person row: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return PersonRow{}, fmt.Errorf("failed to get person row: %w", rowsErr)
		}
		return PersonRow{}, ErrNotFound
	}
	var total int
	row, err := scanPersonRow(rows, &total)
	if err != nil {
		return PersonRow{}, err
	}
	return row, nil
}

// List resolves a query spec against the person collection. Soft-deleted
// people are excluded unless the spec itself filters on is_deleted.
func (r *personRepository) List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]PersonRow, int, error) {
	base := SelectBase{IDExpr: "p.id"}
	if !filtersOn(spec, "is_deleted") {
		base.Where = []string{"p.is_deleted = FALSE"}
	}

	built := BuildQuery(r.cat, spec, base)

	sql := personRowSelect + ", COUNT(*) OVER()" + personRowFrom
	if built.Where != "" {
		sql += " WHERE " + built.Where
	}
	sql += " ORDER BY " + built.OrderBy

	args := built.Args
	if page.PageSize > 0 {
		offset := 0
		if page.Page > 1 {
			offset = (page.Page - 1) * page.PageSize
		}
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, page.PageSize, offset)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var (
		out   []PersonRow
		total int
	)
	for rows.Next() {
		row, scanErr := scanPersonRow(rows, &total)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		out = append(out, row)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("failed to iterate persons: %w", rowsErr)
	}

	return out, total, nil
}

func (r *personRepository) AppendMembershipHistory(ctx context.Context, entry domain.MembershipHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.EffectiveDate.IsZero() {
		entry.EffectiveDate = time.Now()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO membership_histories (id, person_id, membership_status_id, effective_date)
		 VALUES ($1, $2, $3, $4)`,
		entry.ID,
		entry.PersonID,
		entry.MembershipStatusID,
		entry.EffectiveDate,
	)
	if err != nil {
		return fmt.Errorf("failed to append membership history: %w", err)
	}
	return nil
}

func (r *personRepository) ListMembershipHistory(ctx context.Context, personID uuid.UUID) ([]domain.MembershipHistory, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, person_id, membership_status_id, effective_date
		 FROM membership_histories
		 WHERE person_id = $1
		 ORDER BY effective_date DESC, id`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership history: %w", err)
	}
	defer rows.Close()

	entries := []domain.MembershipHistory{}
	for rows.Next() {
		var (
			entry    domain.MembershipHistory
			statusID pgtype.UUID
		)
		if scanErr := rows.Scan(&entry.ID, &entry.PersonID, &statusID, &entry.EffectiveDate); scanErr != nil {
			return nil, fmt.Errorf("failed to scan membership history: %w", scanErr)
		}
		if statusID.Valid {
			id := uuid.UUID(statusID.Bytes)
			entry.MembershipStatusID = &id
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate membership history: %w", rowsErr)
	}
	return entries, nil
}

// ReplaceContacts swaps a person's contact rows for the submitted set
// in one transaction, mirroring inline formset saves.
func (r *personRepository) ReplaceContacts(ctx context.Context, personID uuid.UUID, voice []domain.ContactVoice, text []domain.ContactText, email []domain.ContactEmail) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin contact replace: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		`DELETE FROM contact_voices WHERE person_id = $1`,
		`DELETE FROM contact_texts WHERE person_id = $1`,
		`DELETE FROM contact_emails WHERE person_id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, personID); err != nil {
			return fmt.Errorf("failed to clear contacts: %w", err)
		}
	}

	for _, v := range voice {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		_, err := tx.Exec(
			ctx,
			`INSERT INTO contact_voices (id, person_id, number, label, is_mobile, rank_number, extra, alert, is_primary)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			v.ID, personID, v.Number, v.Label, int(v.IsMobile), v.RankNumber, v.Extra, v.Alert, v.IsPrimary,
		)
		if err != nil {
			return fmt.Errorf("failed to insert voice contact: %w", err)
		}
	}
	for _, t := range text {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		_, err := tx.Exec(
			ctx,
			`INSERT INTO contact_texts (id, person_id, number, extra, alert, is_primary)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, personID, t.Number, t.Extra, t.Alert, t.IsPrimary,
		)
		if err != nil {
			return fmt.Errorf("failed to insert text contact: %w", err)
		}
	}
	for _, e := range email {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		_, err := tx.Exec(
			ctx,
			`INSERT INTO contact_emails (id, person_id, address, extra, alert, is_primary)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, personID, e.Address, e.Extra, e.Alert, e.IsPrimary,
		)
		if err != nil {
			return fmt.Errorf("failed to insert email contact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit contact replace: %w", err)
	}
	return nil
}

func (r *personRepository) ReplaceSubMemberships(ctx context.Context, personID uuid.UUID, memberships []domain.SubMembership) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin submembership replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM submemberships WHERE person_id = $1`, personID); err != nil {
		return fmt.Errorf("failed to clear submemberships: %w", err)
	}

	for _, m := range memberships {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		_, err := tx.Exec(
			ctx,
			`INSERT INTO submemberships (id, person_id, subcommittee_id, position_id)
			 VALUES ($1, $2, $3, $4)`,
			m.ID, personID, m.SubCommitteeID, m.PositionID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert submembership: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit submembership replace: %w", err)
	}
	return nil
}

func (r *personRepository) EnsureVoiceNumber(ctx context.Context, personID uuid.UUID, number string) error {
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM contact_voices WHERE person_id = $1 AND number = $2)`,
		personID, number,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check voice number: %w", err)
	}
	if exists {
		return nil
	}
	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO contact_voices (id, person_id, number, label, is_mobile, rank_number, extra, alert, is_primary)
		 VALUES ($1, $2, $3, '', 0, 0, '', '', FALSE)`,
		uuid.New(), personID, number,
	)
	if err != nil {
		return fmt.Errorf("failed to add voice number: %w", err)
	}
	return nil
}

// filtersOn reports whether the spec carries a clause on the given path.
func filtersOn(spec domain.QuerySpec, path string) bool {
	for _, clause := range spec.Filters {
		if clause.FieldName == path {
			return true
		}
	}
	return false
}

func scanPerson(row pgx.Row) (domain.Person, error) {
	var (
		person    domain.Person
		addressID pgtype.UUID
		statusID  pgtype.UUID
	)
	err := row.Scan(
		&person.ID,
		&person.NamePrefix,
		&person.NameLast,
		&person.NameFirst,
		&person.NameMiddles,
		&person.NameCommon,
		&person.NameSuffix,
		&person.VBVoterID,
		&addressID,
		&statusID,
		&person.IsDeleted,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Person{}, ErrNotFound
		}
		return domain.Person{}, fmt.Errorf("failed to scan person: %w", err)
	}
	if addressID.Valid {
		id := uuid.UUID(addressID.Bytes)
		person.VotingAddressID = &id
	}
	if statusID.Valid {
		id := uuid.UUID(statusID.Bytes)
		person.MembershipStatusID = &id
	}
	return person, nil
}

func scanPersonRow(rows pgx.Rows, total *int) (PersonRow, error) {
	var (
		row       PersonRow
		addressID pgtype.UUID
		statusID  pgtype.UUID
		typeName  string
		statName  string
		city      string
		congress  string
		senate    string
		house     string
		magist    string
		borough   string
		precinct  string
	)
	err := rows.Scan(
		&row.Person.ID,
		&row.Person.NamePrefix,
		&row.Person.NameLast,
		&row.Person.NameFirst,
		&row.Person.NameMiddles,
		&row.Person.NameCommon,
		&row.Person.NameSuffix,
		&row.Person.VBVoterID,
		&addressID,
		&statusID,
		&row.Person.IsDeleted,
		&row.Person.CreatedAt,
		&row.Person.UpdatedAt,
		&typeName,
		&statName,
		&row.IsQuorum,
		&row.VotingAddress,
		&city,
		&congress,
		&senate,
		&house,
		&magist,
		&borough,
		&precinct,
		&row.Positions,
		&row.SubCommittees,
		&row.VoiceNumbers,
		&row.TextNumbers,
		&row.EmailAddresses,
		total,
	)
	if err != nil {
		return PersonRow{}, fmt.Errorf("failed to scan person row: %w", err)
	}

	if addressID.Valid {
		id := uuid.UUID(addressID.Bytes)
		row.Person.VotingAddressID = &id
	}
	if statusID.Valid {
		id := uuid.UUID(statusID.Bytes)
		row.Person.MembershipStatusID = &id
	}
	row.MembershipStatus = domain.MembershipStatus{TypeName: typeName, Name: statName}.Display()
	if typeName == "" && statName == "" {
		row.MembershipStatus = ""
	}
	row.LocationNames = map[domain.LocationKind]string{
		domain.LocationKindCity:        city,
		domain.LocationKindCongress:    congress,
		domain.LocationKindStateSenate: senate,
		domain.LocationKindStateHouse:  house,
		domain.LocationKindMagistrate:  magist,
		domain.LocationKindBorough:     borough,
		domain.LocationKindPrecinct:    precinct,
	}
	return row, nil
}
