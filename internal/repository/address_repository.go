package repository

import (
	"context"
	"errors"
	"fmt"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type votingAddressRepository struct {
	pool *pgxpool.Pool
	cat  *catalog.Catalog
}

// NewVotingAddressRepository wires a repository backed by pgxpool.
func NewVotingAddressRepository(pool *pgxpool.Pool) VotingAddressRepository {
	return &votingAddressRepository{pool: pool, cat: catalog.VotingAddress()}
}

const addressColumns = `va.id, va.street_address, va.city_id, va.congress_id,
	va.state_senate_id, va.state_house_id, va.magistrate_id, va.borough_id, va.precinct_id`

func (r *votingAddressRepository) Create(ctx context.Context, addr domain.VotingAddress) (domain.VotingAddress, error) {
	if addr.ID == uuid.Nil {
		addr.ID = uuid.New()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO voting_addresses (id, street_address, city_id, congress_id,
			state_senate_id, state_house_id, magistrate_id, borough_id, precinct_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		addr.ID,
		addr.StreetAddress,
		addr.CityID,
		addr.CongressID,
		addr.StateSenateID,
		addr.StateHouseID,
		addr.MagistrateID,
		addr.BoroughID,
		addr.PrecinctID,
	)
	if err != nil {
		return domain.VotingAddress{}, fmt.Errorf("failed to create voting address: %w", err)
	}
	return addr, nil
}

func (r *votingAddressRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.VotingAddress, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+addressColumns+` FROM voting_addresses va WHERE va.id = $1`,
		id,
	)
	addr, err := scanVotingAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VotingAddress{}, ErrNotFound
		}
		return domain.VotingAddress{}, err
	}
	return addr, nil
}

func (r *votingAddressRepository) GetOrCreateByStreet(ctx context.Context, streetAddress string) (domain.VotingAddress, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+addressColumns+` FROM voting_addresses va WHERE va.street_address = $1 LIMIT 1`,
		streetAddress,
	)
	addr, err := scanVotingAddress(row)
	if err == nil {
		return addr, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.VotingAddress{}, err
	}
	return r.Create(ctx, domain.VotingAddress{StreetAddress: streetAddress})
}

func (r *votingAddressRepository) List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]VotingAddressRow, int, error) {
	built := BuildQuery(r.cat, spec, SelectBase{IDExpr: "va.id"})

	sql := `SELECT ` + addressColumns + `,
		COALESCE(lc.name, ''), COALESCE(lcg.name, ''), COALESCE(lss.name, ''),
		COALESCE(lsh.name, ''), COALESCE(lmg.name, ''), COALESCE(lb.name, ''),
		COALESCE(lp.name, ''),
		COUNT(*) OVER()
	 FROM ` + catalog.VotingAddressFrom + `
		LEFT JOIN locations lc ON lc.id = va.city_id
		LEFT JOIN locations lcg ON lcg.id = va.congress_id
		LEFT JOIN locations lss ON lss.id = va.state_senate_id
		LEFT JOIN locations lsh ON lsh.id = va.state_house_id
		LEFT JOIN locations lmg ON lmg.id = va.magistrate_id
		LEFT JOIN locations lb ON lb.id = va.borough_id
		LEFT JOIN locations lp ON lp.id = va.precinct_id`
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
		return nil, 0, fmt.Errorf("failed to list voting addresses: %w", err)
	}
	defer rows.Close()

	var (
		out   []VotingAddressRow
		total int
	)
	for rows.Next() {
		var (
			row      VotingAddressRow
			refs     [7]pgtype.UUID
			city     string
			congress string
			senate   string
			house    string
			magist   string
			borough  string
			precinct string
		)
		if scanErr := rows.Scan(
			&row.Address.ID,
			&row.Address.StreetAddress,
			&refs[0], &refs[1], &refs[2], &refs[3], &refs[4], &refs[5], &refs[6],
			&city, &congress, &senate, &house, &magist, &borough, &precinct,
			&total,
		); scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan voting address: %w", scanErr)
		}
		assignAddressRefs(&row.Address, refs)
		row.LocationNames = map[domain.LocationKind]string{
			domain.LocationKindCity:        city,
			domain.LocationKindCongress:    congress,
			domain.LocationKindStateSenate: senate,
			domain.LocationKindStateHouse:  house,
			domain.LocationKindMagistrate:  magist,
			domain.LocationKindBorough:     borough,
			domain.LocationKindPrecinct:    precinct,
		}
		out = append(out, row)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("failed to iterate voting addresses: %w", rowsErr)
	}
	return out, total, nil
}

func (r *votingAddressRepository) Update(ctx context.Context, addr domain.VotingAddress) (domain.VotingAddress, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE voting_addresses SET street_address = $2, city_id = $3, congress_id = $4,
			state_senate_id = $5, state_house_id = $6, magistrate_id = $7,
			borough_id = $8, precinct_id = $9
		 WHERE id = $1`,
		addr.ID,
		addr.StreetAddress,
		addr.CityID,
		addr.CongressID,
		addr.StateSenateID,
		addr.StateHouseID,
		addr.MagistrateID,
		addr.BoroughID,
		addr.PrecinctID,
	)
	if err != nil {
		return domain.VotingAddress{}, fmt.Errorf("failed to update voting address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.VotingAddress{}, ErrNotFound
	}
	return addr, nil
}

func (r *votingAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin voting address delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE persons SET voting_address_id = NULL WHERE voting_address_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unlink voting address: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM voting_addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete voting address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func scanVotingAddress(row pgx.Row) (domain.VotingAddress, error) {
	var (
		addr domain.VotingAddress
		refs [7]pgtype.UUID
	)
	err := row.Scan(
		&addr.ID,
		&addr.StreetAddress,
		&refs[0], &refs[1], &refs[2], &refs[3], &refs[4], &refs[5], &refs[6],
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VotingAddress{}, pgx.ErrNoRows
		}
		return domain.VotingAddress{}, fmt.Errorf("failed to scan voting address: %w", err)
	}
	assignAddressRefs(&addr, refs)
	return addr, nil
}

func assignAddressRefs(addr *domain.VotingAddress, refs [7]pgtype.UUID) {
	targets := []**uuid.UUID{
		&addr.CityID, &addr.CongressID, &addr.StateSenateID, &addr.StateHouseID,
		&addr.MagistrateID, &addr.BoroughID, &addr.PrecinctID,
	}
	for i, ref := range refs {
		if ref.Valid {
			id := uuid.UUID(ref.Bytes)
			*targets[i] = &id
		}
	}
}
