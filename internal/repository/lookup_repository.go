package repository

import (
	"context"
	"errors"
	"fmt"

	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type lookupRepository struct {
	pool *pgxpool.Pool
}

// NewLookupRepository wires a repository backed by pgxpool.
func NewLookupRepository(pool *pgxpool.Pool) LookupRepository {
	return &lookupRepository{pool: pool}
}

// LocationByName resolves a location by exact name within its kind,
// the lookup used when imports map column values to references.
func (r *lookupRepository) LocationByName(ctx context.Context, kind domain.LocationKind, name string) (domain.Location, error) {
	var loc domain.Location
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, kind, name FROM locations WHERE kind = $1 AND name = $2`,
		string(kind), name,
	).Scan(&loc.ID, &loc.Kind, &loc.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, ErrNotFound
		}
		return domain.Location{}, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}

func (r *lookupRepository) CreateLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO locations (id, kind, name) VALUES ($1, $2, $3)`,
		loc.ID, string(loc.Kind), loc.Name,
	)
	if err != nil {
		return domain.Location{}, fmt.Errorf("failed to create location: %w", err)
	}
	return loc, nil
}

func (r *lookupRepository) UpdateLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE locations SET name = $2 WHERE id = $1`,
		loc.ID, loc.Name,
	)
	if err != nil {
		return domain.Location{}, fmt.Errorf("failed to update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Location{}, ErrNotFound
	}
	return loc, nil
}

func (r *lookupRepository) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *lookupRepository) ListLocations(ctx context.Context, kind domain.LocationKind) ([]domain.Location, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, kind, name FROM locations WHERE kind = $1 ORDER BY name`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := []domain.Location{}
	for rows.Next() {
		var loc domain.Location
		if scanErr := rows.Scan(&loc.ID, &loc.Kind, &loc.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan location: %w", scanErr)
		}
		locations = append(locations, loc)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", rowsErr)
	}
	return locations, nil
}

func (r *lookupRepository) ListMembershipStatuses(ctx context.Context) ([]domain.MembershipStatus, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT ms.id, ms.membership_type_id, mt.name, ms.name, ms.is_member,
			ms.is_quorum, ms.can_vote, ms.pays_dues
		 FROM membership_statuses ms
		 JOIN membership_types mt ON mt.id = ms.membership_type_id
		 ORDER BY mt.name, ms.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership statuses: %w", err)
	}
	defer rows.Close()

	statuses := []domain.MembershipStatus{}
	for rows.Next() {
		var s domain.MembershipStatus
		if scanErr := rows.Scan(
			&s.ID, &s.MembershipTypeID, &s.TypeName, &s.Name,
			&s.IsMember, &s.IsQuorum, &s.CanVote, &s.PaysDues,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan membership status: %w", scanErr)
		}
		statuses = append(statuses, s)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate membership statuses: %w", rowsErr)
	}
	return statuses, nil
}

func (r *lookupRepository) ListMembershipTypes(ctx context.Context) ([]domain.MembershipType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM membership_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership types: %w", err)
	}
	defer rows.Close()

	types := []domain.MembershipType{}
	for rows.Next() {
		var t domain.MembershipType
		if scanErr := rows.Scan(&t.ID, &t.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan membership type: %w", scanErr)
		}
		types = append(types, t)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate membership types: %w", rowsErr)
	}
	return types, nil
}

func (r *lookupRepository) ListEventTypes(ctx context.Context) ([]domain.EventType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM event_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list event types: %w", err)
	}
	defer rows.Close()

	types := []domain.EventType{}
	for rows.Next() {
		var t domain.EventType
		if scanErr := rows.Scan(&t.ID, &t.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan event type: %w", scanErr)
		}
		types = append(types, t)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate event types: %w", rowsErr)
	}
	return types, nil
}

func (r *lookupRepository) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM payment_methods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	methods := []domain.PaymentMethod{}
	for rows.Next() {
		var m domain.PaymentMethod
		if scanErr := rows.Scan(&m.ID, &m.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", scanErr)
		}
		methods = append(methods, m)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate payment methods: %w", rowsErr)
	}
	return methods, nil
}
