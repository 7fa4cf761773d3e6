package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type vistaRepository struct {
	pool *pgxpool.Pool
}

// NewVistaRepository wires a repository backed by pgxpool.
func NewVistaRepository(pool *pgxpool.Pool) VistaRepository {
	return &vistaRepository{pool: pool}
}

const vistaColumns = `id, user_id, model_name, name, spec, is_default, modified`

// Save upserts by (user, model, name). Marking a vista default clears
// any prior default for the pair in the same transaction, so the
// default stays unique.
func (r *vistaRepository) Save(ctx context.Context, vista domain.Vista) (domain.Vista, error) {
	if vista.ID == uuid.Nil {
		vista.ID = uuid.New()
	}
	vista.Modified = time.Now()

	specJSON, err := vista.Spec.MarshalSpec()
	if err != nil {
		return domain.Vista{}, fmt.Errorf("failed to serialize vista spec: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Vista{}, fmt.Errorf("failed to begin vista save: %w", err)
	}
	defer tx.Rollback(ctx)

	if vista.IsDefault {
		_, err := tx.Exec(
			ctx,
			`UPDATE vistas SET is_default = FALSE
			 WHERE user_id = $1 AND model_name = $2 AND name <> $3`,
			vista.UserID, vista.ModelName, vista.Name,
		)
		if err != nil {
			return domain.Vista{}, fmt.Errorf("failed to clear prior default vista: %w", err)
		}
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO vistas (id, user_id, model_name, name, spec, is_default, modified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, model_name, name)
		 DO UPDATE SET spec = EXCLUDED.spec, is_default = EXCLUDED.is_default, modified = EXCLUDED.modified
		 RETURNING id`,
		vista.ID, vista.UserID, vista.ModelName, vista.Name, specJSON, vista.IsDefault, vista.Modified,
	).Scan(&vista.ID)
	if err != nil {
		return domain.Vista{}, fmt.Errorf("failed to save vista: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Vista{}, fmt.Errorf("failed to commit vista save: %w", err)
	}
	return vista, nil
}

func (r *vistaRepository) GetByName(ctx context.Context, userID uuid.UUID, modelName, name string) (domain.Vista, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+vistaColumns+` FROM vistas
		 WHERE user_id = $1 AND model_name = $2 AND name = $3`,
		userID, modelName, name,
	)
	return scanVista(row)
}

func (r *vistaRepository) GetDefault(ctx context.Context, userID uuid.UUID, modelName string) (domain.Vista, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+vistaColumns+` FROM vistas
		 WHERE user_id = $1 AND model_name = $2 AND is_default = TRUE
		 ORDER BY modified DESC
		 LIMIT 1`,
		userID, modelName,
	)
	return scanVista(row)
}

func (r *vistaRepository) Latest(ctx context.Context, userID uuid.UUID, modelName string) (domain.Vista, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+vistaColumns+` FROM vistas
		 WHERE user_id = $1 AND model_name = $2
		 ORDER BY modified DESC
		 LIMIT 1`,
		userID, modelName,
	)
	return scanVista(row)
}

func (r *vistaRepository) List(ctx context.Context, userID uuid.UUID, modelName string) ([]domain.Vista, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+vistaColumns+` FROM vistas
		 WHERE user_id = $1 AND model_name = $2
		 ORDER BY name`,
		userID, modelName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vistas: %w", err)
	}
	defer rows.Close()

	vistas := []domain.Vista{}
	for rows.Next() {
		vista, scanErr := scanVista(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		vistas = append(vistas, vista)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate vistas: %w", rowsErr)
	}
	return vistas, nil
}

func (r *vistaRepository) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE vistas SET modified = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch vista: %w", err)
	}
	return nil
}

func (r *vistaRepository) Delete(ctx context.Context, userID uuid.UUID, modelName, name string) error {
	_, err := r.pool.Exec(
		ctx,
		`DELETE FROM vistas WHERE user_id = $1 AND model_name = $2 AND name = $3`,
		userID, modelName, name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete vista: %w", err)
	}
	return nil
}

func scanVista(row pgx.Row) (domain.Vista, error) {
	var (
		vista    domain.Vista
		specJSON []byte
	)
	err := row.Scan(
		&vista.ID,
		&vista.UserID,
		&vista.ModelName,
		&vista.Name,
		&specJSON,
		&vista.IsDefault,
		&vista.Modified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vista{}, ErrNotFound
		}
		return domain.Vista{}, fmt.Errorf("failed to scan vista: %w", err)
	}

	spec, err := domain.UnmarshalSpec(specJSON)
	if err != nil {
		// Malformed stored specs degrade to an empty spec rather than
		// failing the request.
		spec = domain.QuerySpec{}
	}
	vista.Spec = spec
	return vista, nil
}
