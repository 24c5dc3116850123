package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reportes_backend/platform/apperr"
	"reportes_backend/platform/db"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Create(ctx context.Context, params CreateParams) (Ubicacion, error) {
	const op = "ubicaciones.repository.Create"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO ubicaciones (nombre, lat, lon, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, nombre, lat, lon, status, created_at`

	var (
		u         Ubicacion
		createdAt time.Time
	)
	err := q.QueryRow(ctx, query, params.Nombre, params.Lat, params.Lon, params.Status).
		Scan(&u.ID, &u.Nombre, &u.Lat, &u.Lon, &u.Status, &createdAt)
	if err != nil {
		return Ubicacion{}, apperr.Wrap(apperr.KindInternal, "failed to create ubicacion", err).WithOp(op)
	}
	u.CreatedAt = createdAt.Format(time.RFC3339)
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Ubicacion, error) {
	const op = "ubicaciones.repository.GetByID"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		SELECT id, nombre, lat, lon, status, created_at
		FROM ubicaciones
		WHERE id = $1`

	var (
		u         Ubicacion
		createdAt time.Time
	)
	err := q.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Nombre, &u.Lat, &u.Lon, &u.Status, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ubicacion{}, apperr.NotFound("ubicacion not found").WithOp(op)
	}
	if err != nil {
		return Ubicacion{}, apperr.Wrap(apperr.KindInternal, "failed to fetch ubicacion", err).WithOp(op)
	}
	u.CreatedAt = createdAt.Format(time.RFC3339)
	return u, nil
}

func (r *PostgresRepository) SetResolved(ctx context.Context, id uuid.UUID, nombre string) (bool, error) {
	const op = "ubicaciones.repository.SetResolved"

	q := db.QuerierFromContext(ctx, r.pool)
	// The status guard makes resolution writes idempotent: a row that already
	// reached a terminal state is never touched again, even by a late or
	// duplicate job delivery.
	query := `
		UPDATE ubicaciones
		SET status = $2,
		    nombre = CASE WHEN $3 <> '' THEN $3 ELSE nombre END
		WHERE id = $1 AND status IN ($4, $5)`

	tag, err := q.Exec(ctx, query, id, StatusReady, nombre, StatusPending, StatusProcessing)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to mark ubicacion resolved", err).WithOp(op)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) SetFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "ubicaciones.repository.SetFailed"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		UPDATE ubicaciones
		SET status = $2
		WHERE id = $1 AND status IN ($3, $4)`

	tag, err := q.Exec(ctx, query, id, StatusFailed, StatusPending, StatusProcessing)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to mark ubicacion failed", err).WithOp(op)
	}
	return tag.RowsAffected() > 0, nil
}
