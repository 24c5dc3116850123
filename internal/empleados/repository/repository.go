package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const empleadoColumns = "id, user_name, nombre_empleado, ubicacion, campus, puesto, email, celular"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanEmpleado(row pgx.Row) (Empleado, error) {
	var e Empleado
	err := row.Scan(&e.ID, &e.UserName, &e.NombreEmpleado, &e.Ubicacion, &e.Campus, &e.Puesto, &e.Email, &e.Celular)
	return e, err
}

func (r *PostgresRepository) Create(ctx context.Context, params CreateParams) (Empleado, error) {
	const op = "empleados.repository.Create"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO empleados (user_name, nombre_empleado, ubicacion, campus, puesto, email, celular)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + empleadoColumns

	e, err := scanEmpleado(q.QueryRow(ctx, query,
		params.UserName, params.NombreEmpleado, params.Ubicacion, params.Campus, params.Puesto, params.Email, params.Celular))
	if err != nil {
		if isUniqueViolation(err) {
			return Empleado{}, apperr.Conflict("user name already registered").WithOp(op)
		}
		return Empleado{}, apperr.Wrap(apperr.KindInternal, "failed to create empleado", err).WithOp(op)
	}
	return e, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Empleado, error) {
	const op = "empleados.repository.GetByID"

	q := db.QuerierFromContext(ctx, r.pool)
	e, err := scanEmpleado(q.QueryRow(ctx, `SELECT `+empleadoColumns+` FROM empleados WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Empleado{}, apperr.NotFound("empleado not found").WithOp(op)
	}
	if err != nil {
		return Empleado{}, apperr.Wrap(apperr.KindInternal, "failed to fetch empleado", err).WithOp(op)
	}
	return e, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (Empleado, error) {
	const op = "empleados.repository.GetByUserName"

	q := db.QuerierFromContext(ctx, r.pool)
	e, err := scanEmpleado(q.QueryRow(ctx, `SELECT `+empleadoColumns+` FROM empleados WHERE user_name = $1`, userName))
	if errors.Is(err, pgx.ErrNoRows) {
		return Empleado{}, apperr.NotFound("empleado not found").WithOp(op)
	}
	if err != nil {
		return Empleado{}, apperr.Wrap(apperr.KindInternal, "failed to fetch empleado", err).WithOp(op)
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Empleado, error) {
	const op = "empleados.repository.List"

	q := db.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT `+empleadoColumns+` FROM empleados ORDER BY nombre_empleado`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list empleados", err).WithOp(op)
	}
	defer rows.Close()

	var items []Empleado
	for rows.Next() {
		e, err := scanEmpleado(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan empleado", err).WithOp(op)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list empleados", err).WithOp(op)
	}
	return items, nil
}
