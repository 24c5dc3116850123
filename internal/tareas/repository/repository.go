package repository

import (
	"context"
	"errors"
	"fmt"

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

const taskColumns = "id, title, description, priority, done, campus, ubicacion_id, reportado_por, resuelto_por, created_at, resolved_at"

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Done, &t.Campus,
		&t.UbicacionID, &t.ReportadoPor, &t.ResueltoPor, &t.CreatedAt, &t.ResolvedAt)
	return t, err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (r *PostgresRepository) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	const op = "tareas.repository.CreateTask"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO tareas (title, description, priority, campus, ubicacion_id, reportado_por)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + taskColumns

	t, err := scanTask(q.QueryRow(ctx, query,
		params.Title, params.Description, params.Priority, params.Campus, params.UbicacionID, params.ReportadoPor))
	if err != nil {
		if isForeignKeyViolation(err) {
			return Task{}, apperr.Validation("ubicacion does not exist").WithOp(op)
		}
		return Task{}, apperr.Wrap(apperr.KindInternal, "failed to create task", err).WithOp(op)
	}
	return t, nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	const op = "tareas.repository.GetTask"

	q := db.QuerierFromContext(ctx, r.pool)
	t, err := scanTask(q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tareas WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, apperr.NotFound("task not found").WithOp(op)
	}
	if err != nil {
		return Task{}, apperr.Wrap(apperr.KindInternal, "failed to fetch task", err).WithOp(op)
	}
	return t, nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, filter ListFilter) ([]Task, error) {
	const op = "tareas.repository.ListTasks"

	query := `SELECT ` + taskColumns + ` FROM tareas`
	var args []any
	if filter.Done != nil {
		query += ` WHERE done = $1`
		args = append(args, *filter.Done)
	}
	query += ` ORDER BY created_at DESC`

	q := db.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list tasks", err).WithOp(op)
	}
	defer rows.Close()

	var items []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan task", err).WithOp(op)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list tasks", err).WithOp(op)
	}
	return items, nil
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (Task, error) {
	const op = "tareas.repository.UpdateTask"

	set := make([]string, 0, 4)
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Priority != nil {
		add("priority", *params.Priority)
	}
	if params.Done != nil {
		add("done", *params.Done)
		add("resolved_at", params.ResolvedAt)
		add("resuelto_por", params.ResueltoPor)
	}
	if len(set) == 0 {
		return r.GetTask(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE tareas SET %s WHERE id = $1 RETURNING %s`,
		joinSet(set), taskColumns)

	q := db.QuerierFromContext(ctx, r.pool)
	t, err := scanTask(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, apperr.NotFound("task not found").WithOp(op)
	}
	if err != nil {
		return Task{}, apperr.Wrap(apperr.KindInternal, "failed to update task", err).WithOp(op)
	}
	return t, nil
}

func joinSet(set []string) string {
	out := set[0]
	for _, s := range set[1:] {
		out += ", " + s
	}
	return out
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	const op = "tareas.repository.DeleteTask"

	q := db.QuerierFromContext(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM tareas WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete task", err).WithOp(op)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task not found").WithOp(op)
	}
	return nil
}

const reportColumns = "id, task_id, title, description, fecha_resolucion, created_at"

func scanReport(row pgx.Row) (Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.TaskID, &rep.Title, &rep.Description, &rep.FechaResolucion, &rep.CreatedAt)
	return rep, err
}

func (r *PostgresRepository) CreateReport(ctx context.Context, params CreateReportParams) (Report, error) {
	const op = "tareas.repository.CreateReport"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO reports (task_id, title, description, fecha_resolucion)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reportColumns

	rep, err := scanReport(q.QueryRow(ctx, query,
		params.TaskID, params.Title, params.Description, params.FechaResolucion))
	if err != nil {
		if isForeignKeyViolation(err) {
			return Report{}, apperr.Validation("task does not exist").WithOp(op)
		}
		return Report{}, apperr.Wrap(apperr.KindInternal, "failed to create report", err).WithOp(op)
	}
	return rep, nil
}

func (r *PostgresRepository) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	const op = "tareas.repository.GetReport"

	q := db.QuerierFromContext(ctx, r.pool)
	rep, err := scanReport(q.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, apperr.NotFound("report not found").WithOp(op)
	}
	if err != nil {
		return Report{}, apperr.Wrap(apperr.KindInternal, "failed to fetch report", err).WithOp(op)
	}
	return rep, nil
}
