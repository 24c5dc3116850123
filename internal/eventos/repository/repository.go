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

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

const eventoColumns = "id, task_id, descripcion, creado_por, report_id, created_at"

func scanEvento(row pgx.Row) (Evento, error) {
	var e Evento
	err := row.Scan(&e.ID, &e.TaskID, &e.Descripcion, &e.CreadoPor, &e.ReportID, &e.CreatedAt)
	return e, err
}

func (r *PostgresRepository) CreateEvento(ctx context.Context, params CreateEventoParams) (Evento, error) {
	const op = "eventos.repository.CreateEvento"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO eventos (task_id, descripcion, creado_por, report_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + eventoColumns

	e, err := scanEvento(q.QueryRow(ctx, query, params.TaskID, params.Descripcion, params.CreadoPor, params.ReportID))
	if err != nil {
		if isForeignKeyViolation(err) {
			return Evento{}, apperr.Validation("task does not exist").WithOp(op)
		}
		return Evento{}, apperr.Wrap(apperr.KindInternal, "failed to create evento", err).WithOp(op)
	}
	return e, nil
}

func (r *PostgresRepository) GetEvento(ctx context.Context, id uuid.UUID) (Evento, error) {
	const op = "eventos.repository.GetEvento"

	q := db.QuerierFromContext(ctx, r.pool)
	e, err := scanEvento(q.QueryRow(ctx, `SELECT `+eventoColumns+` FROM eventos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evento{}, apperr.NotFound("evento not found").WithOp(op)
	}
	if err != nil {
		return Evento{}, apperr.Wrap(apperr.KindInternal, "failed to fetch evento", err).WithOp(op)
	}
	return e, nil
}

func (r *PostgresRepository) ListEventos(ctx context.Context, filter EventoFilter) ([]Evento, error) {
	const op = "eventos.repository.ListEventos"

	query := `SELECT ` + eventoColumns + ` FROM eventos`
	var args []any
	if filter.TaskID != nil {
		query += ` WHERE task_id = $1`
		args = append(args, *filter.TaskID)
	}
	query += ` ORDER BY created_at DESC`

	q := db.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list eventos", err).WithOp(op)
	}
	defer rows.Close()

	var items []Evento
	for rows.Next() {
		e, err := scanEvento(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan evento", err).WithOp(op)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list eventos", err).WithOp(op)
	}
	return items, nil
}

const compromisoColumns = "id, evento_id, task_id, descripcion, fecha_compromiso, cumplido, creado_por, created_at"

func scanCompromiso(row pgx.Row) (Compromiso, error) {
	var c Compromiso
	err := row.Scan(&c.ID, &c.EventoID, &c.TaskID, &c.Descripcion, &c.FechaCompromiso, &c.Cumplido, &c.CreadoPor, &c.CreatedAt)
	return c, err
}

func (r *PostgresRepository) CreateCompromiso(ctx context.Context, params CreateCompromisoParams) (Compromiso, error) {
	const op = "eventos.repository.CreateCompromiso"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO compromisos (evento_id, task_id, descripcion, fecha_compromiso, creado_por)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + compromisoColumns

	c, err := scanCompromiso(q.QueryRow(ctx, query,
		params.EventoID, params.TaskID, params.Descripcion, params.FechaCompromiso, params.CreadoPor))
	if err != nil {
		if isForeignKeyViolation(err) {
			return Compromiso{}, apperr.Validation("task or evento does not exist").WithOp(op)
		}
		return Compromiso{}, apperr.Wrap(apperr.KindInternal, "failed to create compromiso", err).WithOp(op)
	}
	return c, nil
}

func (r *PostgresRepository) GetCompromiso(ctx context.Context, id uuid.UUID) (Compromiso, error) {
	const op = "eventos.repository.GetCompromiso"

	q := db.QuerierFromContext(ctx, r.pool)
	c, err := scanCompromiso(q.QueryRow(ctx, `SELECT `+compromisoColumns+` FROM compromisos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Compromiso{}, apperr.NotFound("compromiso not found").WithOp(op)
	}
	if err != nil {
		return Compromiso{}, apperr.Wrap(apperr.KindInternal, "failed to fetch compromiso", err).WithOp(op)
	}
	return c, nil
}

func (r *PostgresRepository) ListCompromisos(ctx context.Context, filter CompromisoFilter) ([]Compromiso, error) {
	const op = "eventos.repository.ListCompromisos"

	query := `SELECT ` + compromisoColumns + ` FROM compromisos`
	var args []any
	var where []string
	if filter.TaskID != nil {
		args = append(args, *filter.TaskID)
		where = append(where, fmt.Sprintf("task_id = $%d", len(args)))
	}
	if filter.Cumplido != nil {
		args = append(args, *filter.Cumplido)
		where = append(where, fmt.Sprintf("cumplido = $%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += ` ORDER BY fecha_compromiso ASC`

	q := db.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list compromisos", err).WithOp(op)
	}
	defer rows.Close()

	var items []Compromiso
	for rows.Next() {
		c, err := scanCompromiso(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan compromiso", err).WithOp(op)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list compromisos", err).WithOp(op)
	}
	return items, nil
}

func (r *PostgresRepository) UpdateCompromiso(ctx context.Context, id uuid.UUID, params UpdateCompromisoParams) (Compromiso, error) {
	const op = "eventos.repository.UpdateCompromiso"

	var set []string
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Descripcion != nil {
		add("descripcion", *params.Descripcion)
	}
	if params.FechaCompromiso != nil {
		add("fecha_compromiso", *params.FechaCompromiso)
	}
	if params.Cumplido != nil {
		add("cumplido", *params.Cumplido)
	}
	if len(set) == 0 {
		return r.GetCompromiso(ctx, id)
	}

	query := `UPDATE compromisos SET ` + set[0]
	for _, s := range set[1:] {
		query += ", " + s
	}
	query += ` WHERE id = $1 RETURNING ` + compromisoColumns

	q := db.QuerierFromContext(ctx, r.pool)
	c, err := scanCompromiso(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Compromiso{}, apperr.NotFound("compromiso not found").WithOp(op)
	}
	if err != nil {
		return Compromiso{}, apperr.Wrap(apperr.KindInternal, "failed to update compromiso", err).WithOp(op)
	}
	return c, nil
}

func (r *PostgresRepository) DeleteCompromiso(ctx context.Context, id uuid.UUID) error {
	const op = "eventos.repository.DeleteCompromiso"

	q := db.QuerierFromContext(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM compromisos WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete compromiso", err).WithOp(op)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("compromiso not found").WithOp(op)
	}
	return nil
}

const participanteColumns = "id, nombre, rol, telefono, email"

func scanParticipante(row pgx.Row) (Participante, error) {
	var p Participante
	err := row.Scan(&p.ID, &p.Nombre, &p.Rol, &p.Telefono, &p.Email)
	return p, err
}

func (r *PostgresRepository) CreateParticipante(ctx context.Context, params CreateParticipanteParams) (Participante, error) {
	const op = "eventos.repository.CreateParticipante"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO participantes (nombre, rol, telefono, email)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + participanteColumns

	p, err := scanParticipante(q.QueryRow(ctx, query, params.Nombre, params.Rol, params.Telefono, params.Email))
	if err != nil {
		return Participante{}, apperr.Wrap(apperr.KindInternal, "failed to create participante", err).WithOp(op)
	}
	return p, nil
}

func (r *PostgresRepository) GetParticipante(ctx context.Context, id uuid.UUID) (Participante, error) {
	const op = "eventos.repository.GetParticipante"

	q := db.QuerierFromContext(ctx, r.pool)
	p, err := scanParticipante(q.QueryRow(ctx, `SELECT `+participanteColumns+` FROM participantes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Participante{}, apperr.NotFound("participante not found").WithOp(op)
	}
	if err != nil {
		return Participante{}, apperr.Wrap(apperr.KindInternal, "failed to fetch participante", err).WithOp(op)
	}
	return p, nil
}

func (r *PostgresRepository) ListParticipantes(ctx context.Context) ([]Participante, error) {
	const op = "eventos.repository.ListParticipantes"

	q := db.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT `+participanteColumns+` FROM participantes ORDER BY nombre`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list participantes", err).WithOp(op)
	}
	defer rows.Close()

	return collectParticipantes(rows, op)
}

func (r *PostgresRepository) AttachEventoParticipante(ctx context.Context, eventoID, participanteID uuid.UUID) error {
	const op = "eventos.repository.AttachEventoParticipante"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO evento_participantes (evento_id, participante_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := q.Exec(ctx, query, eventoID, participanteID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to attach participante", err).WithOp(op)
	}
	return nil
}

func (r *PostgresRepository) ListEventoParticipantes(ctx context.Context, eventoID uuid.UUID) ([]Participante, error) {
	const op = "eventos.repository.ListEventoParticipantes"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		SELECT p.id, p.nombre, p.rol, p.telefono, p.email
		FROM participantes p
		JOIN evento_participantes ep ON ep.participante_id = p.id
		WHERE ep.evento_id = $1
		ORDER BY p.nombre`

	rows, err := q.Query(ctx, query, eventoID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list evento participantes", err).WithOp(op)
	}
	defer rows.Close()

	return collectParticipantes(rows, op)
}

func (r *PostgresRepository) AttachCompromisoParticipante(ctx context.Context, compromisoID, participanteID uuid.UUID) error {
	const op = "eventos.repository.AttachCompromisoParticipante"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		INSERT INTO compromiso_participantes (compromiso_id, participante_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := q.Exec(ctx, query, compromisoID, participanteID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to attach participante", err).WithOp(op)
	}
	return nil
}

func (r *PostgresRepository) ListCompromisoParticipantes(ctx context.Context, compromisoID uuid.UUID) ([]Participante, error) {
	const op = "eventos.repository.ListCompromisoParticipantes"

	q := db.QuerierFromContext(ctx, r.pool)
	query := `
		SELECT p.id, p.nombre, p.rol, p.telefono, p.email
		FROM participantes p
		JOIN compromiso_participantes cp ON cp.participante_id = p.id
		WHERE cp.compromiso_id = $1
		ORDER BY p.nombre`

	rows, err := q.Query(ctx, query, compromisoID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list compromiso participantes", err).WithOp(op)
	}
	defer rows.Close()

	return collectParticipantes(rows, op)
}

func collectParticipantes(rows pgx.Rows, op string) ([]Participante, error) {
	var items []Participante
	for rows.Next() {
		p, err := scanParticipante(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan participante", err).WithOp(op)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read participantes", err).WithOp(op)
	}
	return items, nil
}
