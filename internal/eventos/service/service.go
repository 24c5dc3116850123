package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reportes_backend/internal/events"
	"reportes_backend/internal/eventos/repository"
	"reportes_backend/internal/eventos/transport"
	"reportes_backend/internal/notification"
	"reportes_backend/internal/scheduler"
	"reportes_backend/platform/apperr"
	"reportes_backend/platform/db"
	"reportes_backend/platform/logger"
)

// compromisoOffset is how far in the future the automatic follow-up
// compromiso is dated.
const compromisoOffset = 7 * 24 * time.Hour

// TaskInfo is the slice of a task the orchestrator needs.
type TaskInfo struct {
	ID     uuid.UUID
	Titulo string
}

// TaskReader resolves tasks owned by another module.
type TaskReader interface {
	GetTaskInfo(ctx context.Context, id uuid.UUID) (TaskInfo, error)
}

// Contact is an empleado's notification details.
type Contact struct {
	Nombre   string
	Email    string
	Telefono string
}

// EmpleadoDirectory resolves acting users and contact details.
type EmpleadoDirectory interface {
	ResolveActorID(ctx context.Context, userName string) *uuid.UUID
	GetContact(ctx context.Context, id uuid.UUID) (Contact, bool)
}

// ReportReader loads the closing report text for notifications.
type ReportReader interface {
	GetReportContent(ctx context.Context, id uuid.UUID) (string, bool)
}

// Notifier fans a progress notification out to its channels.
type Notifier interface {
	Dispatch(ctx context.Context, input notification.Input) notification.Result
}

// Transactor runs a function inside a database transaction with
// post-commit hook support.
type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateEventoInput is the orchestrator's entry payload.
type CreateEventoInput struct {
	TaskID           uuid.UUID
	Descripcion      string
	ReportID         *uuid.UUID
	ActorUserName    string
	ParticipanteIDs  []uuid.UUID
	NewParticipantes []transport.NewParticipante
}

// Service orchestrates progress eventos: persistence, the automatic
// follow-up compromiso and asynchronous notification.
type Service struct {
	repo      repository.Repository
	tx        Transactor
	jobs      scheduler.JobScheduler
	bus       events.Bus
	notifier  Notifier
	tasks     TaskReader
	empleados EmpleadoDirectory
	reports   ReportReader
	log       *logger.Logger
}

// New creates a new eventos service.
func New(repo repository.Repository, tx Transactor, jobs scheduler.JobScheduler, bus events.Bus, notifier Notifier, tasks TaskReader, empleados EmpleadoDirectory, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		tx:        tx,
		jobs:      jobs,
		bus:       bus,
		notifier:  notifier,
		tasks:     tasks,
		empleados: empleados,
		log:       log,
	}
}

// SetReportReader attaches the report port. Wired late because the tareas
// module is constructed after this one.
func (s *Service) SetReportReader(r ReportReader) {
	s.reports = r
}

// CreateEvento records a progress evento on a task. In one transaction it
// inserts the evento, attaches participants (unresolvable ids are skipped,
// inline ones created), and creates the automatic follow-up compromiso one
// week out. The notification enqueue registers as a post-commit hook.
// Participant, compromiso and scheduling failures are logged and swallowed;
// the evento itself always persists once the task resolves.
func (s *Service) CreateEvento(ctx context.Context, input CreateEventoInput) (transport.EventoResponse, error) {
	var (
		created      repository.Evento
		participants []repository.Participante
	)

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetTaskInfo(ctx, input.TaskID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.Validation("task does not exist")
			}
			return err
		}

		actorID := s.empleados.ResolveActorID(ctx, input.ActorUserName)

		ev, err := s.repo.CreateEvento(ctx, repository.CreateEventoParams{
			TaskID:      input.TaskID,
			Descripcion: input.Descripcion,
			CreadoPor:   actorID,
			ReportID:    input.ReportID,
		})
		if err != nil {
			return err
		}
		created = ev

		participants = s.attachParticipants(ctx, ev.ID, input)
		s.createFollowUpCompromiso(ctx, ev, task, actorID, participants)

		db.OnCommit(ctx, func(ctx context.Context) {
			if err := s.jobs.EnqueueEventNotifications(ctx, ev.ID, input.ReportID); err != nil {
				s.log.JobEvent(scheduler.TaskEventNotifications, false, "enqueue failed: "+err.Error())
			}
			s.bus.Publish(ctx, events.EventoCreated{
				BaseEvent: events.NewBaseEvent(),
				EventoID:  ev.ID,
				TaskID:    ev.TaskID,
				ReportID:  input.ReportID,
			})
		})
		return nil
	})
	if err != nil {
		return transport.EventoResponse{}, err
	}

	resp := toEventoResponse(created)
	resp.Participantes = toParticipanteResponses(participants)
	return resp, nil
}

// attachParticipants links referenced participants (skipping ids that do not
// resolve) and creates the inline ones. Each attachment runs in its own
// savepoint so one failure cannot take the evento down with it.
func (s *Service) attachParticipants(ctx context.Context, eventoID uuid.UUID, input CreateEventoInput) []repository.Participante {
	var attached []repository.Participante

	for _, id := range input.ParticipanteIDs {
		err := db.WithSavepoint(ctx, func(ctx context.Context) error {
			p, err := s.repo.GetParticipante(ctx, id)
			if err != nil {
				return err
			}
			if err := s.repo.AttachEventoParticipante(ctx, eventoID, id); err != nil {
				return err
			}
			attached = append(attached, p)
			return nil
		})
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				s.log.Warn("skipping unresolvable participante", "participante_id", id, "evento_id", eventoID)
			} else {
				s.log.Error("failed to attach participante", "participante_id", id, "evento_id", eventoID, "error", err)
			}
		}
	}

	for _, np := range input.NewParticipantes {
		err := db.WithSavepoint(ctx, func(ctx context.Context) error {
			p, err := s.repo.CreateParticipante(ctx, repository.CreateParticipanteParams{
				Nombre:   np.Nombre,
				Rol:      np.Rol,
				Telefono: np.Telefono,
				Email:    np.Email,
			})
			if err != nil {
				return err
			}
			if err := s.repo.AttachEventoParticipante(ctx, eventoID, p.ID); err != nil {
				return err
			}
			attached = append(attached, p)
			return nil
		})
		if err != nil {
			s.log.Error("failed to create inline participante", "evento_id", eventoID, "error", err)
		}
	}

	return attached
}

// createFollowUpCompromiso dates the automatic compromiso one week from the
// evento and copies its participants over. Failure is logged, never fatal.
func (s *Service) createFollowUpCompromiso(ctx context.Context, ev repository.Evento, task TaskInfo, actorID *uuid.UUID, participants []repository.Participante) {
	err := db.WithSavepoint(ctx, func(ctx context.Context) error {
		descripcion := fmt.Sprintf("Dar seguimiento al avance %s registrado el %s en la tarea '%s'.",
			ev.ID, ev.CreatedAt.Format("02/01/2006"), task.Titulo)

		c, err := s.repo.CreateCompromiso(ctx, repository.CreateCompromisoParams{
			EventoID:        &ev.ID,
			TaskID:          ev.TaskID,
			Descripcion:     descripcion,
			FechaCompromiso: ev.CreatedAt.Add(compromisoOffset),
			CreadoPor:       actorID,
		})
		if err != nil {
			return err
		}
		for _, p := range participants {
			if err := s.repo.AttachCompromisoParticipante(ctx, c.ID, p.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to create follow-up compromiso", "evento_id", ev.ID, "error", err)
	}
}

// LogReportProgress is the port the tareas report-close path calls. The
// evento text is the report write-up and the evento links back to it.
func (s *Service) LogReportProgress(ctx context.Context, taskID, reportID uuid.UUID, description, actorUserName string) error {
	_, err := s.CreateEvento(ctx, CreateEventoInput{
		TaskID:        taskID,
		Descripcion:   description,
		ReportID:      &reportID,
		ActorUserName: actorUserName,
	})
	return err
}

// Notify is the notification job body. It loads the evento aggregate and
// hands it to the dispatcher. A missing evento or task is a no-op; the
// dispatcher itself never errors.
func (s *Service) Notify(ctx context.Context, eventoID uuid.UUID, reportID *uuid.UUID) error {
	ev, err := s.repo.GetEvento(ctx, eventoID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.JobEvent(scheduler.TaskEventNotifications, true, "evento "+eventoID.String()+" no longer exists")
			return nil
		}
		return err
	}

	task, err := s.tasks.GetTaskInfo(ctx, ev.TaskID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.JobEvent(scheduler.TaskEventNotifications, true, "task for evento "+eventoID.String()+" no longer exists")
			return nil
		}
		return err
	}

	input := notification.Input{
		EventoID:    ev.ID,
		Tarea:       notification.Tarea{ID: task.ID, Titulo: task.Titulo},
		Descripcion: ev.Descripcion,
	}

	if ev.CreadoPor != nil {
		if contact, ok := s.empleados.GetContact(ctx, *ev.CreadoPor); ok {
			input.Empleado = &notification.Persona{
				Nombre:   contact.Nombre,
				Email:    contact.Email,
				Telefono: contact.Telefono,
			}
		}
	}

	participantes, err := s.repo.ListEventoParticipantes(ctx, ev.ID)
	if err != nil {
		s.log.Error("failed to load participantes for notification", "evento_id", ev.ID, "error", err)
	}
	for _, p := range participantes {
		input.Participantes = append(input.Participantes, notification.Persona{
			Nombre:   p.Nombre,
			Email:    p.Email,
			Telefono: p.Telefono,
		})
	}

	if reportID == nil {
		reportID = ev.ReportID
	}
	if reportID != nil && s.reports != nil {
		if content, ok := s.reports.GetReportContent(ctx, *reportID); ok {
			input.ReportContent = content
		}
	}

	res := s.notifier.Dispatch(ctx, input)
	s.log.JobEvent(scheduler.TaskEventNotifications, true,
		fmt.Sprintf("evento %s: %d emails, %d messages", ev.ID, res.EmailsSent, res.MessagesSent))
	return nil
}

// GetEvento retrieves an evento with its participants.
func (s *Service) GetEvento(ctx context.Context, id uuid.UUID) (transport.EventoResponse, error) {
	ev, err := s.repo.GetEvento(ctx, id)
	if err != nil {
		return transport.EventoResponse{}, err
	}
	participantes, err := s.repo.ListEventoParticipantes(ctx, id)
	if err != nil {
		return transport.EventoResponse{}, err
	}

	resp := toEventoResponse(ev)
	resp.Participantes = toParticipanteResponses(participantes)
	return resp, nil
}

// ListEventos retrieves eventos, optionally scoped to a task.
func (s *Service) ListEventos(ctx context.Context, taskID *uuid.UUID) (transport.EventoListResponse, error) {
	items, err := s.repo.ListEventos(ctx, repository.EventoFilter{TaskID: taskID})
	if err != nil {
		return transport.EventoListResponse{}, err
	}

	resp := transport.EventoListResponse{
		Items: make([]transport.EventoResponse, 0, len(items)),
		Total: len(items),
	}
	for _, ev := range items {
		resp.Items = append(resp.Items, toEventoResponse(ev))
	}
	return resp, nil
}

func toEventoResponse(ev repository.Evento) transport.EventoResponse {
	return transport.EventoResponse{
		ID:          ev.ID,
		TaskID:      ev.TaskID,
		Descripcion: ev.Descripcion,
		CreadoPor:   ev.CreadoPor,
		ReportID:    ev.ReportID,
		CreatedAt:   ev.CreatedAt.Format(time.RFC3339),
	}
}

func toParticipanteResponses(items []repository.Participante) []transport.ParticipanteResponse {
	if len(items) == 0 {
		return nil
	}
	out := make([]transport.ParticipanteResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toParticipanteResponse(p))
	}
	return out
}

func toParticipanteResponse(p repository.Participante) transport.ParticipanteResponse {
	return transport.ParticipanteResponse{
		ID:       p.ID,
		Nombre:   p.Nombre,
		Rol:      p.Rol,
		Telefono: p.Telefono,
		Email:    p.Email,
	}
}
