package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"reportes_backend/internal/eventos/repository"
	"reportes_backend/internal/eventos/transport"
	"reportes_backend/internal/notification"
	"reportes_backend/platform/apperr"
	"reportes_backend/platform/events"
	"reportes_backend/platform/logger"
)

type fakeRepo struct {
	eventos       map[uuid.UUID]repository.Evento
	compromisos   map[uuid.UUID]repository.Compromiso
	participantes map[uuid.UUID]repository.Participante

	eventoParticipantes     map[uuid.UUID][]uuid.UUID
	compromisoParticipantes map[uuid.UUID][]uuid.UUID

	compromisoErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		eventos:                 make(map[uuid.UUID]repository.Evento),
		compromisos:             make(map[uuid.UUID]repository.Compromiso),
		participantes:           make(map[uuid.UUID]repository.Participante),
		eventoParticipantes:     make(map[uuid.UUID][]uuid.UUID),
		compromisoParticipantes: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeRepo) CreateEvento(_ context.Context, params repository.CreateEventoParams) (repository.Evento, error) {
	ev := repository.Evento{
		ID:          uuid.New(),
		TaskID:      params.TaskID,
		Descripcion: params.Descripcion,
		CreadoPor:   params.CreadoPor,
		ReportID:    params.ReportID,
		CreatedAt:   time.Now(),
	}
	f.eventos[ev.ID] = ev
	return ev, nil
}

func (f *fakeRepo) GetEvento(_ context.Context, id uuid.UUID) (repository.Evento, error) {
	ev, ok := f.eventos[id]
	if !ok {
		return repository.Evento{}, apperr.NotFound("evento not found")
	}
	return ev, nil
}

func (f *fakeRepo) ListEventos(_ context.Context, filter repository.EventoFilter) ([]repository.Evento, error) {
	var out []repository.Evento
	for _, ev := range f.eventos {
		if filter.TaskID != nil && ev.TaskID != *filter.TaskID {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeRepo) CreateCompromiso(_ context.Context, params repository.CreateCompromisoParams) (repository.Compromiso, error) {
	if f.compromisoErr != nil {
		return repository.Compromiso{}, f.compromisoErr
	}
	c := repository.Compromiso{
		ID:              uuid.New(),
		EventoID:        params.EventoID,
		TaskID:          params.TaskID,
		Descripcion:     params.Descripcion,
		FechaCompromiso: params.FechaCompromiso,
		CreadoPor:       params.CreadoPor,
		CreatedAt:       time.Now(),
	}
	f.compromisos[c.ID] = c
	return c, nil
}

func (f *fakeRepo) GetCompromiso(_ context.Context, id uuid.UUID) (repository.Compromiso, error) {
	c, ok := f.compromisos[id]
	if !ok {
		return repository.Compromiso{}, apperr.NotFound("compromiso not found")
	}
	return c, nil
}

func (f *fakeRepo) ListCompromisos(_ context.Context, filter repository.CompromisoFilter) ([]repository.Compromiso, error) {
	var out []repository.Compromiso
	for _, c := range f.compromisos {
		if filter.TaskID != nil && c.TaskID != *filter.TaskID {
			continue
		}
		if filter.Cumplido != nil && c.Cumplido != *filter.Cumplido {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) UpdateCompromiso(_ context.Context, id uuid.UUID, params repository.UpdateCompromisoParams) (repository.Compromiso, error) {
	c, ok := f.compromisos[id]
	if !ok {
		return repository.Compromiso{}, apperr.NotFound("compromiso not found")
	}
	if params.Descripcion != nil {
		c.Descripcion = *params.Descripcion
	}
	if params.FechaCompromiso != nil {
		c.FechaCompromiso = *params.FechaCompromiso
	}
	if params.Cumplido != nil {
		c.Cumplido = *params.Cumplido
	}
	f.compromisos[id] = c
	return c, nil
}

func (f *fakeRepo) DeleteCompromiso(_ context.Context, id uuid.UUID) error {
	delete(f.compromisos, id)
	return nil
}

func (f *fakeRepo) CreateParticipante(_ context.Context, params repository.CreateParticipanteParams) (repository.Participante, error) {
	p := repository.Participante{
		ID:       uuid.New(),
		Nombre:   params.Nombre,
		Rol:      params.Rol,
		Telefono: params.Telefono,
		Email:    params.Email,
	}
	f.participantes[p.ID] = p
	return p, nil
}

func (f *fakeRepo) GetParticipante(_ context.Context, id uuid.UUID) (repository.Participante, error) {
	p, ok := f.participantes[id]
	if !ok {
		return repository.Participante{}, apperr.NotFound("participante not found")
	}
	return p, nil
}

func (f *fakeRepo) ListParticipantes(_ context.Context) ([]repository.Participante, error) {
	var out []repository.Participante
	for _, p := range f.participantes {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) AttachEventoParticipante(_ context.Context, eventoID, participanteID uuid.UUID) error {
	f.eventoParticipantes[eventoID] = append(f.eventoParticipantes[eventoID], participanteID)
	return nil
}

func (f *fakeRepo) ListEventoParticipantes(_ context.Context, eventoID uuid.UUID) ([]repository.Participante, error) {
	var out []repository.Participante
	for _, id := range f.eventoParticipantes[eventoID] {
		out = append(out, f.participantes[id])
	}
	return out, nil
}

func (f *fakeRepo) AttachCompromisoParticipante(_ context.Context, compromisoID, participanteID uuid.UUID) error {
	f.compromisoParticipantes[compromisoID] = append(f.compromisoParticipantes[compromisoID], participanteID)
	return nil
}

func (f *fakeRepo) ListCompromisoParticipantes(_ context.Context, compromisoID uuid.UUID) ([]repository.Participante, error) {
	var out []repository.Participante
	for _, id := range f.compromisoParticipantes[compromisoID] {
		out = append(out, f.participantes[id])
	}
	return out, nil
}

type fakeTasks struct {
	tasks map[uuid.UUID]TaskInfo
}

func (f *fakeTasks) GetTaskInfo(_ context.Context, id uuid.UUID) (TaskInfo, error) {
	t, ok := f.tasks[id]
	if !ok {
		return TaskInfo{}, apperr.NotFound("task not found")
	}
	return t, nil
}

type fakeDirectory struct {
	actorID  *uuid.UUID
	contacts map[uuid.UUID]Contact
}

func (f *fakeDirectory) ResolveActorID(context.Context, string) *uuid.UUID {
	return f.actorID
}

func (f *fakeDirectory) GetContact(_ context.Context, id uuid.UUID) (Contact, bool) {
	c, ok := f.contacts[id]
	return c, ok
}

type fakeReports struct {
	content map[uuid.UUID]string
}

func (f *fakeReports) GetReportContent(_ context.Context, id uuid.UUID) (string, bool) {
	c, ok := f.content[id]
	return c, ok
}

type fakeNotifier struct {
	inputs []notification.Input
	result notification.Result
}

func (f *fakeNotifier) Dispatch(_ context.Context, input notification.Input) notification.Result {
	f.inputs = append(f.inputs, input)
	return f.result
}

type notifyEnqueue struct {
	eventoID uuid.UUID
	reportID *uuid.UUID
}

type fakeJobs struct {
	notifications []notifyEnqueue
	err           error
}

func (f *fakeJobs) EnqueueReverseGeocode(context.Context, uuid.UUID, int, time.Duration) error {
	return nil
}

func (f *fakeJobs) EnqueueEventNotifications(_ context.Context, eventoID uuid.UUID, reportID *uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.notifications = append(f.notifications, notifyEnqueue{eventoID: eventoID, reportID: reportID})
	return nil
}

// passthroughTx runs the function without a real transaction, so OnCommit
// callbacks fire immediately.
type passthroughTx struct{}

func (passthroughTx) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	tasks    *fakeTasks
	dir      *fakeDirectory
	jobs     *fakeJobs
	notifier *fakeNotifier
	reports  *fakeReports
	taskID   uuid.UUID
}

func newFixture() *fixture {
	log := logger.New("test")
	repo := newFakeRepo()
	taskID := uuid.New()
	tasks := &fakeTasks{tasks: map[uuid.UUID]TaskInfo{
		taskID: {ID: taskID, Titulo: "Fuga de agua en el edificio B"},
	}}
	dir := &fakeDirectory{contacts: make(map[uuid.UUID]Contact)}
	jobs := &fakeJobs{}
	notifier := &fakeNotifier{}
	reports := &fakeReports{content: make(map[uuid.UUID]string)}

	svc := New(repo, passthroughTx{}, jobs, events.NewInMemoryBus(log), notifier, tasks, dir, log)
	svc.SetReportReader(reports)

	return &fixture{
		svc:      svc,
		repo:     repo,
		tasks:    tasks,
		dir:      dir,
		jobs:     jobs,
		notifier: notifier,
		reports:  reports,
		taskID:   taskID,
	}
}

func TestCreateEventoCreatesFollowUpCompromiso(t *testing.T) {
	fx := newFixture()
	actorID := uuid.New()
	fx.dir.actorID = &actorID

	resp, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:        fx.taskID,
		Descripcion:   "Se revisó la instalación.",
		ActorUserName: "jdoe",
	})
	if err != nil {
		t.Fatalf("CreateEvento: %v", err)
	}

	ev, ok := fx.repo.eventos[resp.ID]
	if !ok {
		t.Fatal("expected evento persisted")
	}
	if ev.CreadoPor == nil || *ev.CreadoPor != actorID {
		t.Fatalf("expected creadoPor %s, got %v", actorID, ev.CreadoPor)
	}

	if len(fx.repo.compromisos) != 1 {
		t.Fatalf("expected one follow-up compromiso, got %d", len(fx.repo.compromisos))
	}
	for _, c := range fx.repo.compromisos {
		if c.EventoID == nil || *c.EventoID != ev.ID {
			t.Fatalf("expected compromiso linked to evento %s, got %v", ev.ID, c.EventoID)
		}
		if want := ev.CreatedAt.Add(7 * 24 * time.Hour); !c.FechaCompromiso.Equal(want) {
			t.Fatalf("expected fecha %s, got %s", want, c.FechaCompromiso)
		}
		if !strings.Contains(c.Descripcion, "Dar seguimiento") || !strings.Contains(c.Descripcion, "Fuga de agua en el edificio B") {
			t.Fatalf("unexpected compromiso description %q", c.Descripcion)
		}
		if !strings.Contains(c.Descripcion, ev.ID.String()) {
			t.Fatalf("description %q does not reference evento %s", c.Descripcion, ev.ID)
		}
		if c.CreadoPor == nil || *c.CreadoPor != actorID {
			t.Fatalf("expected compromiso creadoPor %s, got %v", actorID, c.CreadoPor)
		}
	}

	if len(fx.jobs.notifications) != 1 || fx.jobs.notifications[0].eventoID != ev.ID {
		t.Fatalf("expected one notification enqueue for %s, got %+v", ev.ID, fx.jobs.notifications)
	}
}

func TestCreateEventoUnknownTask(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:      uuid.New(),
		Descripcion: "Se revisó la instalación.",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(fx.repo.eventos) != 0 {
		t.Fatal("expected no evento persisted")
	}
}

func TestCreateEventoSkipsUnresolvableParticipantes(t *testing.T) {
	fx := newFixture()
	known, err := fx.repo.CreateParticipante(context.Background(), repository.CreateParticipanteParams{
		Nombre: "Carlos Mendez",
		Rol:    repository.RolProveedor,
	})
	if err != nil {
		t.Fatalf("seed participante: %v", err)
	}

	resp, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:          fx.taskID,
		Descripcion:     "Se revisó la instalación.",
		ParticipanteIDs: []uuid.UUID{known.ID, uuid.New()},
	})
	if err != nil {
		t.Fatalf("CreateEvento: %v", err)
	}

	if len(resp.Participantes) != 1 || resp.Participantes[0].ID != known.ID {
		t.Fatalf("expected only the known participante, got %+v", resp.Participantes)
	}
	if got := fx.repo.eventoParticipantes[resp.ID]; len(got) != 1 || got[0] != known.ID {
		t.Fatalf("expected one attachment, got %v", got)
	}
}

func TestCreateEventoInlineParticipantes(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:      fx.taskID,
		Descripcion: "Se revisó la instalación.",
		NewParticipantes: []transport.NewParticipante{
			{Nombre: "Ana Torres", Rol: repository.RolAutoridad, Email: "ana@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("CreateEvento: %v", err)
	}

	if len(resp.Participantes) != 1 || resp.Participantes[0].Nombre != "Ana Torres" {
		t.Fatalf("expected inline participante, got %+v", resp.Participantes)
	}

	// The follow-up compromiso copies the evento's participants.
	for id := range fx.repo.compromisos {
		if got := fx.repo.compromisoParticipantes[id]; len(got) != 1 {
			t.Fatalf("expected participante copied to compromiso, got %v", got)
		}
	}
}

func TestCreateEventoSurvivesCompromisoFailure(t *testing.T) {
	fx := newFixture()
	fx.repo.compromisoErr = errors.New("insert failed")

	resp, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:      fx.taskID,
		Descripcion: "Se revisó la instalación.",
	})
	if err != nil {
		t.Fatalf("CreateEvento: %v", err)
	}
	if _, ok := fx.repo.eventos[resp.ID]; !ok {
		t.Fatal("expected evento persisted despite compromiso failure")
	}
	if len(fx.jobs.notifications) != 1 {
		t.Fatalf("expected notification still enqueued, got %d", len(fx.jobs.notifications))
	}
}

func TestCreateEventoSurvivesEnqueueFailure(t *testing.T) {
	fx := newFixture()
	fx.jobs.err = errors.New("queue down")

	resp, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:      fx.taskID,
		Descripcion: "Se revisó la instalación.",
	})
	if err != nil {
		t.Fatalf("CreateEvento: %v", err)
	}
	if _, ok := fx.repo.eventos[resp.ID]; !ok {
		t.Fatal("expected evento persisted despite enqueue failure")
	}
}

func TestLogReportProgressLinksReport(t *testing.T) {
	fx := newFixture()
	reportID := uuid.New()

	if err := fx.svc.LogReportProgress(context.Background(), fx.taskID, reportID, "Se cambió la tubería.", "jdoe"); err != nil {
		t.Fatalf("LogReportProgress: %v", err)
	}

	if len(fx.repo.eventos) != 1 {
		t.Fatalf("expected one evento, got %d", len(fx.repo.eventos))
	}
	for _, ev := range fx.repo.eventos {
		if ev.ReportID == nil || *ev.ReportID != reportID {
			t.Fatalf("expected evento linked to report %s, got %v", reportID, ev.ReportID)
		}
	}
	if len(fx.jobs.notifications) != 1 {
		t.Fatalf("expected one enqueue, got %d", len(fx.jobs.notifications))
	}
	if got := fx.jobs.notifications[0].reportID; got == nil || *got != reportID {
		t.Fatalf("expected report id on enqueue, got %v", got)
	}
}

func TestNotifyAssemblesAggregate(t *testing.T) {
	fx := newFixture()
	actorID := uuid.New()
	fx.dir.actorID = &actorID
	fx.dir.contacts[actorID] = Contact{Nombre: "Juan Perez", Email: "juan@example.com", Telefono: "+525512345678"}

	reportID := uuid.New()
	fx.reports.content[reportID] = "Se cambió la tubería dañada."

	participante, _ := fx.repo.CreateParticipante(context.Background(), repository.CreateParticipanteParams{
		Nombre:   "Carlos Mendez",
		Rol:      repository.RolProveedor,
		Telefono: "+525598765432",
	})

	resp, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:          fx.taskID,
		Descripcion:     "Se cambió la tubería dañada.",
		ReportID:        &reportID,
		ActorUserName:   "jperez",
		ParticipanteIDs: []uuid.UUID{participante.ID},
	})
	if err != nil {
		t.Fatalf("CreateEvento: %v", err)
	}

	if err := fx.svc.Notify(context.Background(), resp.ID, nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(fx.notifier.inputs) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(fx.notifier.inputs))
	}
	input := fx.notifier.inputs[0]
	if input.Tarea.Titulo != "Fuga de agua en el edificio B" {
		t.Fatalf("unexpected tarea %+v", input.Tarea)
	}
	if input.Empleado == nil || input.Empleado.Email != "juan@example.com" {
		t.Fatalf("expected empleado contact, got %+v", input.Empleado)
	}
	if len(input.Participantes) != 1 || input.Participantes[0].Telefono != "+525598765432" {
		t.Fatalf("unexpected participantes %+v", input.Participantes)
	}
	// Falls back to the evento's own report link when the job carries none.
	if input.ReportContent != "Se cambió la tubería dañada." {
		t.Fatalf("unexpected report content %q", input.ReportContent)
	}
}

func TestNotifyMissingEventoIsNoop(t *testing.T) {
	fx := newFixture()

	if err := fx.svc.Notify(context.Background(), uuid.New(), nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fx.notifier.inputs) != 0 {
		t.Fatalf("expected no dispatch, got %d", len(fx.notifier.inputs))
	}
}

func TestNotifyMissingTaskIsNoop(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.CreateEvento(context.Background(), CreateEventoInput{
		TaskID:      fx.taskID,
		Descripcion: "Se revisó la instalación.",
	})
	if err != nil {
		t.Fatalf("CreateEvento: %v", err)
	}
	delete(fx.tasks.tasks, fx.taskID)

	if err := fx.svc.Notify(context.Background(), resp.ID, nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fx.notifier.inputs) != 0 {
		t.Fatalf("expected no dispatch, got %d", len(fx.notifier.inputs))
	}
}
