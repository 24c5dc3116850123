package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"reportes_backend/internal/tareas/repository"
	"reportes_backend/internal/tareas/transport"
	"reportes_backend/platform/apperr"
	"reportes_backend/platform/logger"
)

type fakeRepo struct {
	tasks   map[uuid.UUID]repository.Task
	reports map[uuid.UUID]repository.Report
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:   make(map[uuid.UUID]repository.Task),
		reports: make(map[uuid.UUID]repository.Report),
	}
}

func (f *fakeRepo) CreateTask(_ context.Context, params repository.CreateTaskParams) (repository.Task, error) {
	t := repository.Task{
		ID:           uuid.New(),
		Title:        params.Title,
		Description:  params.Description,
		Priority:     params.Priority,
		Campus:       params.Campus,
		UbicacionID:  params.UbicacionID,
		ReportadoPor: params.ReportadoPor,
		CreatedAt:    time.Now(),
	}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeRepo) GetTask(_ context.Context, id uuid.UUID) (repository.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return repository.Task{}, apperr.NotFound("task not found")
	}
	return t, nil
}

func (f *fakeRepo) ListTasks(_ context.Context, filter repository.ListFilter) ([]repository.Task, error) {
	var out []repository.Task
	for _, t := range f.tasks {
		if filter.Done != nil && t.Done != *filter.Done {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, id uuid.UUID, params repository.UpdateTaskParams) (repository.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return repository.Task{}, apperr.NotFound("task not found")
	}
	if params.Priority != nil {
		t.Priority = *params.Priority
	}
	if params.Done != nil {
		t.Done = *params.Done
	}
	if params.ResolvedAt != nil {
		t.ResolvedAt = params.ResolvedAt
	}
	if params.ResueltoPor != nil {
		t.ResueltoPor = params.ResueltoPor
	}
	f.tasks[id] = t
	return t, nil
}

func (f *fakeRepo) DeleteTask(_ context.Context, id uuid.UUID) error {
	delete(f.tasks, id)
	return nil
}

func (f *fakeRepo) CreateReport(_ context.Context, params repository.CreateReportParams) (repository.Report, error) {
	fecha := params.FechaResolucion
	r := repository.Report{
		ID:              uuid.New(),
		TaskID:          params.TaskID,
		Title:           params.Title,
		Description:     params.Description,
		FechaResolucion: &fecha,
		CreatedAt:       time.Now(),
	}
	f.reports[r.ID] = r
	return r, nil
}

func (f *fakeRepo) GetReport(_ context.Context, id uuid.UUID) (repository.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	return r, nil
}

type fakeUbicacionCreator struct {
	created int
	err     error
}

func (f *fakeUbicacionCreator) CreateProcessing(context.Context, string, *float64, *float64) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.created++
	return uuid.New(), nil
}

type fakeActors struct {
	id uuid.UUID
}

func (f *fakeActors) ResolveActorID(context.Context, string) *uuid.UUID {
	if f.id == uuid.Nil {
		return nil
	}
	id := f.id
	return &id
}

type fakeProgress struct {
	entries []ProgressEntry
	err     error
}

func (f *fakeProgress) LogReportProgress(_ context.Context, entry ProgressEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

// passthroughTx runs the function without a real transaction, so OnCommit
// callbacks fire immediately.
type passthroughTx struct{}

func (passthroughTx) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newService(repo repository.Repository, ubicacion UbicacionCreator, actors ActorResolver) *Service {
	return New(repo, passthroughTx{}, ubicacion, actors, logger.New("test"))
}

func TestCreateRequiresExactlyOneUbicacion(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeUbicacionCreator{}, &fakeActors{})

	existing := uuid.New()
	cases := []struct {
		name string
		req  transport.CreateTaskRequest
	}{
		{"neither", transport.CreateTaskRequest{Title: "Fuga de agua", Priority: repository.PriorityAlta}},
		{"both", transport.CreateTaskRequest{
			Title:       "Fuga de agua",
			Priority:    repository.PriorityAlta,
			UbicacionID: &existing,
			Ubicacion:   &transport.InlineUbicacion{Nombre: "Edificio A"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req, "jdoe")
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateWithInlineUbicacion(t *testing.T) {
	repo := newFakeRepo()
	creator := &fakeUbicacionCreator{}
	actorID := uuid.New()
	svc := newService(repo, creator, &fakeActors{id: actorID})

	lat, lon := 19.4326, -99.1332
	resp, err := svc.Create(context.Background(), transport.CreateTaskRequest{
		Title:    "Lampara fundida",
		Priority: repository.PriorityMedia,
		Ubicacion: &transport.InlineUbicacion{
			Nombre: "Pasillo norte",
			Lat:    &lat,
			Lon:    &lon,
		},
	}, "jdoe")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if creator.created != 1 {
		t.Fatalf("expected one inline ubicacion, got %d", creator.created)
	}
	if resp.UbicacionID == uuid.Nil {
		t.Fatal("expected a ubicacion ID on the task")
	}
	if resp.ReportadoPor == nil || *resp.ReportadoPor != actorID {
		t.Fatalf("expected reportadoPor %s, got %v", actorID, resp.ReportadoPor)
	}
}

func TestCreateInlineUbicacionFailureAborts(t *testing.T) {
	repo := newFakeRepo()
	creator := &fakeUbicacionCreator{err: errors.New("insert failed")}
	svc := newService(repo, creator, &fakeActors{})

	_, err := svc.Create(context.Background(), transport.CreateTaskRequest{
		Title:     "Lampara fundida",
		Priority:  repository.PriorityBaja,
		Ubicacion: &transport.InlineUbicacion{Nombre: "Pasillo norte"},
	}, "jdoe")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("expected no task persisted, got %d", len(repo.tasks))
	}
}

func TestCreateReportClosesTaskAndLogsProgress(t *testing.T) {
	repo := newFakeRepo()
	actorID := uuid.New()
	svc := newService(repo, &fakeUbicacionCreator{}, &fakeActors{id: actorID})
	progress := &fakeProgress{}
	svc.SetProgressLogger(progress)

	task, err := repo.CreateTask(context.Background(), repository.CreateTaskParams{
		Title:       "Fuga de agua",
		Priority:    repository.PriorityAlta,
		UbicacionID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	resp, err := svc.CreateReport(context.Background(), task.ID, transport.CreateReportRequest{
		Title:       "Reparacion completada",
		Description: "Se cambio la tuberia dañada.",
	}, "jdoe")
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	closed := repo.tasks[task.ID]
	if !closed.Done {
		t.Fatal("expected task marked done")
	}
	if closed.ResolvedAt == nil {
		t.Fatal("expected resolvedAt to be stamped")
	}
	if closed.ResueltoPor == nil || *closed.ResueltoPor != actorID {
		t.Fatalf("expected resueltoPor %s, got %v", actorID, closed.ResueltoPor)
	}

	if len(progress.entries) != 1 {
		t.Fatalf("expected one progress entry, got %d", len(progress.entries))
	}
	entry := progress.entries[0]
	if entry.TaskID != task.ID || entry.ReportID != resp.ID {
		t.Fatalf("unexpected progress entry %+v", entry)
	}
	if entry.Title != "Reparacion completada" || entry.ActorUserName != "jdoe" {
		t.Fatalf("unexpected progress entry %+v", entry)
	}
}

func TestCreateReportConflictWhenAlreadyResolved(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeUbicacionCreator{}, &fakeActors{})

	task, _ := repo.CreateTask(context.Background(), repository.CreateTaskParams{
		Title:       "Fuga de agua",
		Priority:    repository.PriorityAlta,
		UbicacionID: uuid.New(),
	})
	done := true
	if _, err := repo.UpdateTask(context.Background(), task.ID, repository.UpdateTaskParams{Done: &done}); err != nil {
		t.Fatalf("seed update: %v", err)
	}

	_, err := svc.CreateReport(context.Background(), task.ID, transport.CreateReportRequest{
		Title:       "Reparacion completada",
		Description: "Duplicado.",
	}, "jdoe")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.reports) != 0 {
		t.Fatalf("expected no report persisted, got %d", len(repo.reports))
	}
}

func TestCreateReportSurvivesProgressFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeUbicacionCreator{}, &fakeActors{})
	svc.SetProgressLogger(&fakeProgress{err: errors.New("orchestrator down")})

	task, _ := repo.CreateTask(context.Background(), repository.CreateTaskParams{
		Title:       "Fuga de agua",
		Priority:    repository.PriorityAlta,
		UbicacionID: uuid.New(),
	})

	resp, err := svc.CreateReport(context.Background(), task.ID, transport.CreateReportRequest{
		Title:       "Reparacion completada",
		Description: "Se cambio la tuberia.",
	}, "jdoe")
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if _, ok := repo.reports[resp.ID]; !ok {
		t.Fatal("expected report persisted despite progress failure")
	}
	if !repo.tasks[task.ID].Done {
		t.Fatal("expected task closed despite progress failure")
	}
}

func TestCreateReportWithoutProgressLogger(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeUbicacionCreator{}, &fakeActors{})

	task, _ := repo.CreateTask(context.Background(), repository.CreateTaskParams{
		Title:       "Fuga de agua",
		Priority:    repository.PriorityAlta,
		UbicacionID: uuid.New(),
	})

	if _, err := svc.CreateReport(context.Background(), task.ID, transport.CreateReportRequest{
		Title:       "Reparacion completada",
		Description: "Sin orquestador.",
	}, "jdoe"); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
}

func TestUpdateDoneStampsResolution(t *testing.T) {
	repo := newFakeRepo()
	actorID := uuid.New()
	svc := newService(repo, &fakeUbicacionCreator{}, &fakeActors{id: actorID})

	task, _ := repo.CreateTask(context.Background(), repository.CreateTaskParams{
		Title:       "Fuga de agua",
		Priority:    repository.PriorityAlta,
		UbicacionID: uuid.New(),
	})

	done := true
	resp, err := svc.Update(context.Background(), task.ID, transport.UpdateTaskRequest{Done: &done}, "jdoe")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !resp.Done || resp.ResolvedAt == nil {
		t.Fatalf("expected done with resolution stamp, got %+v", resp)
	}
	if resp.ResueltoPor == nil || *resp.ResueltoPor != actorID {
		t.Fatalf("expected resueltoPor %s, got %v", actorID, resp.ResueltoPor)
	}
}
