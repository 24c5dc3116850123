package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"reportes_backend/internal/geocode"
	"reportes_backend/internal/ubicaciones/repository"
	"reportes_backend/internal/ubicaciones/transport"
	"reportes_backend/platform/apperr"
	platformevents "reportes_backend/platform/events"
	"reportes_backend/platform/logger"
)

type fakeRepo struct {
	rows map[uuid.UUID]repository.Ubicacion
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[uuid.UUID]repository.Ubicacion)}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Ubicacion, error) {
	u := repository.Ubicacion{
		ID:        uuid.New(),
		Nombre:    params.Nombre,
		Lat:       params.Lat,
		Lon:       params.Lon,
		Status:    params.Status,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	f.rows[u.ID] = u
	return u, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Ubicacion, error) {
	u, ok := f.rows[id]
	if !ok {
		return repository.Ubicacion{}, apperr.NotFound("ubicacion not found")
	}
	return u, nil
}

func (f *fakeRepo) SetResolved(_ context.Context, id uuid.UUID, nombre string) (bool, error) {
	u, ok := f.rows[id]
	if !ok || repository.IsTerminal(u.Status) {
		return false, nil
	}
	if nombre != "" {
		u.Nombre = nombre
	}
	u.Status = repository.StatusReady
	f.rows[id] = u
	return true, nil
}

func (f *fakeRepo) SetFailed(_ context.Context, id uuid.UUID) (bool, error) {
	u, ok := f.rows[id]
	if !ok || repository.IsTerminal(u.Status) {
		return false, nil
	}
	u.Status = repository.StatusFailed
	f.rows[id] = u
	return true, nil
}

type enqueueCall struct {
	id      uuid.UUID
	attempt int
	delay   time.Duration
}

// fakeJobs records enqueues; when resolve is set it runs the job inline,
// mimicking the synchronous scheduler.
type fakeJobs struct {
	calls   []enqueueCall
	resolve func(ctx context.Context, id uuid.UUID, attempt int) error
	err     error
}

func (f *fakeJobs) EnqueueReverseGeocode(ctx context.Context, id uuid.UUID, attempt int, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, enqueueCall{id: id, attempt: attempt, delay: delay})
	if f.resolve != nil {
		return f.resolve(ctx, id, attempt)
	}
	return nil
}

func (f *fakeJobs) EnqueueEventNotifications(context.Context, uuid.UUID, *uuid.UUID) error {
	return nil
}

type fakeGeocoder struct {
	name string
	err  error
}

func (f *fakeGeocoder) Reverse(context.Context, float64, float64) (string, error) {
	return f.name, f.err
}

// passthroughTx runs the function without a real transaction, so OnCommit
// callbacks fire immediately.
type passthroughTx struct{}

func (passthroughTx) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func ptr(v float64) *float64 { return &v }

func newService(repo repository.Repository, geo Geocoder, jobs *fakeJobs, maxAttempts int) *Service {
	bus := platformevents.NewInMemoryBus(logger.New("test"))
	return New(repo, passthroughTx{}, geo, jobs, bus, logger.New("test"), maxAttempts, 30*time.Second)
}

func TestCreateLookupSchedulesResolution(t *testing.T) {
	repo := newFakeRepo()
	jobs := &fakeJobs{}
	svc := newService(repo, &fakeGeocoder{}, jobs, 3)

	resp, settled, err := svc.CreateLookup(context.Background(), transport.LookupRequest{
		Nombre: "Oficina Centro",
		Lat:    ptr(19.4326),
		Lon:    ptr(-99.1332),
	})
	if err != nil {
		t.Fatalf("CreateLookup: %v", err)
	}
	if settled {
		t.Fatal("expected unsettled location when the job only gets enqueued")
	}
	if resp.Status != repository.StatusPending {
		t.Fatalf("status = %q, want pending", resp.Status)
	}
	if len(jobs.calls) != 1 {
		t.Fatalf("enqueue calls = %d, want 1", len(jobs.calls))
	}
	if jobs.calls[0].attempt != 0 || jobs.calls[0].delay != 0 {
		t.Fatalf("first enqueue = %+v, want attempt 0 with no delay", jobs.calls[0])
	}
}

func TestCreateLookupSettlesWithInlineJobs(t *testing.T) {
	repo := newFakeRepo()
	jobs := &fakeJobs{}
	svc := newService(repo, &fakeGeocoder{name: "Av. Juárez 10, Centro, CDMX"}, jobs, 3)
	jobs.resolve = svc.Resolve

	resp, settled, err := svc.CreateLookup(context.Background(), transport.LookupRequest{
		Nombre: "punto",
		Lat:    ptr(19.4326),
		Lon:    ptr(-99.1332),
	})
	if err != nil {
		t.Fatalf("CreateLookup: %v", err)
	}
	if !settled {
		t.Fatal("expected settled location with inline jobs")
	}
	if resp.Status != repository.StatusReady {
		t.Fatalf("status = %q, want ready", resp.Status)
	}
	if resp.Nombre != "Av. Juárez 10, Centro, CDMX" {
		t.Fatalf("nombre = %q, want resolved name", resp.Nombre)
	}
}

func TestCreateLookupFailedInlineIsNotReady(t *testing.T) {
	repo := newFakeRepo()
	jobs := &fakeJobs{}
	svc := newService(repo, &fakeGeocoder{}, jobs, 3)
	// Inline job that ends in the failed state before the response is built.
	jobs.resolve = func(ctx context.Context, id uuid.UUID, attempt int) error {
		_, err := repo.SetFailed(ctx, id)
		return err
	}

	resp, ready, err := svc.CreateLookup(context.Background(), transport.LookupRequest{
		Nombre: "punto",
		Lat:    ptr(19.4326),
		Lon:    ptr(-99.1332),
	})
	if err != nil {
		t.Fatalf("CreateLookup: %v", err)
	}
	if ready {
		t.Fatal("a failed location must take the polling response, not 201")
	}
	if resp.Status != repository.StatusFailed {
		t.Fatalf("status = %q, want failed", resp.Status)
	}
}

func TestResolveRetriesTransientThenFails(t *testing.T) {
	repo := newFakeRepo()
	jobs := &fakeJobs{}
	geo := &fakeGeocoder{err: fmt.Errorf("status 503: %w", geocode.ErrTransient)}
	svc := newService(repo, geo, jobs, 3)

	u, _ := repo.Create(context.Background(), repository.CreateParams{
		Nombre: "x", Lat: ptr(1), Lon: ptr(2), Status: repository.StatusPending,
	})

	if err := svc.Resolve(context.Background(), u.ID, 0); err != nil {
		t.Fatalf("Resolve attempt 0: %v", err)
	}
	if len(jobs.calls) != 1 || jobs.calls[0].attempt != 1 {
		t.Fatalf("calls = %+v, want single retry at attempt 1", jobs.calls)
	}
	if jobs.calls[0].delay != 30*time.Second {
		t.Fatalf("retry delay = %v, want 30s", jobs.calls[0].delay)
	}

	if err := svc.Resolve(context.Background(), u.ID, 1); err != nil {
		t.Fatalf("Resolve attempt 1: %v", err)
	}
	if len(jobs.calls) != 2 || jobs.calls[1].attempt != 2 {
		t.Fatalf("calls = %+v, want second retry at attempt 2", jobs.calls)
	}

	// Final attempt exhausts the budget of 3.
	if err := svc.Resolve(context.Background(), u.ID, 2); err != nil {
		t.Fatalf("Resolve attempt 2: %v", err)
	}
	if len(jobs.calls) != 2 {
		t.Fatalf("calls = %d, want no retry after the budget is spent", len(jobs.calls))
	}
	got, _ := repo.GetByID(context.Background(), u.ID)
	if got.Status != repository.StatusFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
}

func TestResolveNonTransientFailsImmediately(t *testing.T) {
	repo := newFakeRepo()
	jobs := &fakeJobs{}
	svc := newService(repo, &fakeGeocoder{err: errors.New("boom")}, jobs, 3)

	u, _ := repo.Create(context.Background(), repository.CreateParams{
		Nombre: "x", Lat: ptr(1), Lon: ptr(2), Status: repository.StatusPending,
	})

	if err := svc.Resolve(context.Background(), u.ID, 0); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(jobs.calls) != 0 {
		t.Fatal("non-transient errors must not be retried")
	}
	got, _ := repo.GetByID(context.Background(), u.ID)
	if got.Status != repository.StatusFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
}

func TestResolveEmptyNameKeepsOriginal(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeGeocoder{name: ""}, &fakeJobs{}, 3)

	u, _ := repo.Create(context.Background(), repository.CreateParams{
		Nombre: "mitad del océano", Lat: ptr(0), Lon: ptr(0), Status: repository.StatusProcessing,
	})

	if err := svc.Resolve(context.Background(), u.ID, 0); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), u.ID)
	if got.Status != repository.StatusReady {
		t.Fatalf("status = %q, want ready", got.Status)
	}
	if got.Nombre != "mitad del océano" {
		t.Fatalf("nombre = %q, want the original name kept", got.Nombre)
	}
}

func TestResolveMissingRowIsNoOp(t *testing.T) {
	jobs := &fakeJobs{}
	svc := newService(newFakeRepo(), &fakeGeocoder{name: "a"}, jobs, 3)

	if err := svc.Resolve(context.Background(), uuid.New(), 0); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(jobs.calls) != 0 {
		t.Fatal("missing rows must not schedule retries")
	}
}

func TestResolveTerminalRowUntouched(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeGeocoder{name: "nuevo"}, &fakeJobs{}, 3)

	u, _ := repo.Create(context.Background(), repository.CreateParams{
		Nombre: "hecho", Lat: ptr(1), Lon: ptr(2), Status: repository.StatusPending,
	})
	if _, err := repo.SetResolved(context.Background(), u.ID, "resuelto"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Resolve(context.Background(), u.ID, 0); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), u.ID)
	if got.Nombre != "resuelto" {
		t.Fatalf("nombre = %q, terminal rows must not change", got.Nombre)
	}
}

func TestEnqueueIfNotReady(t *testing.T) {
	jobs := &fakeJobs{}
	svc := newService(newFakeRepo(), &fakeGeocoder{}, jobs, 3)

	id := uuid.New()
	if err := svc.EnqueueIfNotReady(context.Background(), id, repository.StatusReady); err != nil {
		t.Fatalf("EnqueueIfNotReady: %v", err)
	}
	if len(jobs.calls) != 0 {
		t.Fatal("ready locations must not be re-enqueued")
	}

	if err := svc.EnqueueIfNotReady(context.Background(), id, repository.StatusProcessing); err != nil {
		t.Fatalf("EnqueueIfNotReady: %v", err)
	}
	if len(jobs.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(jobs.calls))
	}
}
