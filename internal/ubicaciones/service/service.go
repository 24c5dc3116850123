package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"reportes_backend/internal/events"
	"reportes_backend/internal/geocode"
	"reportes_backend/internal/scheduler"
	"reportes_backend/internal/ubicaciones/repository"
	"reportes_backend/internal/ubicaciones/transport"
	"reportes_backend/platform/apperr"
	"reportes_backend/platform/db"
	"reportes_backend/platform/logger"
)

// Geocoder resolves coordinates into a human-readable place name.
// An empty name with a nil error means the provider had no answer; the
// location still settles as ready with its original name.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Transactor runs a function inside a database transaction with
// post-commit hook support.
type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides business logic for location creation and asynchronous
// name resolution.
type Service struct {
	repo        repository.Repository
	tx          Transactor
	geocoder    Geocoder
	jobs        scheduler.JobScheduler
	bus         events.Bus
	log         *logger.Logger
	maxAttempts int
	retryDelay  time.Duration
}

// New creates a new ubicaciones service. maxAttempts is the total number of
// geocoding attempts allowed per location; retryDelay is the pause before
// each retry of a transient failure.
func New(repo repository.Repository, tx Transactor, geocoder Geocoder, jobs scheduler.JobScheduler, bus events.Bus, log *logger.Logger, maxAttempts int, retryDelay time.Duration) *Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		repo:        repo,
		tx:          tx,
		geocoder:    geocoder,
		jobs:        jobs,
		bus:         bus,
		log:         log,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// CreateLookup creates a pending location and schedules its resolution once
// the insert has committed. The returned bool reports whether the location
// already resolved to ready (inline job execution) so the handler can choose
// between 201 and 202. A row that failed inline still reports false: the
// caller gets the polling contract, not a created-successfully response.
func (s *Service) CreateLookup(ctx context.Context, req transport.LookupRequest) (transport.UbicacionResponse, bool, error) {
	var created repository.Ubicacion

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		u, err := s.repo.Create(ctx, repository.CreateParams{
			Nombre: req.Nombre,
			Lat:    req.Lat,
			Lon:    req.Lon,
			Status: repository.StatusPending,
		})
		if err != nil {
			return err
		}
		created = u

		// Enqueue only after the row is durably committed. A job observing
		// an uncommitted row would resolve against nothing.
		db.OnCommit(ctx, func(ctx context.Context) {
			if err := s.jobs.EnqueueReverseGeocode(ctx, u.ID, 0, 0); err != nil {
				s.log.JobEvent(scheduler.TaskReverseGeocode, false, "enqueue failed: "+err.Error())
			}
		})
		return nil
	})
	if err != nil {
		return transport.UbicacionResponse{}, false, err
	}

	// Re-read after commit: with an inline scheduler the job has already run
	// and the row may have settled.
	current, err := s.repo.GetByID(ctx, created.ID)
	if err != nil {
		// The row exists; fall back to the snapshot from the insert.
		s.log.DatabaseError("ubicaciones.reload", err)
		current = created
	}
	return toResponse(current), current.Status == repository.StatusReady, nil
}

// Create inserts a location from a secondary path (for example a task
// created with an embedded location). The row starts in the legacy
// processing status; a creation event goes out after commit and the
// module's own subscription schedules resolution from there.
func (s *Service) Create(ctx context.Context, nombre string, lat, lon *float64) (repository.Ubicacion, error) {
	u, err := s.repo.Create(ctx, repository.CreateParams{
		Nombre: nombre,
		Lat:    lat,
		Lon:    lon,
		Status: repository.StatusProcessing,
	})
	if err != nil {
		return repository.Ubicacion{}, err
	}

	db.OnCommit(ctx, func(ctx context.Context) {
		s.bus.Publish(ctx, events.UbicacionCreated{
			BaseEvent:   events.NewBaseEvent(),
			UbicacionID: u.ID,
			Status:      u.Status,
		})
	})
	return u, nil
}

// EnqueueIfNotReady schedules a resolution job for a location that has not
// reached the ready state. It is the safety net behind the creation event:
// any path that inserts a location ends up with a job scheduled.
func (s *Service) EnqueueIfNotReady(ctx context.Context, id uuid.UUID, status string) error {
	if status == repository.StatusReady {
		return nil
	}
	return s.jobs.EnqueueReverseGeocode(ctx, id, 0, 0)
}

// Get retrieves a location by ID for status polling.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.UbicacionResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.UbicacionResponse{}, err
	}
	return toResponse(u), nil
}

// Resolve is the reverse-geocoding job body. attempt is zero-based; a
// transient provider failure reschedules with attempt+1 until the attempt
// budget is spent, then the location is marked failed. A missing row is a
// no-op: the job outlived its subject.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, attempt int) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.JobEvent(scheduler.TaskReverseGeocode, true, "ubicacion "+id.String()+" no longer exists")
			return nil
		}
		return err
	}
	if repository.IsTerminal(u.Status) {
		return nil
	}
	if u.Lat == nil || u.Lon == nil {
		// Nothing to geocode against. Settle the row instead of retrying
		// forever.
		_, err := s.repo.SetFailed(ctx, id)
		return err
	}

	nombre, err := s.geocoder.Reverse(ctx, *u.Lat, *u.Lon)
	if err != nil {
		if errors.Is(err, geocode.ErrTransient) && attempt+1 < s.maxAttempts {
			s.log.JobEvent(scheduler.TaskReverseGeocode, false, "transient failure, retrying: "+err.Error())
			return s.jobs.EnqueueReverseGeocode(ctx, id, attempt+1, s.retryDelay)
		}
		s.log.JobEvent(scheduler.TaskReverseGeocode, false, "giving up on ubicacion "+id.String()+": "+err.Error())
		_, ferr := s.repo.SetFailed(ctx, id)
		return ferr
	}

	// Empty result still settles as ready; the user-provided name stands.
	_, err = s.repo.SetResolved(ctx, id, nombre)
	if err != nil {
		return err
	}
	s.log.JobEvent(scheduler.TaskReverseGeocode, true, "ubicacion "+id.String()+" resolved")
	return nil
}

func toResponse(u repository.Ubicacion) transport.UbicacionResponse {
	return transport.UbicacionResponse{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Lat:       u.Lat,
		Lon:       u.Lon,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
