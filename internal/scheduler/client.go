// Package scheduler provides the background-job transport. Services enqueue
// through the JobScheduler port; the asynq Client defers work to a worker
// process while Inline runs it synchronously for tests and single-process
// deployments. Both modes must produce identical observable end states.
package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"reportes_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// JobScheduler is the port services use to defer work until after their
// transaction commits.
type JobScheduler interface {
	EnqueueReverseGeocode(ctx context.Context, ubicacionID uuid.UUID, attempt int, delay time.Duration) error
	EnqueueEventNotifications(ctx context.Context, eventoID uuid.UUID, reportID *uuid.UUID) error
}

// Client schedules jobs on the asynq queue.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueReverseGeocode schedules a resolver attempt, optionally delayed for
// retry backoff.
func (c *Client) EnqueueReverseGeocode(ctx context.Context, ubicacionID uuid.UUID, attempt int, delay time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewReverseGeocodeTask(ReverseGeocodePayload{
		UbicacionID: ubicacionID.String(),
		Attempt:     attempt,
	})
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.Queue(c.queue)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	return err
}

// EnqueueEventNotifications schedules the notification dispatch for a
// progress event.
func (c *Client) EnqueueEventNotifications(ctx context.Context, eventoID uuid.UUID, reportID *uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	payload := EventNotificationsPayload{EventoID: eventoID.String()}
	if reportID != nil {
		id := reportID.String()
		payload.ReportID = &id
	}

	task, err := NewEventNotificationsTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// Compile-time check that Client implements JobScheduler.
var _ JobScheduler = (*Client)(nil)

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
