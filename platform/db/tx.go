package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

type hooksKey struct{}

// Hooks collects callbacks to run strictly after a transaction commits.
// Work that must only become visible once the enclosing write is durable
// (job enqueues, event publishes) registers here instead of firing inline.
type Hooks struct {
	fns []func(ctx context.Context)
}

// Add registers a callback to run after commit.
func (h *Hooks) Add(fn func(ctx context.Context)) {
	h.fns = append(h.fns, fn)
}

// fire runs all registered callbacks in registration order.
func (h *Hooks) fire(ctx context.Context) {
	for _, fn := range h.fns {
		fn(ctx)
	}
}

// Querier is the subset of pgx operations shared by pools and transactions,
// letting repositories run inside or outside Transact transparently.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transact runs fn inside a transaction. Callbacks registered via OnCommit
// during fn run only after a successful commit; on rollback they are
// discarded. The transaction is exposed to repositories through the context
// (see QuerierFromContext).
func Transact(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	hooks := &Hooks{}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	txCtx = context.WithValue(txCtx, hooksKey{}, hooks)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Post-commit hooks run on the original context: the transaction is gone.
	hooks.fire(ctx)
	return nil
}

// WithSavepoint runs fn inside a savepoint when a transaction is active, so
// fn's writes can fail and roll back without poisoning the enclosing
// transaction. Outside a transaction fn runs as-is.
func WithSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return fn(ctx)
	}

	nested, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	nestedCtx := context.WithValue(ctx, txKey{}, nested)
	if err := fn(nestedCtx); err != nil {
		_ = nested.Rollback(ctx)
		return err
	}
	return nested.Commit(ctx)
}

// Transactor is a pool-bound Transact, handed to services so they can open
// transactions without holding the pool themselves.
type Transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor creates a Transactor bound to the given pool.
func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Transact runs fn inside a transaction on the bound pool.
func (t *Transactor) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return Transact(ctx, t.pool, fn)
}

// OnCommit registers fn to run after the enclosing Transact commits. Outside
// a transaction the callback runs immediately, so callers need not care which
// mode they are in.
func OnCommit(ctx context.Context, fn func(ctx context.Context)) {
	if hooks, ok := ctx.Value(hooksKey{}).(*Hooks); ok {
		hooks.Add(fn)
		return
	}
	fn(ctx)
}

// QuerierFromContext returns the active transaction when inside Transact,
// falling back to the pool otherwise.
func QuerierFromContext(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}
