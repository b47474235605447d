// Package repository exposes typed batch operations over a sheets.RowStore.
//
// Every operation is a full snapshot round trip: load the table, change it in
// memory, replace it. Nothing is cached between calls.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"batchdesk/internal/core"
	applog "batchdesk/internal/log"
	"batchdesk/internal/sheets"
)

// IDGenerator returns a fresh batch id.
type IDGenerator func() (string, error)

// UUIDv7 is the default IDGenerator. Ids are time ordered and never reused.
func UUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Notifier is told about every committed write.
type Notifier interface {
	TableChanged(ctx context.Context, ev core.TableChanged) error
}

type Repository struct {
	store    sheets.RowStore
	catalog  core.Catalog
	newID    IDGenerator
	notifier Notifier
	logger   *applog.Logger
	now      func() time.Time
	order    DateOrder
}

type Option func(*Repository)

func WithCatalog(c core.Catalog) Option {
	return func(r *Repository) { r.catalog = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(r *Repository) {
		if g != nil {
			r.newID = g
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

func WithLogger(l *applog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l.WithComponent(applog.ComponentRepository)
		}
	}
}

// WithDateOrder sets how numeric dates typed into the sheet are read.
// The default is DayFirst.
func WithDateOrder(o DateOrder) Option {
	return func(r *Repository) { r.order = o }
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func New(store sheets.RowStore, opts ...Option) *Repository {
	r := &Repository{
		store:   store,
		catalog: core.NewCatalog(core.DefaultCategories),
		newID:   UUIDv7,
		logger:  applog.FromContext(context.Background()).WithComponent(applog.ComponentRepository),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the category catalog used to resolve stored values.
func (r *Repository) Catalog() core.Catalog {
	return r.catalog
}

// List returns every batch in store order. Rows that do not parse are skipped.
func (r *Repository) List(ctx context.Context) ([]core.Batch, error) {
	t, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return r.parse(ctx, t), nil
}

// Get returns the first batch with the given id.
func (r *Repository) Get(ctx context.Context, id string) (core.Batch, error) {
	batches, err := r.List(ctx)
	if err != nil {
		return core.Batch{}, err
	}
	for _, b := range batches {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Batch{}, fmt.Errorf("get %s: %w", id, core.ErrNotFound)
}

// Add appends a new batch under a fresh id and returns it.
func (r *Repository) Add(ctx context.Context, in core.NewBatchInput) (core.Batch, error) {
	in.Category = r.catalog.Resolve(in.Category)
	if err := in.Validate(); err != nil {
		return core.Batch{}, err
	}
	id, err := r.newID()
	if err != nil {
		return core.Batch{}, fmt.Errorf("generate id: %w", err)
	}
	b := in.Batch(id)

	t, err := r.store.Load(ctx)
	if err != nil {
		return core.Batch{}, persistErr("add batch", err)
	}
	t.Rows = append(t.Rows, toRecord(b))
	if err := r.store.Replace(ctx, t); err != nil {
		return core.Batch{}, persistErr("add batch", err)
	}

	r.logger.LogBatchChanged(ctx, applog.OpCreate, b.ID, b.Name, b.Category, b.Price.Cents)
	r.notify(ctx, core.ChangeCreated, b.ID)
	return b, nil
}

// Update overwrites the patched fields on every row carrying id. The id and
// category of a batch never change. An unknown id yields core.ErrNotFound
// and nothing is written.
func (r *Repository) Update(ctx context.Context, id string, patch core.BatchPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	t, err := r.store.Load(ctx)
	if err != nil {
		return persistErr("update batch", err)
	}
	matched := 0
	for _, rec := range t.Rows {
		if sameID(rec, id) {
			patchRecord(rec, patch)
			matched++
		}
	}
	if matched == 0 {
		return fmt.Errorf("update %s: %w", id, core.ErrNotFound)
	}
	if err := r.store.Replace(ctx, t); err != nil {
		return persistErr("update batch", err)
	}

	r.logger.LogBatchChanged(ctx, applog.OpUpdate, id, "", "", 0)
	r.notify(ctx, core.ChangeUpdated, id)
	return nil
}

// Delete removes every row carrying id. An unknown id yields core.ErrNotFound
// and nothing is written.
func (r *Repository) Delete(ctx context.Context, id string) error {
	t, err := r.store.Load(ctx)
	if err != nil {
		return persistErr("delete batch", err)
	}
	kept := t.Rows[:0:0]
	for _, rec := range t.Rows {
		if !sameID(rec, id) {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(t.Rows) {
		return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}
	t.Rows = kept
	if err := r.store.Replace(ctx, t); err != nil {
		return persistErr("delete batch", err)
	}

	r.logger.LogBatchChanged(ctx, applog.OpDelete, id, "", "", 0)
	r.notify(ctx, core.ChangeDeleted, id)
	return nil
}

func (r *Repository) parse(ctx context.Context, t sheets.Table) []core.Batch {
	out := make([]core.Batch, 0, len(t.Rows))
	for i, rec := range t.Rows {
		if rec.IsEmpty() {
			continue
		}
		b, err := toBatch(rec, r.catalog, r.order)
		if err != nil {
			r.logger.DebugContext(ctx, "Skipping unparseable row",
				"row", i+2, applog.FieldOperation, applog.OpParse, applog.FieldError, err)
			continue
		}
		out = append(out, b)
	}
	return out
}

func (r *Repository) notify(ctx context.Context, op, id string) {
	if r.notifier == nil {
		return
	}
	ev := core.TableChanged{Op: op, BatchID: id, At: r.now().UTC()}
	if err := r.notifier.TableChanged(ctx, ev); err != nil {
		r.logger.WarnContext(ctx, "Change notification failed",
			applog.FieldBatchID, id, applog.FieldOperation, op, applog.FieldError, err)
	}
}

// persistErr marks err as a failed write while keeping the store cause matchable.
func persistErr(op string, err error) error {
	if errors.Is(err, core.ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrPersistence, err)
}
