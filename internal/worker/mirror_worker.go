package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"batchdesk/internal/amqp"
	"batchdesk/internal/sheets"
)

// Consumer delivers table change messages until its context ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker copies the primary row store into a secondary one, typically
// SQLite into a Google Sheet, so the sheet stays readable by humans.
type MirrorWorker struct {
	source sheets.RowStore
	target sheets.RowStore

	mu          sync.Mutex
	lastVersion string
}

func NewMirrorWorker(source, target sheets.RowStore) *MirrorWorker {
	return &MirrorWorker{source: source, target: target}
}

// HandleTableChanged mirrors the table after a change message.
func (w *MirrorWorker) HandleTableChanged(ctx context.Context, msg *amqp.TableChangedMessage) error {
	slog.InfoContext(ctx, "Processing table changed message",
		"op", msg.Op,
		"batch_id", msg.BatchID,
		"published_at", msg.Timestamp)
	return w.Mirror(ctx, true)
}

// Mirror copies the full source table into the target. Unless force is set,
// nothing is written when the source version was already mirrored.
func (w *MirrorWorker) Mirror(ctx context.Context, force bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load source table: %w", err)
	}
	if !force && t.Version != "" && t.Version == w.lastVersion {
		slog.DebugContext(ctx, "Mirror up to date", "version", t.Version)
		return nil
	}

	out := sheets.Table{Columns: t.HeaderOrDefault(), Rows: t.Rows}
	if err := w.target.Replace(ctx, out); err != nil {
		return fmt.Errorf("replace mirror table: %w", err)
	}
	w.lastVersion = t.Version

	slog.InfoContext(ctx, "Mirrored batch table", "rows", len(t.Rows), "version", t.Version)
	return nil
}

// StartupSync mirrors once, so changes made while the worker was down are not lost.
func (w *MirrorWorker) StartupSync(ctx context.Context) error {
	return w.Mirror(ctx, true)
}

// Run consumes change messages and resyncs every interval until ctx ends or
// the consumer fails. A zero interval disables the periodic resync.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.Consume(gctx, w.HandleTableChanged)
		})
	}

	if interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
					if err := w.Mirror(gctx, false); err != nil {
						slog.ErrorContext(gctx, "Periodic mirror failed", "error", err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}
