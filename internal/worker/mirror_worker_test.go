package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"batchdesk/internal/amqp"
	"batchdesk/internal/core"
	"batchdesk/internal/sheets"
	"batchdesk/internal/sheets/memory"
)

type countingStore struct {
	sheets.RowStore
	replaces atomic.Int32
	fail     error
}

func (c *countingStore) Replace(ctx context.Context, t sheets.Table) error {
	c.replaces.Add(1)
	if c.fail != nil {
		return c.fail
	}
	if t.Version != "" {
		return errors.New("mirror writes must not carry a version")
	}
	return c.RowStore.Replace(ctx, t)
}

func sourceStore() *memory.Store {
	return memory.New([]sheets.Record{
		{"id": "1", "batch_name": "NEET-A", "amount": "5000", "category": "NEET", "date": "2024-04-01", "class_grade": "11"},
	})
}

func TestMirrorCopiesTable(t *testing.T) {
	ctx := context.Background()
	src := sourceStore()
	dst := &countingStore{RowStore: memory.New(nil)}
	w := NewMirrorWorker(src, dst)

	if err := w.StartupSync(ctx); err != nil {
		t.Fatalf("startup sync: %v", err)
	}
	got, _ := dst.Load(ctx)
	if len(got.Rows) != 1 || got.Rows[0]["batch_name"] != "NEET-A" {
		t.Fatalf("mirror rows = %v", got.Rows)
	}

	if err := w.Mirror(ctx, false); err != nil {
		t.Fatal(err)
	}
	if n := dst.replaces.Load(); n != 1 {
		t.Fatalf("unchanged source should not be rewritten, replaces = %d", n)
	}

	err := w.HandleTableChanged(ctx, &amqp.TableChangedMessage{Op: core.ChangeUpdated})
	if err != nil || dst.replaces.Load() != 2 {
		t.Fatalf("message should force a mirror: err=%v replaces=%d", err, dst.replaces.Load())
	}
}

func TestMirrorSurfacesTargetErrors(t *testing.T) {
	dst := &countingStore{RowStore: memory.New(nil), fail: core.ErrStoreUnavailable}
	err := NewMirrorWorker(sourceStore(), dst).Mirror(context.Background(), true)
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

type fakeConsumer struct {
	msgs []*amqp.TableChangedMessage
}

func (f fakeConsumer) Consume(ctx context.Context, h amqp.Handler) error {
	for _, m := range f.msgs {
		if err := h(ctx, m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunStopsOnCancel(t *testing.T) {
	dst := &countingStore{RowStore: memory.New(nil)}
	w := NewMirrorWorker(sourceStore(), dst)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, fakeConsumer{msgs: []*amqp.TableChangedMessage{{Op: core.ChangeCreated}}}, time.Millisecond)
	}()

	deadline := time.After(2 * time.Second)
	for dst.replaces.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never mirrored")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v after cancel", err)
	}
}
