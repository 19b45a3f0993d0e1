package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/picogrid/brightfleet/pkg/models"
)

func TestSQLiteSeedAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fleet.db")

	s, err := OpenSQLite(ctx, path, models.DemoDocument())
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(doc, models.DemoDocument()) {
		t.Error("Seeded document differs from the demo document")
	}

	doc.ProjectTitle = "Renamed"
	doc.Teams = doc.Teams[:2]
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSQLite(ctx, path, models.DemoDocument())
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if got.ProjectTitle != "Renamed" || len(got.Teams) != 2 {
		t.Errorf("Seeding must not overwrite a saved document, got %q with %d teams", got.ProjectTitle, len(got.Teams))
	}
}

func TestSQLiteWithoutSeed(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "empty.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Teams) != 0 || doc.Teams == nil {
		t.Errorf("Expected empty document, got %+v", doc)
	}
}

func TestSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), "  ", nil); err == nil {
		t.Error("Expected error for empty path")
	}

	var s *SQLite
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestMemoryIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(models.DemoDocument())

	doc, _ := m.Load(ctx)
	doc.Teams = nil
	again, _ := m.Load(ctx)
	if len(again.Teams) != 7 {
		t.Error("Mutating a loaded document changed the store")
	}
}

// gatedStore blocks every save until released, recording what it wrote.
type gatedStore struct {
	mu      sync.Mutex
	titles  []string
	started chan struct{}
	release chan struct{}
	err     error
}

func newGatedStore() *gatedStore {
	return &gatedStore{started: make(chan struct{}, 10), release: make(chan struct{})}
}

func (g *gatedStore) Load(context.Context) (*models.Document, error) {
	return models.EmptyDocument(), nil
}

func (g *gatedStore) Save(_ context.Context, doc *models.Document) error {
	g.started <- struct{}{}
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.titles = append(g.titles, doc.ProjectTitle)
	return g.err
}

func TestAutoSaverCoalesces(t *testing.T) {
	gs := newGatedStore()
	a := NewAutoSaver(gs, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	doc := models.EmptyDocument()
	doc.ProjectTitle = "first"
	a.Save(doc)
	<-gs.started

	for _, title := range []string{"second", "third", "fourth"} {
		doc.ProjectTitle = title
		a.Save(doc)
	}
	doc.ProjectTitle = "mutated after save"
	close(gs.release)

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := a.Flush(flushCtx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	a.Stop()

	gs.mu.Lock()
	defer gs.mu.Unlock()
	if !reflect.DeepEqual(gs.titles, []string{"first", "fourth"}) {
		t.Errorf("Expected first and latest snapshot only, got %v", gs.titles)
	}
	if stats := a.Stats(); stats.Requested != 4 || stats.Written != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestAutoSaverReportsFailure(t *testing.T) {
	gs := newGatedStore()
	gs.err = errors.New("disk full")
	close(gs.release)

	a := NewAutoSaver(gs, time.Second)
	a.Start(context.Background())
	defer a.Stop()

	a.Save(models.EmptyDocument())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Flush(ctx); err == nil {
		t.Fatal("Expected flush to report the failed write")
	}
	if stats := a.Stats(); stats.Failed != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.Failed)
	}
}

func TestAutoSaverStopWritesPending(t *testing.T) {
	m := NewMemory(nil)
	a := NewAutoSaver(m, time.Second)

	doc := models.DemoDocument()
	a.Save(doc)
	a.Start(context.Background())
	a.Stop()

	got, _ := m.Load(context.Background())
	if len(got.Teams) != 7 {
		t.Errorf("Expected pending snapshot written on stop, got %d teams", len(got.Teams))
	}
}
