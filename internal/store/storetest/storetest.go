// Package storetest provides store fixtures for tests in other packages.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/abhisek/algotutor/internal/store"
)

var seq atomic.Int64

// Open returns a fresh in-memory SQLite store closed at test cleanup.
func Open(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	s, err := store.Open(store.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ErrDown is the cause wrapped by FailingGateway errors.
var ErrDown = errors.New("database is down")

// FailingGateway fails every unit before running it, the way a store that
// cannot be reached does.
type FailingGateway struct {
	calls atomic.Int64
}

func (g *FailingGateway) Do(_ context.Context, _ func(*store.Tx) error) error {
	g.calls.Add(1)
	return &store.UnavailableError{Op: "acquire", Err: ErrDown}
}

// Calls returns how many units were attempted.
func (g *FailingGateway) Calls() int {
	return int(g.calls.Load())
}

// FlakyGateway delegates to Inner but fails while Down is set.
type FlakyGateway struct {
	Inner store.Gateway
	down  atomic.Bool
}

// SetDown toggles the simulated outage.
func (g *FlakyGateway) SetDown(down bool) {
	g.down.Store(down)
}

func (g *FlakyGateway) Do(ctx context.Context, fn func(*store.Tx) error) error {
	if g.down.Load() {
		return &store.UnavailableError{Op: "acquire", Err: ErrDown}
	}
	return g.Inner.Do(ctx, fn)
}
