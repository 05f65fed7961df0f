package finance

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotLoaded = errors.New("finance data not loaded yet")
)

// Board keeps the latest snapshot of the store.
// Refresh swaps the snapshot as a whole, so readers never see a partial load.
type Board struct {
	svc ServiceInterface

	mu      sync.RWMutex
	snap    Snapshot
	loaded  bool
	refresh sync.Mutex // one load at a time
}

func NewBoard(svc ServiceInterface) *Board {
	return &Board{svc: svc}
}

// Refresh reloads the snapshot. On failure the previous snapshot is kept.
func (b *Board) Refresh(ctx context.Context) error {
	b.refresh.Lock()
	defer b.refresh.Unlock()

	snap, err := b.svc.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading snapshot")
	}

	b.mu.Lock()
	b.snap = snap
	b.loaded = true
	b.mu.Unlock()
	return nil
}

// Current returns the latest snapshot.
func (b *Board) Current() (Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.loaded {
		return Snapshot{}, ErrNotLoaded
	}
	return b.snap, nil
}

func (b *Board) Dashboard(sel Selector) (Dashboard, error) {
	snap, err := b.Current()
	if err != nil {
		return Dashboard{}, err
	}
	return b.svc.Dashboard(snap, sel)
}

func (b *Board) Reconcile(sel Selector) ([]ReconciledPayment, error) {
	snap, err := b.Current()
	if err != nil {
		return nil, err
	}
	return b.svc.Reconcile(snap, sel)
}

func (b *Board) StudentOptions(sel Selector) ([]Student, error) {
	snap, err := b.Current()
	if err != nil {
		return nil, err
	}
	return b.svc.StudentOptions(snap, sel)
}

func (b *Board) Catalog() *Catalog {
	return b.svc.Catalog()
}
