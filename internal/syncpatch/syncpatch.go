// Package syncpatch drives the bulk ghost-cell synchronization step
// spec.md §4.10 describes: run internal/patch's per-patch exchange
// across every patch a rank owns, concurrently, using the same
// worker-pool/barrier idiom internal/comm documents (pthm-soup's
// goroutine-per-worker pattern), so that a rank with many local
// patches doesn't serialize their exchanges.
package syncpatch

import (
	"sync"

	"github.com/deveworld/picengine/internal/comm"
	"github.com/deveworld/picengine/internal/patch"
)

// Mode selects which quantities a sync pass exchanges, per spec.md
// §4.10's "direction-independent" (fields only) vs "full synchronized"
// (fields plus an additional current-summation pass) distinction.
type Mode int

const (
	FieldsOnly Mode = iota
	FullSync        // fields plus additive current/density summation
)

// SyncVectorPatch exchanges ghost cells for every patch in `patches`
// concurrently, returning the first error encountered (if any); every
// patch still completes its own exchange even if a sibling errors,
// since each exchange is independent per spec.md §4.8's per-patch
// protocol.
func SyncVectorPatch(patches []*patch.Patch, c *comm.Communicator, oversize int, mode Mode) error {
	var wg sync.WaitGroup
	errs := make([]error, len(patches))
	for i, p := range patches {
		wg.Add(1)
		go func(i int, p *patch.Patch) {
			defer wg.Done()
			if err := p.ExchangeGhosts(c, oversize); err != nil {
				errs[i] = err
				return
			}
			if mode == FullSync {
				errs[i] = p.SumDensities(c, oversize)
			}
		}(i, p)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// SyncParticles runs ExchangeParticles concurrently across every patch
// (spec.md §2's particle-exchange pipeline stage), same concurrency
// shape as SyncVectorPatch: every patch must be mid-exchange at once
// since a patch's non-blocking receive only completes once its
// neighbor has posted the matching send.
func SyncParticles(patches []*patch.Patch, c *comm.Communicator) error {
	var wg sync.WaitGroup
	errs := make([]error, len(patches))
	for i, p := range patches {
		wg.Add(1)
		go func(i int, p *patch.Patch) {
			defer wg.Done()
			errs[i] = p.ExchangeParticles(c)
		}(i, p)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
