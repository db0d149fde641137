package dispatch

import "sync/atomic"

// Stats is a snapshot of a Cache's dispatch counters.
type Stats struct {
	SlotHits     uint64 // served from the fast path slot
	RegistryHits uint64 // served from the shared registry
	Misses       uint64 // resolved and called through reflection
	Failures     uint64 // rejected before any call was made
}

// Calls returns the number of dispatched calls.
func (s Stats) Calls() uint64 {
	return s.SlotHits + s.RegistryHits + s.Misses
}

// HitRate returns the percentage (0-100) of calls served by a thunk.
func (s Stats) HitRate() float64 {
	total := s.Calls()
	if total == 0 {
		return 0
	}
	return float64(s.SlotHits+s.RegistryHits) * 100 / float64(total)
}

type counters struct {
	slotHits     atomic.Uint64
	registryHits atomic.Uint64
	misses       atomic.Uint64
	failures     atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		SlotHits:     c.slotHits.Load(),
		RegistryHits: c.registryHits.Load(),
		Misses:       c.misses.Load(),
		Failures:     c.failures.Load(),
	}
}
