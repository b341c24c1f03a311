package snapcache

import "sync/atomic"

// Store holds the current Snapshot for one logical document. Reads are
// lock-free and always observe a fully-constructed Snapshot. There is no
// empty state: a Store is created with an initial Snapshot and every
// replacement supplies a complete one.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a Store holding initial as its current Snapshot. The
// initial Snapshot must not be nil.
func NewStore(initial *Snapshot) *Store {
	if initial == nil {
		panic("snapcache: nil initial snapshot")
	}
	var s Store
	s.current.Store(initial)
	return &s
}

// Current returns the presently-installed Snapshot. It never blocks on a
// concurrent Replace.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace atomically installs candidate as the current Snapshot. Readers in
// flight observe either the old or the new Snapshot in full.
func (s *Store) Replace(candidate *Snapshot) {
	if candidate == nil {
		panic("snapcache: nil snapshot")
	}
	s.current.Store(candidate)
}
