// Package snapcache maintains in-memory snapshots of the served people
// documents and keeps the remote one aligned with its source.
//
// Each logical document (local, remote) is held in its own Store as an
// immutable Snapshot: the raw JSON bytes, a precomputed gzip encoding, and a
// strong entity tag derived from the content. Request handlers read the
// current Snapshot without locks or allocation; a Snapshot is replaced, never
// edited, so a reader holding an older Snapshot still observes complete,
// coherent data.
//
// ## Loading
//
// The local document is read once at process start by LoadLocal. A missing
// or malformed file is not an error; the embedded sample document is used
// instead, so a Store is never left without content.
//
// ## Refresh
//
// A Refresher periodically re-fetches the remote document through a Source,
// presenting the last upstream entity tag as a freshness precondition. When
// the source confirms the content is unchanged, nothing happens. When new
// content arrives it is validated, built into a new Snapshot and atomically
// installed. When the fetch fails, times out, or returns malformed content,
// the Store is left untouched and the previous Snapshot continues to be
// served until a later cycle succeeds.
//
// Refresh cycles are single-flight: a manual Refresh call that arrives while
// a cycle is in flight returns immediately without starting a second fetch.
package snapcache
