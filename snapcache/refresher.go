package snapcache

import (
	"context"
	"errors"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("snapcache")

// RefreshOutcome classifies the result of one refresh attempt.
type RefreshOutcome int

const (
	// OutcomeFailed means the fetch or validation failed and the Store was
	// left untouched.
	OutcomeFailed RefreshOutcome = iota
	// OutcomeUnchanged means the source confirmed the current content is
	// still fresh.
	OutcomeUnchanged
	// OutcomeUpdated means new content was installed into the Store.
	OutcomeUpdated
	// OutcomeSkipped means another refresh was already in flight and this
	// trigger was coalesced into it.
	OutcomeSkipped
)

func (o RefreshOutcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Source supplies the remote people document. A Source performs one
// conditional fetch per call and reports whether the content changed since
// the presented freshness token.
type Source interface {
	// Fetch performs a conditional fetch. If upstreamETag is not empty it
	// is presented to the source as a freshness precondition, and the
	// source may report NotModified instead of returning content.
	Fetch(ctx context.Context, upstreamETag string) (*FetchResult, error)
	// String returns a description of the source.
	String() string
}

// FetchResult is the outcome of one Source fetch.
type FetchResult struct {
	// Body is the fetched content. Empty when NotModified.
	Body []byte
	// ETag is the freshness token the source reported for Body, if any.
	ETag string
	// NotModified reports that the source confirmed the presented token is
	// still current.
	NotModified bool
}

// Refresher keeps one Store's Snapshot aligned with a remote Source on a
// fixed interval. Fetches happen off the request path; readers of the Store
// are never blocked. At most one fetch is in flight at any time, and a
// failed cycle leaves the previous Snapshot in place.
type Refresher struct {
	store    *Store
	source   Source
	interval time.Duration
	timeout  time.Duration

	// refreshLock serializes refresh cycles. Holding a token in the
	// channel means a refresh is in flight.
	refreshLock chan struct{}
}

// NewRefresher creates a Refresher that updates store from source. The store
// must already hold an initial Snapshot.
func NewRefresher(store *Store, source Source, options ...Option) (*Refresher, error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("no store")
	}
	if source == nil {
		return nil, errors.New("no source")
	}
	return &Refresher{
		store:       store,
		source:      source,
		interval:    opts.refreshIn,
		timeout:     opts.fetchTimeout,
		refreshLock: make(chan struct{}, 1),
	}, nil
}

// Run refreshes the store immediately and then at the configured interval
// until ctx is canceled. Failed cycles are logged and do not alter the
// cadence; the previous Snapshot continues to be served.
func (r *Refresher) Run(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil {
		log.Errorw("Initial refresh failed", "err", err, "source", r.source)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debugw("Refresher stopped", "source", r.source)
			return
		case <-ticker.C:
			if _, err := r.Refresh(ctx); err != nil {
				log.Errorw("Refresh failed", "err", err, "source", r.source)
			}
		}
	}
}

// Refresh runs one refresh cycle. If a cycle is already in flight the
// trigger is coalesced: Refresh returns OutcomeSkipped immediately without
// queuing a second fetch. The returned error is non-nil only for
// OutcomeFailed; parse failures wrap ErrInvalidDocument, anything else is a
// transport failure.
func (r *Refresher) Refresh(ctx context.Context) (RefreshOutcome, error) {
	select {
	case r.refreshLock <- struct{}{}:
	default:
		// Refresh already in flight; the next tick re-checks freshness.
		return OutcomeSkipped, nil
	}
	defer func() {
		<-r.refreshLock
	}()
	return r.refreshOnce(ctx)
}

func (r *Refresher) refreshOnce(ctx context.Context) (RefreshOutcome, error) {
	prev := r.store.Current()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.source.Fetch(ctx, prev.UpstreamETag)
	if err != nil {
		return OutcomeFailed, err
	}
	if res.NotModified {
		log.Debugw("Remote document not modified", "etag", prev.ETag)
		return OutcomeUnchanged, nil
	}

	upstream := res.ETag
	if upstream == "" {
		// Source reported no token; use the content digest so the next
		// fetch is still conditional.
		upstream = strongETag(res.Body)
	}
	snap, err := NewSnapshot(res.Body, upstream)
	if err != nil {
		return OutcomeFailed, err
	}

	r.store.Replace(snap)
	log.Infow("Remote document refreshed", "etag", snap.ETag, "size", len(snap.Body))
	return OutcomeUpdated, nil
}
