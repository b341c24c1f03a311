// Package respond performs HTTP freshness negotiation against a snapshot
// Store: conditional GET handling, encoding selection, and caching headers.
package respond

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nyan-lin-tun/CNCF-people-api/snapcache"
)

const cacheControl = "public, max-age=30"

// Result is the outcome of freshness negotiation for one request.
type Result struct {
	// NotModified reports that the client's precondition matched the
	// current entity tag, so no body is sent.
	NotModified bool
	// ETag is the current entity tag, reported on every response.
	ETag string
	// Body is the selected representation. Nil when NotModified.
	Body []byte
	// Gzipped reports that Body is the gzip representation.
	Gzipped bool
}

// For negotiates a response against the store's current Snapshot.
// precondition is the client's If-None-Match value, possibly empty. This
// never fails: a Store always holds a valid Snapshot.
func For(precondition string, acceptGzip bool, st *snapcache.Store) Result {
	snap := st.Current()
	if etagMatch(precondition, snap.ETag) {
		return Result{NotModified: true, ETag: snap.ETag}
	}
	if acceptGzip {
		return Result{ETag: snap.ETag, Body: snap.GzipBody, Gzipped: true}
	}
	return Result{ETag: snap.ETag, Body: snap.Body}
}

// Write emits res to w with the standard caching headers: ETag on every
// response; Content-Type, Cache-Control, Vary and optionally
// Content-Encoding on full responses.
func Write(w http.ResponseWriter, res Result) {
	h := w.Header()
	h.Set("ETag", res.ETag)
	if res.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", cacheControl)
	h.Set("Vary", "Accept-Encoding")
	if res.Gzipped {
		h.Set("Content-Encoding", "gzip")
	}
	h.Set("Content-Length", strconv.Itoa(len(res.Body)))
	_, _ = w.Write(res.Body)
}

// WantsGzip reports whether the request accepts a gzip-encoded response.
func WantsGzip(r *http.Request) bool {
	for _, accept := range r.Header.Values("Accept-Encoding") {
		for _, enc := range strings.Split(accept, ",") {
			name, params, _ := strings.Cut(enc, ";")
			if strings.TrimSpace(name) != "gzip" {
				continue
			}
			q := strings.TrimSpace(params)
			if qv, ok := strings.CutPrefix(q, "q="); ok {
				if v, err := strconv.ParseFloat(qv, 64); err == nil && v == 0 {
					continue
				}
			}
			return true
		}
	}
	return false
}

// etagMatch reports whether the If-None-Match header value matches etag. The
// header may carry a single tag, a comma-separated list, or "*". Comparison
// is weak: a W/ prefix on either side is ignored.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, tok := range strings.Split(header, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "*" {
			return true
		}
		if strings.TrimPrefix(tok, "W/") == etag {
			return true
		}
	}
	return false
}
