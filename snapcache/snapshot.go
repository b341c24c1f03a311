package snapcache

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDocument reports content that is not a syntactically valid JSON
// array of records.
var ErrInvalidDocument = errors.New("document is not a JSON array")

// Snapshot is an immutable copy of a served document together with its
// caching metadata. A Snapshot is never modified after construction; replace
// it in a Store instead.
type Snapshot struct {
	// Body is the raw document, validated to be a JSON array.
	Body []byte
	// GzipBody is the gzip encoding of Body, computed once here so that
	// request handling never compresses.
	GzipBody []byte
	// ETag is the strong entity tag derived from Body. Byte-identical
	// bodies always produce the same tag.
	ETag string
	// FetchedAt is when this Snapshot became current.
	FetchedAt time.Time
	// UpstreamETag is the freshness token reported by the remote source,
	// presented on the next conditional fetch. Empty for locally-sourced
	// snapshots.
	UpstreamETag string
}

// NewSnapshot validates body and builds a Snapshot from it. The upstreamETag
// is the token the remote source reported for this content, or empty if the
// content did not come from the remote source.
func NewSnapshot(body []byte, upstreamETag string) (*Snapshot, error) {
	if err := validateDocument(body); err != nil {
		return nil, err
	}
	gz, err := gzipBytes(body)
	if err != nil {
		return nil, fmt.Errorf("cannot compress document: %w", err)
	}
	return &Snapshot{
		Body:         body,
		GzipBody:     gz,
		ETag:         strongETag(body),
		FetchedAt:    time.Now(),
		UpstreamETag: upstreamETag,
	}, nil
}

// validateDocument checks that body is well-formed JSON whose top-level value
// is an array.
func validateDocument(body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return ErrInvalidDocument
	}
	return nil
}

// strongETag returns a quoted hex sha256 digest of b, suitable for use as a
// strong HTTP entity tag.
func strongETag(b []byte) string {
	sum := sha256.Sum256(b)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err = zw.Write(b); err != nil {
		return nil, err
	}
	if err = zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
