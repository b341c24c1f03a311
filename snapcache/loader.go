package snapcache

import (
	_ "embed"
	"fmt"
	"os"
)

// Embedded fallback served when the local people document is missing or
// malformed.
//
//go:embed people.sample.json
var embeddedPeople []byte

// LoadLocal reads the people document at path once, at startup, and builds
// the initial Snapshot from it. A missing or malformed file is an expected
// condition and falls back to the embedded sample document. The returned
// error is non-nil only if the embedded sample itself cannot be used, which
// indicates a broken build rather than a runtime condition.
//
// The caller installs the result into a Store; the local document is never
// re-read during the process lifetime.
func LoadLocal(path string) (*Snapshot, error) {
	body, err := os.ReadFile(path)
	if err == nil {
		var snap *Snapshot
		snap, err = NewSnapshot(body, "")
		if err == nil {
			log.Infow("Loaded local people document", "path", path, "size", len(body))
			return snap, nil
		}
	}
	log.Warnw("Cannot use local people document, serving embedded sample", "path", path, "err", err)

	snap, err := NewSnapshot(embeddedPeople, "")
	if err != nil {
		return nil, fmt.Errorf("embedded sample document unusable: %w", err)
	}
	return snap, nil
}
