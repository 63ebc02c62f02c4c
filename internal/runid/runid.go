// Package runid names provisioning runs. IDs look like
// run_20261016T091500Z_6f2c9a1b and sort by start time as plain strings.
package runid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	prefix    = "run_"
	layout    = "20060102T150405Z"
	suffixLen = 8
)

// New returns an ID stamped with the current time.
func New() string {
	return At(time.Now())
}

// At returns an ID stamped with t, truncated to the second in UTC.
func At(t time.Time) string {
	var b [suffixLen / 2]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("runid: reading random bytes: %v", err))
	}
	return prefix + t.UTC().Format(layout) + "_" + hex.EncodeToString(b[:])
}

// Time returns the start time encoded in id.
func Time(id string) (time.Time, error) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return time.Time{}, fmt.Errorf("runid: %q does not start with %q", id, prefix)
	}
	stamp, suffix, ok := strings.Cut(rest, "_")
	if !ok {
		return time.Time{}, fmt.Errorf("runid: %q has no random suffix", id)
	}
	if len(suffix) != suffixLen || strings.ToLower(suffix) != suffix {
		return time.Time{}, fmt.Errorf("runid: %q suffix must be %d lowercase hex characters", id, suffixLen)
	}
	if _, err := hex.DecodeString(suffix); err != nil {
		return time.Time{}, fmt.Errorf("runid: %q suffix: %w", id, err)
	}

	ts, err := time.Parse(layout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("runid: %q timestamp: %w", id, err)
	}
	return ts, nil
}

// Valid reports whether id is well formed.
func Valid(id string) bool {
	_, err := Time(id)
	return err == nil
}
