// Package ids generates record identifiers.
package ids

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// Generator returns a new unique identifier on every call.
type Generator func() string

// New returns ULIDs from the process-wide monotonic source, so ids issued
// within the same millisecond are still unique and ordered.
func New() string {
	return ulid.Make().String()
}

// Prefixed wraps gen so each id starts with prefix.
func Prefixed(prefix string, gen Generator) Generator {
	if gen == nil {
		gen = New
	}
	prefix = strings.TrimSpace(prefix)
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a deterministic generator for tests: prefix1, prefix2, ...
func Sequence(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return prefix + strconv.FormatInt(n.Add(1), 10)
	}
}
