package optiontree

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// fallbackSeq makes timestamp-based fallback ids unique even when two
// allocations land on the same nanosecond.
var fallbackSeq atomic.Int64

// newID allocates an id not present in taken. Nodes and edges share one id
// namespace, so taken holds both. UUIDs are the normal path; if the random
// source fails the fallback is a timestamp+counter id, still checked against
// taken so rapid creations cannot collide.
func newID(taken map[string]bool) string {
	for {
		u, err := uuid.NewRandom()
		if err != nil {
			break
		}
		id := u.String()
		if !taken[id] {
			return id
		}
	}
	for {
		id := fmt.Sprintf("ot-%d-%d", time.Now().UnixNano(), fallbackSeq.Add(1))
		if !taken[id] {
			return id
		}
	}
}

// takenIDs collects every node and edge id in the tree.
func takenIDs(t *Tree) map[string]bool {
	taken := make(map[string]bool, len(t.Nodes)+len(t.Edges))
	for _, n := range t.Nodes {
		taken[n.ID] = true
	}
	for _, e := range t.Edges {
		taken[e.ID] = true
	}
	return taken
}

// shortID is the compact form used when deriving machine keys from a fresh id.
func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
