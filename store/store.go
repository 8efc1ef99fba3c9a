// Package store maps entity CRUD onto the kv primitives, keeping a
// per-entity index set so records can be enumerated.
//
// Key layout: user:<id> and product:<id> hold JSON records; users:list
// and products:list hold the ids of every live record.
//
// Writes are not transactional. A create sets the record key and then
// adds the id to the index as two separate calls, and the second can
// fail after the first succeeds, leaving an orphaned record. Reads
// tolerate the inverse case by skipping index members with no record.
// The backing store offers no multi-key atomicity, so the gap is
// documented here instead of papered over.
package store

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/aquinn/shop-api/kv"
)

var (
	// ErrNotFound reports an id with no record behind it.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a uniqueness violation (duplicate user email).
	ErrConflict = errors.New("conflict")
)

const (
	userIndex    = "users:list"
	productIndex = "products:list"
)

func userKey(id int) string    { return "user:" + strconv.Itoa(id) }
func productKey(id int) string { return "product:" + strconv.Itoa(id) }

// indexIDs returns the ids in an index set, sorted ascending. Members
// that are not integers are skipped.
func indexIDs(ctx context.Context, s kv.Store, set string) ([]int, error) {
	members, err := s.SMembers(ctx, set)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// nextID is the canonical id policy: one past the highest live id,
// starting at 1. ids must be sorted ascending.
func nextID(ids []int) int {
	if len(ids) == 0 {
		return 1
	}
	return ids[len(ids)-1] + 1
}
