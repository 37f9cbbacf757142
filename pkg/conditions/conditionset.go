package conditions

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ConditionSet is an ordered, deduplicated set of Conditions, sorted by
// Compare (priority desc, scoreAsDefault desc, qualifier name asc, value
// asc).
type ConditionSet struct {
	conditions []*Condition
	key        string
	hash       string
}

// NewConditionSet builds a ConditionSet from conds, deduplicating by Key
// and sorting by Compare.
func NewConditionSet(conds []*Condition) *ConditionSet {
	seen := make(map[string]bool, len(conds))
	deduped := make([]*Condition, 0, len(conds))
	for _, c := range conds {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		deduped = append(deduped, c)
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		return Compare(deduped[i], deduped[j]) < 0
	})

	cs := &ConditionSet{conditions: deduped}
	cs.key = renderConditionSetKey(deduped)
	cs.hash = hashConditionSetKey(cs.key)
	return cs
}

func renderConditionSetKey(conds []*Condition) string {
	keys := make([]string, len(conds))
	for i, c := range conds {
		keys[i] = c.Key()
	}
	return strings.Join(keys, "+")
}

// alnum is the alphabet ConditionSetHash values are rendered in: lowercase
// letters and digits, chosen so the hash is safe to embed in file names
// and JSON object keys without escaping.
const alnum = "0123456789abcdefghijklmnopqrstuvwxyz"

// hashConditionSetKey computes the first 8 alphanumeric characters of a
// stable digest of key, using xxhash (non-cryptographic, fast, and already
// part of the dependency graph transitively) seeded deterministically.
func hashConditionSetKey(key string) string {
	sum := xxhash.Sum64String(key)
	// Render the digest modulo 36^8 (its last 8 base-36 digits) as 8
	// base-36 characters, left-padded with '0'.
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = alnum[sum%36]
		sum /= 36
	}
	return string(buf[:])
}

// Conditions returns the set's members in canonical order.
func (cs *ConditionSet) Conditions() []*Condition { return cs.conditions }

// Key returns the canonical ConditionSetKey.
func (cs *ConditionSet) Key() string { return cs.key }

// Hash returns the 8-character ConditionSetHash.
func (cs *ConditionSet) Hash() string { return cs.hash }

// Len returns the number of member conditions.
func (cs *ConditionSet) Len() int { return len(cs.conditions) }

// String renders a debug form; not the canonical key (use Key for that).
func (cs *ConditionSet) String() string {
	return "ConditionSet(" + strconv.Itoa(len(cs.conditions)) + " conditions, hash=" + cs.hash + ")"
}
