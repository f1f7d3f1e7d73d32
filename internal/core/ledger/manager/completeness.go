package manager

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// LedgerRange is an inclusive range of ledger sequence numbers.
type LedgerRange struct {
	Start, End uint32
}

// Contains reports whether seq falls within the range.
func (r LedgerRange) Contains(seq uint32) bool {
	return seq >= r.Start && seq <= r.End
}

// Length returns the number of sequences covered by the range.
func (r LedgerRange) Length() uint32 {
	return r.End - r.Start + 1
}

func (r LedgerRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// CompleteLedgerSet tracks which ledger sequences are held complete
// locally, as a sorted list of non-overlapping ranges.
type CompleteLedgerSet struct {
	ranges []LedgerRange
}

// NewCompleteLedgerSet creates an empty completeness tracker.
func NewCompleteLedgerSet() *CompleteLedgerSet {
	return &CompleteLedgerSet{}
}

// Add marks a single ledger sequence as complete.
func (c *CompleteLedgerSet) Add(seq uint32) {
	c.AddRange(seq, seq)
}

// AddRange marks every sequence in [start, end] as complete. Overlapping
// and adjacent ranges are merged.
func (c *CompleteLedgerSet) AddRange(start, end uint32) {
	if start > end {
		return
	}

	c.ranges = append(c.ranges, LedgerRange{Start: start, End: end})
	sort.Slice(c.ranges, func(i, j int) bool {
		return c.ranges[i].Start < c.ranges[j].Start
	})

	merged := c.ranges[:1]
	for _, r := range c.ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End || (last.End != math.MaxUint32 && r.Start == last.End+1) {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	c.ranges = merged
}

// Contains reports whether seq is marked complete.
func (c *CompleteLedgerSet) Contains(seq uint32) bool {
	idx := sort.Search(len(c.ranges), func(i int) bool {
		return c.ranges[i].End >= seq
	})
	return idx < len(c.ranges) && c.ranges[idx].Contains(seq)
}

// Range returns the overall minimum and maximum complete sequence, and
// whether any sequence is tracked at all.
func (c *CompleteLedgerSet) Range() (min, max uint32, hasAny bool) {
	if len(c.ranges) == 0 {
		return 0, 0, false
	}
	return c.ranges[0].Start, c.ranges[len(c.ranges)-1].End, true
}

// Count returns the total number of complete sequences.
func (c *CompleteLedgerSet) Count() uint32 {
	var total uint32
	for _, r := range c.ranges {
		total += r.Length()
	}
	return total
}

// Clear drops all completeness information.
func (c *CompleteLedgerSet) Clear() {
	c.ranges = c.ranges[:0]
}

// String renders the set in the form reported by server_info,
// e.g. "1-5,7". An empty set renders as "empty".
func (c *CompleteLedgerSet) String() string {
	if len(c.ranges) == 0 {
		return "empty"
	}

	parts := make([]string, 0, len(c.ranges))
	for _, r := range c.ranges {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ",")
}
