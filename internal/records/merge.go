package records

import (
	"cmp"
	"slices"
)

// Merge combines local and remote collections by id. A remote record
// replaces the local record with the same id entirely. The result is
// sorted newest first, with ties ordered by id.
func Merge(local, remote []Record) []Record {
	byID := make(map[string]Record, len(local)+len(remote))

	for _, r := range local {
		byID[r.ID] = r
	}
	for _, r := range remote {
		byID[r.ID] = r
	}

	merged := make([]Record, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}

	SortNewestFirst(merged)
	return merged
}

// SortNewestFirst orders records by descending timestamp, then ascending id.
func SortNewestFirst(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// CountByStatus returns the number of records in each status.
func CountByStatus(recs []Record) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, r := range recs {
		counts[r.Status]++
	}
	return counts
}
