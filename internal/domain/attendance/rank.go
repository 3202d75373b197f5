package attendance

import (
	"sort"
)

func statusPriority(s Status) int {
	switch s {
	case StatusHadir:
		return 2
	case StatusSedangPiket:
		return 1
	default:
		return 0
	}
}

// Better reports whether a should be kept over b when both describe the same
// member and date.
func Better(a, b Attendance) bool {
	if a.AutoGenerated != b.AutoGenerated {
		return !a.AutoGenerated
	}
	if ca, cb := a.Completeness(), b.Completeness(); ca != cb {
		return ca > cb
	}
	if pa, pb := statusPriority(a.Status), statusPriority(b.Status); pa != pb {
		return pa > pb
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID < b.ID
}

// Rank sorts records best first. The input slice is not modified.
func Rank(records []Attendance) []Attendance {
	out := make([]Attendance, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return Better(out[i], out[j])
	})
	return out
}

// Authoritative returns the record to act on among several for one member and
// date. ok is false for an empty slice.
func Authoritative(records []Attendance) (Attendance, bool) {
	if len(records) == 0 {
		return Attendance{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if Better(r, best) {
			best = r
		}
	}
	return best, true
}

// Group partitions records by member key. Records with no usable identity are
// returned separately and are never treated as duplicates.
func Group(records []Attendance) (groups map[MemberKey][]Attendance, order []MemberKey, unkeyed []Attendance) {
	groups = make(map[MemberKey][]Attendance)
	for _, r := range records {
		key, ok := KeyOf(r.Identity())
		if !ok {
			unkeyed = append(unkeyed, r)
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	return groups, order, unkeyed
}
