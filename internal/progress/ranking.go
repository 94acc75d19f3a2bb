package progress

import (
	"sort"
)

const (
	WinnerUser    = "user"
	WinnerPartner = "partner"
	WinnerTie     = "tie"
)

type Entry struct {
	UserID string
	Total  float64
}

type RankedEntry struct {
	UserID  string  `json:"userId"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
	Rank    int     `json:"rank"`
}

// Rank orders entries by total descending. Equal totals keep their input order
// and still get distinct sequential ranks: [a:100, b:80, c:100] ranks a=1, c=2, b=3.
// Percentages are rounded to one decimal here since this is a read boundary.
func Rank(entries []Entry, target float64) []RankedEntry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})

	ranked := make([]RankedEntry, 0, len(sorted))
	for i, e := range sorted {
		ranked = append(ranked, RankedEntry{
			UserID:  e.UserID,
			Total:   e.Total,
			Percent: Round1(Percent(e.Total, target)),
			Rank:    i + 1,
		})
	}
	return ranked
}

// Winner compares the caller's percentage against the partner's. Two zero
// percentages mean nobody has started and yield no winner ("").
func Winner(userPercent, partnerPercent float64) string {
	switch {
	case userPercent > partnerPercent:
		return WinnerUser
	case userPercent < partnerPercent:
		return WinnerPartner
	case userPercent > 0:
		return WinnerTie
	}
	return ""
}
