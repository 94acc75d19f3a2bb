package progress

import (
	"math"
	"slices"
	"strings"

	"github.com/duetapp/duet/internal/model"
)

// Report is one external metric report for a user and day.
type Report struct {
	Date    string
	Metrics model.Metrics
}

// FoldReport applies a report to a participant's challenge progress and
// returns the new row. The tracked total is overwritten, not added, because
// external sources send running totals. A day counts as completed at most
// once whatever order reports arrive in, so replaying any earlier report
// leaves the day count unchanged.
func FoldReport(prev model.ChallengeProgress, metric string, r Report) model.ChallengeProgress {
	next := prev

	if reported, ok := r.Metrics[metric]; ok && !math.IsNaN(reported) {
		next.Total = reported
		next.MaxMetricValue = math.Max(prev.MaxMetricValue, reported)
		if reported > 0 && !dayCounted(prev.CountedDays, r.Date) {
			next.DaysCompleted = prev.DaysCompleted + 1
			next.CountedDays = countDay(prev.CountedDays, r.Date)
			if r.Date > prev.LastSyncDate {
				next.LastSyncDate = r.Date
			}
		}
	}

	if hr, ok := r.Metrics[model.MetricHeartRate]; ok && !math.IsNaN(hr) {
		v := hr
		next.AvgHeartRate = &v
	}

	return next
}

func dayCounted(days, date string) bool {
	if days == "" {
		return false
	}
	return slices.Contains(strings.Split(days, ","), date)
}

// countDay adds date to the set, keeping it sorted.
func countDay(days, date string) string {
	if days == "" {
		return date
	}
	set := append(strings.Split(days, ","), date)
	slices.Sort(set)
	return strings.Join(set, ",")
}
