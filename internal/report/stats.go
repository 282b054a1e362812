// Package report aggregates task counts for the dashboard and the
// productivity report. Everything is recomputed on demand.
package report

import (
	"math"
	"time"
)

// TrendDays is the length of the completion trend window.
const TrendDays = 7

// Counts are the raw per-owner task counts.
type Counts struct {
	Total    int64
	Done     int64
	Overdue  int64
	Today    int64
	ThisWeek int64
}

// Stats is the dashboard payload.
type Stats struct {
	TotalTasks     int64   `json:"total_tasks"`
	CompletedTasks int64   `json:"completed_tasks"`
	PendingTasks   int64   `json:"pending_tasks"`
	OverdueTasks   int64   `json:"overdue_tasks"`
	TodayTasks     int64   `json:"today_tasks"`
	ThisWeekTasks  int64   `json:"this_week_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

// DayCount is the number of tasks completed on one calendar day.
type DayCount struct {
	Day   string `json:"completion_day"`
	Count int    `json:"count"`
}

// Summary is the productivity report payload.
type Summary struct {
	TotalDone       int64      `json:"total_done"`
	TotalPending    int64      `json:"total_pending"`
	CompletionTrend []DayCount `json:"completion_trend"`
}

func NewStats(c Counts) Stats {
	s := Stats{
		TotalTasks:     c.Total,
		CompletedTasks: c.Done,
		PendingTasks:   c.Total - c.Done,
		OverdueTasks:   c.Overdue,
		TodayTasks:     c.Today,
		ThisWeekTasks:  c.ThisWeek,
	}
	if c.Total > 0 {
		s.CompletionRate = math.Round(float64(c.Done)/float64(c.Total)*10000) / 100
	}
	return s
}

func NewSummary(c Counts, trend []DayCount) Summary {
	return Summary{
		TotalDone:       c.Done,
		TotalPending:    c.Total - c.Done,
		CompletionTrend: trend,
	}
}

// TrendStart is midnight TrendDays days before now, in now's location.
func TrendStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-TrendDays, 0, 0, 0, 0, now.Location())
}
