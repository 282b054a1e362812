// Package focus tracks the time worked on a task during a focus session.
//
// A Session is plain state advanced one second at a time by Tick. It does not
// persist anything: SaveProgress returns the minutes to write back to the
// task and may be called any number of times without double counting.
package focus

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"blitzit/internal/model"
)

type Session struct {
	TaskID               uuid.UUID
	Title                string
	InitialActualSeconds int
	ElapsedSeconds       int
	TimeLeftSeconds      int
	Paused               bool
	Overtime             bool
}

// State is a read-only snapshot of a session.
type State struct {
	TaskID               uuid.UUID `json:"task_id"`
	Title                string    `json:"title"`
	InitialActualSeconds int       `json:"initial_actual_seconds"`
	ElapsedSeconds       int       `json:"session_elapsed_seconds"`
	TimeLeftSeconds      int       `json:"time_left_seconds"`
	Paused               bool      `json:"is_paused"`
	Overtime             bool      `json:"is_overtime"`
	MinutesWorked        int       `json:"minutes_worked"`
}

// StartSession opens a paused session for t. The remaining time may already
// be negative when more time was logged than estimated.
func StartSession(t model.Task) *Session {
	initial := max(t.ActualTime, 0) * 60
	estimated := max(t.EstimatedTime, 0) * 60
	return &Session{
		TaskID:               t.ID,
		Title:                t.Title,
		InitialActualSeconds: initial,
		TimeLeftSeconds:      estimated - initial,
		Paused:               true,
	}
}

// Tick advances a running session by one second. Overtime latches once the
// remaining time drops below zero.
func (s *Session) Tick() {
	if s == nil || s.Paused {
		return
	}
	s.ElapsedSeconds++
	s.TimeLeftSeconds--
	if s.TimeLeftSeconds < 0 {
		s.Overtime = true
	}
}

// TogglePause flips the paused flag and reports the new value.
func (s *Session) TogglePause() bool {
	if s == nil {
		return true
	}
	s.Paused = !s.Paused
	return s.Paused
}

// SaveProgress returns the total minutes worked on the task, including time
// logged before this session. Halves round to even.
func (s *Session) SaveProgress() int {
	if s == nil {
		return 0
	}
	total := s.InitialActualSeconds + s.ElapsedSeconds
	return int(math.RoundToEven(float64(total) / 60))
}

func (s *Session) Snapshot() State {
	if s == nil {
		return State{Paused: true}
	}
	return State{
		TaskID:               s.TaskID,
		Title:                s.Title,
		InitialActualSeconds: s.InitialActualSeconds,
		ElapsedSeconds:       s.ElapsedSeconds,
		TimeLeftSeconds:      s.TimeLeftSeconds,
		Paused:               s.Paused,
		Overtime:             s.Overtime,
		MinutesWorked:        s.SaveProgress(),
	}
}

// FormatClock renders seconds as mm:ss, or hh:mm:ss past the hour, with a
// leading minus for negative values.
func FormatClock(seconds int) string {
	prefix := ""
	if seconds < 0 {
		prefix = "-"
		seconds = -seconds
	}
	h, rem := seconds/3600, seconds%3600
	m, sec := rem/60, rem%60
	if h > 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", prefix, h, m, sec)
	}
	return fmt.Sprintf("%s%02d:%02d", prefix, m, sec)
}
