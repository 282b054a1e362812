// Package reminder finds tasks whose reminder time has passed and hands them
// to notifiers. The sweep only reads tasks; which ones were already announced
// lives in a NotificationState owned by the caller.
package reminder

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"blitzit/internal/model"
)

// NotificationState remembers the tasks already announced.
type NotificationState struct {
	notified map[uuid.UUID]struct{}
}

func NewNotificationState() NotificationState {
	return NotificationState{notified: make(map[uuid.UUID]struct{})}
}

func (s NotificationState) Notified(id uuid.UUID) bool {
	_, ok := s.notified[id]
	return ok
}

func (s NotificationState) Len() int {
	return len(s.notified)
}

func (s NotificationState) with(ids []uuid.UUID) NotificationState {
	next := NotificationState{notified: make(map[uuid.UUID]struct{}, len(s.notified)+len(ids))}
	maps.Copy(next.notified, s.notified)
	for _, id := range ids {
		next.notified[id] = struct{}{}
	}
	return next
}

// Forget returns a copy of the state without ids.
func (s NotificationState) Forget(ids ...uuid.UUID) NotificationState {
	next := NotificationState{notified: maps.Clone(s.notified)}
	if next.notified == nil {
		next.notified = make(map[uuid.UUID]struct{})
	}
	for _, id := range ids {
		delete(next.notified, id)
	}
	return next
}

// retain keeps only the tasks that are still listed, so a task that drops
// out of the reminder set and comes back is announced again.
func (s NotificationState) retain(tasks []model.Task) NotificationState {
	listed := make(map[uuid.UUID]struct{}, len(tasks))
	for _, t := range tasks {
		if s.Notified(t.ID) {
			listed[t.ID] = struct{}{}
		}
	}
	if len(listed) == len(s.notified) {
		return s
	}
	return NotificationState{notified: listed}
}

// Reminder is a single due notification.
type Reminder struct {
	Task    model.Task
	Title   string
	Message string
	Late    time.Duration
}

// Sweep returns the reminders due at now and the state extended with their
// task ids. The passed state is left untouched.
func Sweep(tasks []model.Task, now time.Time, state NotificationState) ([]Reminder, NotificationState) {
	var (
		due []Reminder
		ids []uuid.UUID
	)
	for _, t := range tasks {
		if !t.ReminderEnabled || t.DueDate == nil || t.IsDone() {
			continue
		}
		if state.Notified(t.ID) {
			continue
		}
		notifyAt := t.DueDate.Add(-time.Duration(max(t.ReminderOffset, 0)) * time.Minute)
		if notifyAt.After(now) {
			continue
		}

		late := now.Sub(notifyAt)
		due = append(due, Reminder{
			Task:    t,
			Title:   "Task Due: " + t.Title,
			Message: Message(t.Title, late),
			Late:    late,
		})
		ids = append(ids, t.ID)
	}
	return due, state.with(ids)
}

// Message formats the reminder text for a task that became due late ago.
func Message(title string, late time.Duration) string {
	if late < time.Minute {
		return fmt.Sprintf("Task '%s' is due now!", title)
	}
	hours := int(late / time.Hour)
	minutes := int(late%time.Hour) / int(time.Minute)
	if hours > 0 {
		return fmt.Sprintf("Task '%s' was due %dh %dm ago.", title, hours, minutes)
	}
	return fmt.Sprintf("Task '%s' was due %dm ago.", title, minutes)
}
