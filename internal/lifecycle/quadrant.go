package lifecycle

import "blitzit/internal/model"

// Quadrant is an Eisenhower matrix cell.
type Quadrant string

const (
	UrgentImportant       Quadrant = "urgent_important"
	NotUrgentImportant    Quadrant = "not_urgent_important"
	UrgentNotImportant    Quadrant = "urgent_not_important"
	NotUrgentNotImportant Quadrant = "not_urgent_not_important"
)

// Quadrants lists the matrix cells in reading order.
var Quadrants = []Quadrant{UrgentImportant, NotUrgentImportant, UrgentNotImportant, NotUrgentNotImportant}

// Title is the heading shown above the quadrant.
func (q Quadrant) Title() string {
	switch q {
	case UrgentImportant:
		return "Urgent & Important"
	case NotUrgentImportant:
		return "Not Urgent & Important"
	case UrgentNotImportant:
		return "Urgent & Not Important"
	case NotUrgentNotImportant:
		return "Not Urgent & Not Important"
	}
	return string(q)
}

// Axes returns the urgency and importance a quadrant stands for.
func (q Quadrant) Axes() (isUrgent, isImportant bool) {
	switch q {
	case UrgentImportant:
		return true, true
	case NotUrgentImportant:
		return false, true
	case UrgentNotImportant:
		return true, false
	}
	return false, false
}

// ClassifyQuadrant places a task in the matrix: Today means urgent, High
// priority means important.
func ClassifyQuadrant(t model.Task) Quadrant {
	urgent := t.Column == model.ColumnToday
	important := t.TaskPriority == model.PriorityHigh
	switch {
	case urgent && important:
		return UrgentImportant
	case important:
		return NotUrgentImportant
	case urgent:
		return UrgentNotImportant
	default:
		return NotUrgentNotImportant
	}
}
