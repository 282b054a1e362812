package model

// Priority is the user-assigned importance of a task. It is unrelated to the
// ordering rank inside a column.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status separates archived tasks from the active board.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)
