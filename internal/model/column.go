package model

import "strings"

// Column is a task's coarse workflow stage. The string values are part of the
// external contract and must not change.
type Column string

const (
	ColumnBacklog  Column = "Backlog"
	ColumnThisWeek Column = "This Week"
	ColumnToday    Column = "Today"
	ColumnDone     Column = "Done"
)

// Columns lists the board columns in display order.
var Columns = []Column{ColumnBacklog, ColumnThisWeek, ColumnToday, ColumnDone}

func (c Column) Valid() bool {
	switch c {
	case ColumnBacklog, ColumnThisWeek, ColumnToday, ColumnDone:
		return true
	}
	return false
}

func (c Column) String() string { return string(c) }

// ParseColumn matches a column name exactly, then case-insensitively, so
// "this week" from a query string still resolves.
func ParseColumn(s string) (Column, bool) {
	c := Column(s)
	if c.Valid() {
		return c, true
	}
	for _, known := range Columns {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, true
		}
	}
	return "", false
}
