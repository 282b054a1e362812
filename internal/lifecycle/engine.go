// Package lifecycle decides where a task lands when it is moved, reordered,
// dropped on the board or dropped on the Eisenhower matrix. Every operation
// is a pure function of its inputs; persisting the result is up to the caller.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"blitzit/internal/model"
)

var (
	ErrInvalidColumn   = errors.New("invalid column")
	ErrInvalidOrder    = errors.New("invalid task order")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Engine holds the clock used to stamp completions.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock is used by tests and by the importer, which replays
// historical completion times.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Place prepares a task that is about to be created: an empty column means
// Backlog, and completed_at is stamped for tasks created straight into Done
// and cleared for any other column.
func (e *Engine) Place(t *model.Task) error {
	if t.Column == "" {
		t.Column = model.ColumnBacklog
	}
	if !t.Column.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, t.Column)
	}
	if !t.TaskPriority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.TaskPriority)
	}

	switch {
	case !t.IsDone():
		t.CompletedAt = nil
	case t.CompletedAt == nil:
		t.CompletedAt = ptr(e.now())
	}
	return nil
}

// MoveToColumn moves t to column to. Moving into Done stamps completed_at
// with the current time, also when the task was already done, and keeps the
// rank; any other destination clears completed_at and sends the task to the
// end of the destination column.
func (e *Engine) MoveToColumn(t model.Task, to model.Column) (TaskPatch, error) {
	if !to.Valid() {
		return TaskPatch{}, fmt.Errorf("%w: %q", ErrInvalidColumn, to)
	}

	if to == model.ColumnDone {
		return TaskPatch{Column: ptr(to), CompletedAt: ptr(e.now())}, nil
	}

	return TaskPatch{
		Column:           ptr(to),
		ClearCompletedAt: true,
		AppendToEnd:      true,
	}, nil
}

// Reopen sends a task back to Today.
func (e *Engine) Reopen(t model.Task) (TaskPatch, error) {
	return e.MoveToColumn(t, model.ColumnToday)
}

// Complete moves a task to Done.
func (e *Engine) Complete(t model.Task) (TaskPatch, error) {
	return e.MoveToColumn(t, model.ColumnDone)
}

// Reorder ranks ids by position, starting at zero.
func Reorder(ids []uuid.UUID) (map[uuid.UUID]int, error) {
	ranks := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		if _, dup := ranks[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOrder, id)
		}
		ranks[id] = i
	}
	return ranks, nil
}

// ReorderColumn ranks the tasks of one column in the order of ids. ids must
// list every active task of the column exactly once and nothing else.
// Archived tasks that are left out follow the listed ones in their current
// order.
func ReorderColumn(ids []uuid.UUID, column []model.Task) (map[uuid.UUID]int, error) {
	ranks, err := Reorder(ids)
	if err != nil {
		return nil, err
	}

	members := make(map[uuid.UUID]bool, len(column))
	for _, t := range column {
		members[t.ID] = true
	}
	for _, id := range ids {
		if !members[id] {
			return nil, fmt.Errorf("%w: %s is not in the column", ErrInvalidOrder, id)
		}
	}

	for _, t := range SortByRank(column) {
		if _, listed := ranks[t.ID]; listed {
			continue
		}
		if t.Status != model.StatusArchived {
			return nil, fmt.Errorf("%w: %s is missing", ErrInvalidOrder, t.ID)
		}
		ranks[t.ID] = len(ranks)
	}
	return ranks, nil
}

// DropResult is the outcome of a board drag-and-drop. SourceRanks is nil when
// the task stayed in its column.
type DropResult struct {
	Patch       TaskPatch
	SourceRanks map[uuid.UUID]int
	DestRanks   map[uuid.UUID]int
}

// DropInto inserts t into destColumn at destRow. source and dest are the
// current occupants of t's column and of the destination column in the same
// project; order is taken from their ranks. The two columns are re-ranked
// independently.
func (e *Engine) DropInto(t model.Task, source, dest []model.Task, destColumn model.Column, destRow int) (DropResult, error) {
	if !destColumn.Valid() {
		return DropResult{}, fmt.Errorf("%w: %q", ErrInvalidColumn, destColumn)
	}

	destIDs := idsWithout(SortByRank(dest), t.ID)
	if destRow < 0 {
		destRow = 0
	}
	if destRow > len(destIDs) {
		destRow = len(destIDs)
	}
	destIDs = slices.Insert(destIDs, destRow, t.ID)

	destRanks, err := Reorder(destIDs)
	if err != nil {
		return DropResult{}, err
	}

	result := DropResult{DestRanks: destRanks}
	if t.Column == destColumn {
		result.Patch = TaskPatch{Rank: ptr(destRanks[t.ID])}
		return result, nil
	}

	patch, err := e.MoveToColumn(t, destColumn)
	if err != nil {
		return DropResult{}, err
	}
	patch.AppendToEnd = false
	patch.Rank = ptr(destRanks[t.ID])
	result.Patch = patch

	result.SourceRanks, err = Reorder(idsWithout(SortByRank(source), t.ID))
	if err != nil {
		return DropResult{}, err
	}
	return result, nil
}

// ApplyQuadrantDrop maps a matrix drop back onto task attributes. The matrix
// can only place tasks in Today or This Week with High or Medium priority.
// Leaving Done through the matrix clears completed_at; a column change sends
// the task to the end of its new column.
func (e *Engine) ApplyQuadrantDrop(t model.Task, isUrgent, isImportant bool) TaskPatch {
	column := model.ColumnThisWeek
	if isUrgent {
		column = model.ColumnToday
	}
	priority := model.PriorityMedium
	if isImportant {
		priority = model.PriorityHigh
	}

	patch := TaskPatch{
		Column:       ptr(column),
		TaskPriority: ptr(priority),
		IsUrgent:     ptr(isUrgent),
		IsImportant:  ptr(isImportant),
	}
	if t.Column != column {
		patch.AppendToEnd = true
	}
	if t.IsDone() || t.CompletedAt != nil {
		patch.ClearCompletedAt = true
	}
	return patch
}

// NextRank is the rank a task gets when appended to a column.
func NextRank(column []model.Task) int {
	next := 0
	for _, t := range column {
		if t.Rank >= next {
			next = t.Rank + 1
		}
	}
	return next
}

// SortByRank returns a copy of tasks in display order. Ties keep their
// incoming order.
func SortByRank(tasks []model.Task) []model.Task {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	return sorted
}

func idsWithout(tasks []model.Task, skip uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != skip {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
