package lifecycle

import (
	"time"

	"blitzit/internal/model"
)

// TaskPatch is the placement change produced by an engine operation. Nil
// fields are left untouched.
type TaskPatch struct {
	Column       *model.Column
	Rank         *int
	TaskPriority *model.Priority
	IsUrgent     *bool
	IsImportant  *bool
	CompletedAt  *time.Time

	// ClearCompletedAt nulls completed_at; it is set whenever a task leaves Done.
	ClearCompletedAt bool

	// AppendToEnd marks the task as unranked in its destination column. The
	// store resolves it to one past the column's current maximum rank inside
	// the same transaction that writes the patch.
	AppendToEnd bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Column == nil && p.Rank == nil && p.TaskPriority == nil &&
		p.IsUrgent == nil && p.IsImportant == nil && p.CompletedAt == nil &&
		!p.ClearCompletedAt && !p.AppendToEnd
}

// Apply copies the patch onto t. An AppendToEnd patch takes appendRank as the
// new rank.
func (p TaskPatch) Apply(t *model.Task, appendRank int) {
	if p.Column != nil {
		t.Column = *p.Column
	}
	if p.Rank != nil {
		t.Rank = *p.Rank
	} else if p.AppendToEnd {
		t.Rank = appendRank
	}
	if p.TaskPriority != nil {
		t.TaskPriority = *p.TaskPriority
	}
	if p.IsUrgent != nil {
		t.IsUrgent = *p.IsUrgent
	}
	if p.IsImportant != nil {
		t.IsImportant = *p.IsImportant
	}
	if p.CompletedAt != nil {
		completed := *p.CompletedAt
		t.CompletedAt = &completed
	}
	if p.ClearCompletedAt {
		t.CompletedAt = nil
	}
}

// Updates renders the patch as a gorm column map. Rank resolution for
// AppendToEnd is left to the caller.
func (p TaskPatch) Updates() map[string]any {
	updates := make(map[string]any)
	if p.Column != nil {
		updates["board_column"] = *p.Column
	}
	if p.Rank != nil {
		updates["priority_rank"] = *p.Rank
	}
	if p.TaskPriority != nil {
		updates["task_priority"] = *p.TaskPriority
	}
	if p.IsUrgent != nil {
		updates["is_urgent"] = *p.IsUrgent
	}
	if p.IsImportant != nil {
		updates["is_important"] = *p.IsImportant
	}
	if p.CompletedAt != nil {
		updates["completed_at"] = *p.CompletedAt
	}
	if p.ClearCompletedAt {
		updates["completed_at"] = nil
	}
	return updates
}

func ptr[T any](v T) *T { return &v }
