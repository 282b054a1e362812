package focus

import "github.com/google/uuid"

// NextInFlow picks the task to focus on next from today's list. After a skip
// the task following current is chosen; otherwise current's own slot is
// reused, which after a completion holds whatever moved up into it. The
// second result is false when the list is exhausted.
func NextInFlow(today []uuid.UUID, current uuid.UUID, fromSkip bool) (uuid.UUID, bool) {
	index := -1
	for i, id := range today {
		if id == current {
			index = i
			break
		}
	}

	next := index
	if fromSkip {
		next = index + 1
	}
	if next < 0 || next >= len(today) {
		return uuid.Nil, false
	}
	return today[next], true
}
