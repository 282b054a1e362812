package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task does not exist or belongs to another owner
	ErrTaskNotFound = errors.New("task not found")

	// ErrProjectNotFound is returned when a project does not exist or belongs to another owner
	ErrProjectNotFound = errors.New("project not found")

	// ErrSubtaskNotFound is returned when a subtask or its parent task is not visible to the owner
	ErrSubtaskNotFound = errors.New("subtask not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateProject is returned when the owner already has a project with that name
	ErrDuplicateProject = errors.New("project with this name already exists")

	// ErrDuplicateUser is returned when the email is already registered
	ErrDuplicateUser = errors.New("user with this email already exists")
)

func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func duplicate(err, target error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}
