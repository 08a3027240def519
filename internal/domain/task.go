package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Field bounds for task attributes, counted in characters.
const (
	MaxTaskNameLength        = 128
	MaxTaskDescriptionLength = 255
)

// TaskStatus is the lifecycle label of a task.
type TaskStatus string

// Default status labels.
const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// DefaultStatuses is the status set used when none is configured.
var DefaultStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusDone}

// StatusSet is the closed, ordered set of labels a task status may take.
type StatusSet struct {
	ordered []TaskStatus
	index   map[TaskStatus]struct{}
}

// NewStatusSet builds a StatusSet from labels. Labels are trimmed; empty
// or duplicate labels are rejected.
func NewStatusSet(labels ...string) (StatusSet, error) {
	if len(labels) == 0 {
		return StatusSet{}, fmt.Errorf("%w: at least one status is required", ErrInvalidStatus)
	}

	set := StatusSet{
		ordered: make([]TaskStatus, 0, len(labels)),
		index:   make(map[TaskStatus]struct{}, len(labels)),
	}
	for _, l := range labels {
		s := TaskStatus(strings.TrimSpace(l))
		if s == "" {
			return StatusSet{}, fmt.Errorf("%w: empty status label", ErrInvalidStatus)
		}
		if _, dup := set.index[s]; dup {
			return StatusSet{}, fmt.Errorf("%w: duplicate status %q", ErrInvalidStatus, s)
		}
		set.index[s] = struct{}{}
		set.ordered = append(set.ordered, s)
	}
	return set, nil
}

// DefaultStatusSet returns the set {pending, in_progress, done}.
func DefaultStatusSet() StatusSet {
	labels := make([]string, len(DefaultStatuses))
	for i, s := range DefaultStatuses {
		labels[i] = string(s)
	}
	set, _ := NewStatusSet(labels...)
	return set
}

// Contains reports whether s is a member of the set.
func (s StatusSet) Contains(status TaskStatus) bool {
	_, ok := s.index[status]
	return ok
}

// Values returns the statuses in configuration order.
func (s StatusSet) Values() []TaskStatus {
	out := make([]TaskStatus, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Strings returns the labels in configuration order.
func (s StatusSet) Strings() []string {
	out := make([]string, len(s.ordered))
	for i, st := range s.ordered {
		out[i] = string(st)
	}
	return out
}

// Task is a unit of work tracked by the API.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

// TaskInput carries the validated fields of a new task.
type TaskInput struct {
	Name        string
	Description string
	Status      TaskStatus
}

// NewTask creates a Task from validated input with a fresh server-side id.
func NewTask(in TaskInput) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
	}
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	Status      *TaskStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil
}

// Apply merges the patch into t in place.
func (p TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}
