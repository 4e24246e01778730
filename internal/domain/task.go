package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus represents the processing state of a generation task
type TaskStatus string

// Possible task status values. TaskStatusNotFound is never stored; it is
// reported for identifiers the registry does not know.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusNotFound   TaskStatus = "not_found"
)

// Progress checkpoints reported while a generation task advances.
const (
	ProgressQueued    = 0
	ProgressStarted   = 10
	ProgressResolved  = 30
	ProgressGenerated = 60
	ProgressStored    = 90
	ProgressDone      = 100
)

// DefaultFailureMessage is recorded when a task fails without a reason.
const DefaultFailureMessage = "task failed"

// GeneratedImage is one result of a hairstyle generation task.
type GeneratedImage struct {
	ImageURL      string `json:"image_url"`
	HairstyleID   string `json:"hairstyle_id"`
	HairstyleName string `json:"hairstyle_name,omitempty"`
	Provider      string `json:"provider,omitempty"`
}

// Task is the registry record of one unit of deferred work.
type Task struct {
	ID        string           `json:"task_id"`
	Type      string           `json:"type"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	Status    TaskStatus       `json:"status"`
	Progress  int              `json:"progress"`
	Results   []GeneratedImage `json:"results,omitempty"`
	Error     string           `json:"error,omitempty"`
	Message   string           `json:"message,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TaskUpdate carries the fields to merge into a task. Nil fields are left
// unchanged.
type TaskUpdate struct {
	Status   *TaskStatus
	Progress *int
	Results  []GeneratedImage
	Error    *string
	Message  *string
}

// NewTask creates a pending task with zero progress.
func NewTask(id, taskType string, payload json.RawMessage) (*Task, error) {
	if id == "" {
		return nil, ErrEmptyTaskID
	}

	now := time.Now().UTC()
	return &Task{
		ID:        id,
		Type:      taskType,
		Payload:   payload,
		Status:    TaskStatusPending,
		Progress:  ProgressQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NotFoundTask builds the record reported for an unknown identifier.
func NotFoundTask(id string) *Task {
	return &Task{ID: id, Status: TaskStatusNotFound, Progress: 0}
}

// IsTerminal reports whether the status can no longer change.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// IsValid reports whether the status may be stored in a registry.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusProcessing:
		return 1
	default:
		return 2
	}
}

// CanTransition reports whether a task in status from may move to status to.
// Statuses only move forward and finished tasks never change.
func CanTransition(from, to TaskStatus) bool {
	if !from.IsValid() || !to.IsValid() || from.IsTerminal() {
		return false
	}
	return to.rank() >= from.rank()
}

// Apply merges u into the task, enforcing the lifecycle rules: status never
// reverses, progress never decreases, a completed task has results and full
// progress, and a failed task has an error and no results.
func (t *Task) Apply(u TaskUpdate, now time.Time) error {
	if u.Status != nil {
		if !u.Status.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, *u.Status)
		}
		if !CanTransition(t.Status, *u.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, *u.Status)
		}
	} else if t.Status.IsTerminal() {
		return fmt.Errorf("%w: task %s is %s", ErrInvalidTransition, t.ID, t.Status)
	}

	if u.Progress != nil {
		progress := clampProgress(*u.Progress)
		if progress > t.Progress {
			t.Progress = progress
		}
	}

	if u.Message != nil {
		t.Message = *u.Message
	}

	if u.Status != nil {
		t.Status = *u.Status
	}

	switch t.Status {
	case TaskStatusCompleted:
		t.Progress = ProgressDone
		t.Error = ""
		t.Results = u.Results
		if t.Results == nil {
			t.Results = []GeneratedImage{}
		}
	case TaskStatusFailed:
		t.Results = nil
		t.Error = DefaultFailureMessage
		if u.Error != nil && *u.Error != "" {
			t.Error = *u.Error
		}
	}

	t.UpdatedAt = now.UTC()
	return nil
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	// make+copy keeps an empty, non-nil result list non-nil.
	if t.Payload != nil {
		c.Payload = make(json.RawMessage, len(t.Payload))
		copy(c.Payload, t.Payload)
	}
	if t.Results != nil {
		c.Results = make([]GeneratedImage, len(t.Results))
		copy(c.Results, t.Results)
	}
	return &c
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > ProgressDone:
		return ProgressDone
	default:
		return p
	}
}

// StatusUpdate builds an update that moves to status with the given progress.
func StatusUpdate(status TaskStatus, progress int) TaskUpdate {
	return TaskUpdate{Status: &status, Progress: &progress}
}

// ProgressUpdate builds an update that only advances progress.
func ProgressUpdate(progress int) TaskUpdate {
	return TaskUpdate{Progress: &progress}
}

// CompletedUpdate builds the final update of a successful task.
func CompletedUpdate(results []GeneratedImage) TaskUpdate {
	status := TaskStatusCompleted
	progress := ProgressDone
	if results == nil {
		results = []GeneratedImage{}
	}
	return TaskUpdate{Status: &status, Progress: &progress, Results: results}
}

// FailedUpdate builds the final update of a failed task.
func FailedUpdate(reason string) TaskUpdate {
	status := TaskStatusFailed
	return TaskUpdate{Status: &status, Error: &reason}
}
