package task

import (
	"context"
	"sync/atomic"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// MockJob is a scriptable Job for tests.
type MockJob struct {
	JobID      string
	JobType    string
	JobPayload []byte
	ExecuteFn  func(ctx context.Context, progress ProgressFunc) ([]domain.GeneratedImage, error)

	calls atomic.Int32
}

// NewMockJob creates a MockJob that completes with a single result.
func NewMockJob(id string) *MockJob {
	return &MockJob{
		JobID:   id,
		JobType: TaskTypeHairstyleGeneration,
		ExecuteFn: func(ctx context.Context, progress ProgressFunc) ([]domain.GeneratedImage, error) {
			return []domain.GeneratedImage{{ImageURL: "https://example.com/out.jpg", HairstyleID: "1"}}, nil
		},
	}
}

// ID implements Job.
func (j *MockJob) ID() string { return j.JobID }

// Type implements Job.
func (j *MockJob) Type() string { return j.JobType }

// Payload implements Job.
func (j *MockJob) Payload() []byte { return j.JobPayload }

// Execute implements Job.
func (j *MockJob) Execute(ctx context.Context, progress ProgressFunc) ([]domain.GeneratedImage, error) {
	j.calls.Add(1)
	return j.ExecuteFn(ctx, progress)
}

// Calls returns how many times Execute ran.
func (j *MockJob) Calls() int {
	return int(j.calls.Load())
}
