package taskqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplifyState(t *testing.T) {
	cases := []struct {
		state JobState
		want  Status
	}{
		{JobWaiting, StatusPending},
		{JobDelayed, StatusPending},
		{JobActive, StatusProcessing},
		{JobCompleted, StatusCompleted},
		{JobFailed, StatusFailed},
		{JobState("unknown"), StatusFailed},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SimplifyState(tc.state), "state=%s", tc.state)
	}
}

func TestJobStatusView(t *testing.T) {
	job := Job{
		ID:          "j1",
		NoteID:      "n1",
		State:       JobActive,
		Progress:    40,
		Attempts:    1,
		MaxAttempts: 3,
	}
	status := job.Status()
	assert.Equal(t, "j1", status.ID)
	assert.Equal(t, "n1", status.NoteID)
	assert.Equal(t, StatusProcessing, status.Status)
	assert.Equal(t, 40, status.Progress)
}

func TestNilClientReportsUnavailable(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.Enqueue(context.Background(), "note-1")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = svc.GetJob(context.Background(), "job-1")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = svc.Fail(context.Background(), "job-1", "boom")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTerminalState(t *testing.T) {
	assert.True(t, terminalState(JobCompleted))
	assert.True(t, terminalState(JobFailed))
	assert.False(t, terminalState(JobWaiting))
	assert.False(t, terminalState(JobActive))
}
