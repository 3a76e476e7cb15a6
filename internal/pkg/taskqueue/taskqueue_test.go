package taskqueue

import "testing"

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{"pending to running", TaskPending, TaskRunning, true},
		{"running to completed", TaskRunning, TaskCompleted, true},
		{"running to cancelled", TaskRunning, TaskCancelled, true},
		{"running to failed", TaskRunning, TaskFailed, true},
		{"pending to cancelled", TaskPending, TaskCancelled, true},
		{"cancelled stays cancelled", TaskCancelled, TaskCompleted, false},
		{"completed stays completed", TaskCompleted, TaskCancelled, false},
		{"failed stays failed", TaskFailed, TaskCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allowTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("allowTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []TaskStatus{TaskCompleted, TaskFailed, TaskCancelled}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Fatalf("IsTerminal(%s) = false", s)
		}
	}
	for _, s := range []TaskStatus{TaskPending, TaskRunning} {
		if IsTerminal(s) {
			t.Fatalf("IsTerminal(%s) = true", s)
		}
	}
}
