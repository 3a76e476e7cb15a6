package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	redisc "github.com/muminalshawaf/book-extractor-sub002/internal/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Task is a unit of background work stored in Redis.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    TaskStatus      `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	DedupKey  string          `json:"dedup_key,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const (
	keyPrefix   = "bx:task:"
	keyIndex    = "bx:tasks:index"  // sorted set: score=created_at, member=task_id
	keyDedupSet = "bx:tasks:dedup:" // hash: dedup_key -> task_id
	taskTTL     = 7 * 24 * time.Hour
)

// Service manages Redis-backed task records with cooperative cancellation.
// Running tasks register a context cancel func; cancelling a running task
// cancels its context, and the loop is expected to stop between iterations.
type Service struct {
	rc *redisc.Client

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	// statusMu serializes status read-modify-write cycles so a terminal
	// status is sticky: whichever of completion and cancellation lands first
	// wins, the loser is dropped.
	statusMu sync.Mutex
}

func NewService(rc *redisc.Client) *Service {
	return &Service{rc: rc, cancels: make(map[string]context.CancelFunc)}
}

func (s *Service) taskKey(id string) string { return keyPrefix + id }

// Enqueue creates a new task, respecting deduplication.
func (s *Service) Enqueue(ctx context.Context, taskType string, payload interface{}, dedupKey string) (*Task, error) {
	if dedupKey != "" {
		existing, err := s.rc.Raw().HGet(ctx, keyDedupSet+taskType, dedupKey).Result()
		if err == nil && existing != "" {
			return s.GetByID(ctx, existing)
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Payload:   payloadBytes,
		Status:    TaskPending,
		DedupKey:  dedupKey,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	data, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}

	pipe := s.rc.Raw().TxPipeline()
	pipe.Set(ctx, s.taskKey(task.ID), data, taskTTL)
	pipe.ZAdd(ctx, keyIndex, redis.Z{
		Score:  float64(task.CreatedAt.UnixMilli()),
		Member: task.ID,
	})
	if dedupKey != "" {
		pipe.HSet(ctx, keyDedupSet+taskType, dedupKey, task.ID)
		pipe.Expire(ctx, keyDedupSet+taskType, taskTTL)
	}
	_, err = pipe.Exec(ctx)
	return task, err
}

// GetByID retrieves a task by its ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Task, error) {
	data, err := s.rc.Raw().Get(ctx, s.taskKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var task Task
	return &task, json.Unmarshal(data, &task)
}

// UpdateStatus sets a task's status and optional result/error. A task already
// in a terminal status is left untouched.
func (s *Service) UpdateStatus(ctx context.Context, id string, status TaskStatus, result interface{}, errMsg string) error {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	task, err := s.GetByID(ctx, id)
	if err != nil || task == nil {
		return fmt.Errorf("task not found")
	}
	if !allowTransition(task.Status, status) {
		return nil
	}

	task.Status = status
	task.UpdatedAt = time.Now()
	task.Error = errMsg

	if result != nil {
		task.Result, _ = json.Marshal(result)
	}

	if IsTerminal(status) {
		if task.DedupKey != "" {
			s.rc.Raw().HDel(ctx, keyDedupSet+task.Type, task.DedupKey)
		}
		s.unregister(id)
	}

	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.rc.Raw().Set(ctx, s.taskKey(id), data, taskTTL).Err()
}

// Register binds a running task to a cancel func and marks it running.
// It returns a derived context the task loop must honor.
func (s *Service) Register(ctx context.Context, id string) (context.Context, error) {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancels[id] = cancel
	s.mu.Unlock()

	if err := s.UpdateStatus(ctx, id, TaskRunning, nil, ""); err != nil {
		s.unregister(id)
		cancel()
		return nil, err
	}
	return runCtx, nil
}

func (s *Service) unregister(id string) {
	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		delete(s.cancels, id)
		cancel()
	}
	s.mu.Unlock()
}

// IsTerminal reports whether a status ends the task lifecycle.
func IsTerminal(status TaskStatus) bool {
	switch status {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

// allowTransition rejects any transition out of a terminal status.
func allowTransition(from, to TaskStatus) bool {
	return !IsTerminal(from)
}

// Cancel cancels a pending or running task. In-flight provider calls are not
// interrupted; a running loop stops between iterations.
func (s *Service) Cancel(ctx context.Context, id string) error {
	task, err := s.GetByID(ctx, id)
	if err != nil || task == nil {
		return fmt.Errorf("task not found")
	}
	switch task.Status {
	case TaskPending, TaskRunning:
	default:
		return fmt.Errorf("can only cancel pending or running tasks")
	}

	s.mu.Lock()
	cancel, running := s.cancels[id]
	s.mu.Unlock()
	if running {
		cancel()
	}
	return s.UpdateStatus(ctx, id, TaskCancelled, nil, "cancelled by user")
}
