package navigator

import (
	"sync"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
)

const (
	TASK_STATUS_STARTED   = "started"
	TASK_STATUS_COMPLETED = "completed"
	TASK_STATUS_FAILED    = "failed"
)

// DefaultTaskRetention is how many tasks a TaskLog remembers by default.
const DefaultTaskRetention = 256

type Task struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Target grid.Cell `json:"target"`
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
	Steps  int       `json:"steps"`
}

// TaskLog keeps the status of the most recent tasks. Once retention is
// reached the oldest task is forgotten for every new one.
type TaskLog struct {
	mu        sync.RWMutex
	retention int
	order     []string
	tasks     map[string]Task
}

func NewTaskLog(retention int) *TaskLog {
	if retention <= 0 {
		retention = DefaultTaskRetention
	}
	return &TaskLog{retention: retention, tasks: make(map[string]Task)}
}

func (l *TaskLog) put(t Task) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.tasks[t.ID]; !ok {
		if len(l.order) == l.retention {
			delete(l.tasks, l.order[0])
			copy(l.order, l.order[1:])
			l.order = l.order[:len(l.order)-1]
		}
		l.order = append(l.order, t.ID)
	}
	l.tasks[t.ID] = t
}

func (l *TaskLog) Get(id string) (Task, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tasks[id]
	return t, ok
}

func (l *TaskLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}
