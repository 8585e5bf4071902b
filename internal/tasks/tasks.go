// Package tasks provides the shared harness scheduled long-lived work runs
// under (the Poller today, room for more later). Grounded on the teacher's
// Manager/Task shape, with the teacher's single hard-coded
// SymbolUpdateTask replaced by caller-registered tasks — the Poller
// (internal/poller.Task) satisfies the same Start/Stop contract.
package tasks

import (
	"github.com/vikasavnish/marketaggregator/internal/logging"
)

// Task represents a scheduled task that needs to be executed
type Task interface {
	Start()
	Stop()
}

// Manager runs a set of registered tasks, each in its own goroutine.
type Manager struct {
	log   *logging.Logger
	tasks []Task
}

func NewManager(log *logging.Logger) *Manager {
	return &Manager{log: log, tasks: make([]Task, 0)}
}

// RegisterTask registers a task with the manager. Call before StartAll.
func (m *Manager) RegisterTask(task Task) {
	m.tasks = append(m.tasks, task)
}

// StartAll starts every registered task in its own goroutine.
func (m *Manager) StartAll() {
	for _, task := range m.tasks {
		go task.Start()
	}
	m.log.WithField("count", len(m.tasks)).Info("started all scheduled tasks")
}

// StopAll stops every registered task and blocks until each has returned.
func (m *Manager) StopAll() {
	for _, task := range m.tasks {
		task.Stop()
	}
	m.log.Info("stopped all scheduled tasks")
}
