// Package jobmgr runs named background jobs with cancellation and in-memory
// tracking. It is intentionally minimal: no retries, no workers, no
// persistence. Jobs run in their own goroutine and are removed on completion.
package jobmgr

import (
	"context"
	"fmt"
	"sync"
)

// Job is one running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs, e.g. "running:unmute:x",
// "error:unmute:x:...", "done:unmute:x". May be nil.
type StatusReporter func(string)

// Manager starts, stops and tracks jobs. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a Manager with an optional reporter.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// Start runs a job in its own goroutine. Starting a name that is already
// running is an error; use Replace when the new job should supersede.
func (m *Manager) Start(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job '%s' is already running", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{Name: name, Cancel: cancel}
	m.jobs[name] = job
	m.mu.Unlock()

	go func() {
		m.report("running:" + name)

		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Replace cancels any job running under name, then starts the new one.
func (m *Manager) Replace(name string, runner func(ctx context.Context) error) error {
	m.Stop(name)
	return m.Start(name, runner)
}

// Stop cancels a running job by name. Stopping a job that is not running is a
// no-op; it reports whether anything was cancelled.
func (m *Manager) Stop(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return false
	}
	job.Cancel()
	delete(m.jobs, name)
	return true
}

// Running reports whether a job with this name is active.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, job := range m.jobs {
		job.Cancel()
		delete(m.jobs, name)
	}
}

func (m *Manager) report(msg string) {
	if m.Reporter != nil {
		m.Reporter(msg)
	}
}
