// Package notify carries user-facing success and failure notifications from
// controllers to whatever renders them.
package notify

import (
	"sync"
	"time"
)

// Level is the kind of a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notifier receives exactly one call per completed operation.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Notice is one delivered notification.
type Notice struct {
	Level Level
	Msg   string
	At    time.Time
}

// Queue is a concurrency-safe Notifier that buffers notices until drained.
// The TUI drains it after every command result. The zero value is ready to use.
type Queue struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

func (q *Queue) push(level Level, msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now
	if now == nil {
		now = time.Now
	}
	q.notices = append(q.notices, Notice{Level: level, Msg: msg, At: now()})
}

// Success records a success notice.
func (q *Queue) Success(msg string) { q.push(LevelSuccess, msg) }

// Error records a failure notice.
func (q *Queue) Error(msg string) { q.push(LevelError, msg) }

// Drain returns and clears every buffered notice in delivery order.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.notices
	q.notices = nil
	return out
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}
