package service

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler runs one-shot callbacks keyed by resource id. Scheduling a key that
// already has a pending timer replaces it.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*scheduledTask
	stopped bool
	nextID  uint64
}

type scheduledTask struct {
	id    uint64
	timer *time.Timer
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[string]*scheduledTask),
	}
}

// Schedule runs fn after delay unless the key is cancelled or rescheduled first.
// It returns false once the scheduler is stopped.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	if existing, ok := s.timers[key]; ok {
		existing.timer.Stop()
	}

	s.nextID++
	task := &scheduledTask{id: s.nextID}
	task.timer = time.AfterFunc(delay, func() {
		// A replaced or cancelled task must not run
		s.mu.Lock()
		current, ok := s.timers[key]
		if !ok || current.id != task.id {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"key":   key,
					"panic": r,
				}).Error("Scheduled task panicked")
			}
		}()
		fn()
	})
	s.timers[key] = task

	log.WithFields(log.Fields{
		"key":   key,
		"delay": delay,
	}).Debug("Scheduled task")

	return true
}

// Cancel stops the pending timer for key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.timers[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(s.timers, key)

	log.WithField("key", key).Debug("Cancelled scheduled task")
	return true
}

// Pending reports whether a timer is waiting for key
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[key]
	return ok
}

// Stop cancels every pending timer and rejects further scheduling
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, task := range s.timers {
		task.timer.Stop()
		delete(s.timers, key)
	}
	s.stopped = true
}
