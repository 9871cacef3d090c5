package ml

import (
	"log"
	"sync"
	"time"
)

// SchedulerState is the training state machine position.
type SchedulerState int32

const (
	StateIdle SchedulerState = iota
	StateQueued
	StateTraining
)

// TrainFunc runs one full train-and-persist cycle. trained=false with a
// nil error means the cycle was skipped (for example, corpus below the
// minimum); that keeps the previous parameters and is not a failure.
type TrainFunc func() (trained bool, err error)

// Scheduler serializes retraining. Any number of Schedule calls
// collapse into a single pending run: the queue is a three-state flag,
// not a list, so it cannot grow. Callers never block; the runner drains
// in a background goroutine, re-entering at most once per batch of
// requests that arrived mid-run. A failed cycle logs, keeps the old
// parameters and cache, and returns to idle.
type Scheduler struct {
	mu            sync.Mutex
	state         SchedulerState
	pending       bool
	lastTrainedAt time.Time

	train TrainFunc
	cache *PredictionCache
}

// NewScheduler creates a scheduler that runs train and clears cache on
// every successful cycle.
func NewScheduler(train TrainFunc, cache *PredictionCache) *Scheduler {
	return &Scheduler{train: train, cache: cache}
}

// Schedule requests a retrain. Idle transitions to queued and starts
// the runner; while queued the request is already covered; while
// training it marks exactly one follow-up run.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		s.state = StateQueued
		go s.run()
	case StateQueued:
		// Already covered by the pending run.
	case StateTraining:
		s.pending = true
	}
}

// run drains the queue: one cycle, plus at most one more per round of
// requests that arrived during training.
func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		s.state = StateTraining
		s.mu.Unlock()

		trained, err := s.train()

		s.mu.Lock()
		switch {
		case err != nil:
			log.Printf("Training cycle failed, keeping previous model: %v", err)
		case trained:
			s.lastTrainedAt = time.Now()
			s.cache.Clear()
		}

		if s.pending {
			s.pending = false
			s.state = StateQueued
			s.mu.Unlock()
			continue
		}
		s.state = StateIdle
		s.mu.Unlock()
		return
	}
}

// State returns the current machine state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QueueLength reports how many runs are waiting: 0 or 1, never more.
func (s *Scheduler) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateQueued || s.pending {
		return 1
	}
	return 0
}

// LastTrainedAt returns the completion time of the most recent
// successful cycle, zero if none.
func (s *Scheduler) LastTrainedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTrainedAt
}
