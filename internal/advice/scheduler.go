// Package advice debounces coaching requests so that only the latest state
// of the profile and meal log reaches the model.
package advice

import (
	"context"
	"sync"
	"time"

	"nutrivision/internal/models"
	"nutrivision/pkg/logger"
)

// DefaultDelay is how long the state must stay unchanged before a request
// is sent.
const DefaultDelay = time.Second

// Generator produces advice text. Implemented by gpt.Client.
type Generator interface {
	GenerateAdvice(ctx context.Context, profile models.UserProfile, meals []models.Meal, calc *models.UserCalculations) (string, error)
}

// Request is a snapshot of the state the advice is about.
type Request struct {
	Profile      models.UserProfile
	Meals        []models.Meal
	Calculations *models.UserCalculations
}

type Scheduler struct {
	gen    Generator
	delay  time.Duration
	logger *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	text       string
	fetching   bool
	stopped    bool
	onUpdate   func(string)
}

func NewScheduler(gen Generator, delay time.Duration, l *logger.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if l == nil {
		l = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gen:    gen,
		delay:  delay,
		logger: l.Named("advice"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnUpdate registers fn to receive every advice text that gets applied.
// fn runs on the scheduler's goroutine.
func (s *Scheduler) OnUpdate(fn func(text string)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// Schedule supersedes any pending or in-flight request with req.
func (s *Scheduler) Schedule(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen, req) })
}

// Reset drops pending work and clears the current advice.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.text = ""
	s.fetching = false
}

// Generate requests advice right away and waits for it. The result is
// applied unless something newer was scheduled meanwhile.
func (s *Scheduler) Generate(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	gen := s.generation
	s.fetching = true
	s.mu.Unlock()

	text, err := s.gen.GenerateAdvice(ctx, req.Profile, req.Meals, req.Calculations)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.fetching = false
		if err == nil {
			s.text = text
		}
	}
	return text, err
}

// Advice returns the current text and whether a request is in flight.
func (s *Scheduler) Advice() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.fetching
}

// Stop cancels pending and in-flight requests. Schedule is a no-op afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.fetching = false
	s.mu.Unlock()
	s.cancel()
}

func (s *Scheduler) fire(gen uint64, req Request) {
	s.mu.Lock()
	if gen != s.generation || s.stopped {
		s.mu.Unlock()
		return
	}
	s.fetching = true
	s.mu.Unlock()

	text, err := s.gen.GenerateAdvice(s.ctx, req.Profile, req.Meals, req.Calculations)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debugw("discarding superseded advice", "generation", gen)
		return
	}
	s.fetching = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Warnw("advice generation failed", "error", err)
		return
	}
	s.text = text
	cb := s.onUpdate
	s.mu.Unlock()

	if cb != nil {
		cb(text)
	}
}
