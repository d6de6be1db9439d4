package chat

import (
	"context"
	"sync"
	"testing"
	"time"
)

// manualScheduler is a Scheduler driven by the test: timers fire on Advance
// and posted callbacks run on RunPosted, both on the test goroutine.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
	posted chan func()
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	fn      func()
	done    bool
	stopped bool
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{posted: make(chan func(), 64)}
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Post(fn func()) {
	s.posted <- fn
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing due timers in order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.timers {
			if t.done || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.done = true
		s.now = next.at
		s.mu.Unlock()

		next.fn()
	}
}

// RunPosted waits for n posted callbacks and runs them.
func (s *manualScheduler) RunPosted(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case fn := <-s.posted:
			fn()
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for posted callback %d of %d", i+1, n)
		}
	}
}

// AssertNothingPosted fails if a callback is posted within a short window.
func (s *manualScheduler) AssertNothingPosted(t *testing.T) {
	t.Helper()
	select {
	case <-s.posted:
		t.Fatal("unexpected posted callback")
	case <-time.After(50 * time.Millisecond):
	}
}

type gatewayFunc func(ctx context.Context, req Request) (string, error)

// recordingGateway records every request and answers with reply.
type recordingGateway struct {
	mu       sync.Mutex
	requests []Request
	reply    gatewayFunc
}

func (g *recordingGateway) Complete(ctx context.Context, req Request) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	reply := g.reply
	g.mu.Unlock()
	return reply(ctx, req)
}

func (g *recordingGateway) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Request, len(g.requests))
	copy(out, g.requests)
	return out
}

func replyWith(text string, err error) gatewayFunc {
	return func(context.Context, Request) (string, error) {
		return text, err
	}
}

// blockUntilCancelled behaves like a request that never answers.
func blockUntilCancelled(ctx context.Context, _ Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
