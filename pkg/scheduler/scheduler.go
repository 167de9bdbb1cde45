package scheduler

import (
	"context"
	"fmt"
	"sync"
)

type Work[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Err  error
}

// Future holds the result of one submitted work item.
type Future[T any] struct {
	c      chan Result[T]
	cancel context.CancelFunc
}

// C yields the result exactly once.
func (f *Future[T]) C() <-chan Result[T] {
	return f.c
}

// Stop cancels the context handed to the work.
func (f *Future[T]) Stop() {
	f.cancel()
}

type workRequest struct {
	fn     Work[any]
	ctx    context.Context
	cancel context.CancelFunc
	c      chan Result[any]
}

// Scheduler runs work on a fixed pool of workers in submission order.
type Scheduler struct {
	mu         sync.Mutex
	cond       *sync.Cond
	queue      []workRequest
	closed     bool
	wg         sync.WaitGroup
	mainCtx    context.Context
	mainCancel context.CancelFunc
}

func NewScheduler(nbWorkers int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	s.cond = sync.NewCond(&s.mu)

	for range max(nbWorkers, 1) {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Scheduler) AddWork(w Work[any]) *Future[any] {
	ctx, cancel := context.WithCancel(s.mainCtx)
	f := &Future[any]{c: make(chan Result[any], 1), cancel: cancel}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		f.c <- Result[any]{Err: context.Canceled}
		return f
	}
	s.queue = append(s.queue, workRequest{fn: w, ctx: ctx, cancel: cancel, c: f.c})
	s.mu.Unlock()

	s.cond.Signal()
	return f
}

// Close cancels running work, fails queued work with context.Canceled and
// waits for the workers to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	s.mainCancel()
	for _, r := range pending {
		r.c <- Result[any]{Err: context.Canceled}
		r.cancel()
	}

	s.cond.Broadcast()
	s.wg.Wait()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		r := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		r.c <- run(r)
		r.cancel()
	}
}

func run(r workRequest) (res Result[any]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[any]{Err: fmt.Errorf("worker panicked: %v", p)}
		}
	}()

	if err := r.ctx.Err(); err != nil {
		return Result[any]{Err: err}
	}
	v, err := r.fn(r.ctx)
	return Result[any]{Data: v, Err: err}
}
