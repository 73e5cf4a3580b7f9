// Package schedule assigns posts their publication slots and fires
// them at the scheduled time.
package schedule

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryan-buckman/syndicate/internal/model"
)

// platformOrder fixes the iteration order over a batch's platforms so
// scheduling is deterministic.
var platformOrder = []model.Platform{
	model.PlatformTwitter, model.PlatformInstagram,
	model.PlatformLinkedIn, model.PlatformFacebook,
}

// idlePoll bounds how long the run loop sleeps with an empty queue.
const idlePoll = time.Minute

// Job binds one post to an absolute timestamp. It fires at most once
// and is discarded after firing, whatever the outcome.
type Job struct {
	ID    string
	Post  *model.Post
	RunAt time.Time
}

// jobHeap orders pending jobs by RunAt, earliest first.
type jobHeap []*Job

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].RunAt.Before(h[j].RunAt) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x interface{}) { *h = append(*h, x.(*Job)) }
func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return job
}

// Scheduler owns the pending job queue and the run loop that pops due
// jobs and hands them to the dispatcher on their own goroutines.
type Scheduler struct {
	registry   *Registry
	dispatcher *Dispatcher
	logger     *logrus.Logger

	mu      sync.Mutex
	pending jobHeap

	wake     chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. Start must be called before armed
// jobs will fire.
func NewScheduler(registry *Registry, dispatcher *Dispatcher, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
		wake:       make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}
}

// Schedule assigns each of the batch's posts a timestamp and arms a
// job for it. Posts of platform P keep their batch order and land at
// first + i*interval; platforms run independently from the same start,
// so two platforms' i-th jobs share a timestamp by construction.
// Scheduling the same batch twice would arm a second set of jobs;
// callers consume the batch on confirmation to prevent that.
func (s *Scheduler) Schedule(batch *model.Batch) []*Job {
	var jobs []*Job
	s.mu.Lock()
	for _, p := range platformOrder {
		for i, post := range batch.Posts[p] {
			runAt := batch.FirstPostTime.Add(time.Duration(i) * batch.Interval)
			post.ScheduledAt = runAt
			job := &Job{
				ID:    uuid.New().String(),
				Post:  post,
				RunAt: runAt,
			}
			heap.Push(&s.pending, job)
			jobs = append(jobs, job)
		}
	}
	s.mu.Unlock()

	for _, job := range jobs {
		s.registry.Add(job.Post)
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.logger.WithFields(logrus.Fields{
		"batch": batch.ID,
		"jobs":  len(jobs),
	}).Info("Batch scheduled")
	return jobs
}

// Start launches the run loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
}

// Stop terminates the run loop and waits for it to exit. Jobs already
// dispatched keep running; jobs still pending are lost, matching the
// non-durable process-lifetime contract.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) run() {
	for {
		s.fireDue()

		wait := s.untilNext()
		timer := time.NewTimer(wait)
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// untilNext returns how long the loop may sleep before the earliest
// pending job is due.
func (s *Scheduler) untilNext() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return idlePoll
	}
	wait := time.Until(s.pending[0].RunAt)
	if wait < 0 {
		wait = 0
	}
	return wait
}

// fireDue pops every job whose time has come and dispatches each on
// its own goroutine. Jobs touching different posts need no ordering
// between them; per-platform ordering holds because timestamps within
// a platform are strictly increasing.
func (s *Scheduler) fireDue() {
	now := time.Now()
	for {
		s.mu.Lock()
		if len(s.pending) == 0 || s.pending[0].RunAt.After(now) {
			s.mu.Unlock()
			return
		}
		job := heap.Pop(&s.pending).(*Job)
		s.mu.Unlock()

		s.wg.Add(1)
		go func(job *Job) {
			defer s.wg.Done()
			s.dispatcher.Dispatch(context.Background(), job.Post)
		}(job)
	}
}
