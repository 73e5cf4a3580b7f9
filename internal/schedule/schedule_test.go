package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/syndicate/internal/model"
	"github.com/bryan-buckman/syndicate/internal/publish"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func pendingPost(p model.Platform, text string) *model.Post {
	return &model.Post{
		ID:       uuid.New().String(),
		Platform: p,
		Text:     text,
		Status:   model.StatusPending,
	}
}

func testBatch(first time.Time, interval time.Duration, posts map[model.Platform][]*model.Post) *model.Batch {
	return &model.Batch{
		ID:            uuid.New().String(),
		Posts:         posts,
		FirstPostTime: first,
		Interval:      interval,
		CreatedAt:     time.Now(),
	}
}

// countingPublisher records how many times each post text was
// published and can be told to fail.
type countingPublisher struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newCountingPublisher(err error) *countingPublisher {
	return &countingPublisher{calls: make(map[string]int), err: err}
}

func (c *countingPublisher) Publish(ctx context.Context, text, imageURL string, cred model.Credential) error {
	c.mu.Lock()
	c.calls[text]++
	c.mu.Unlock()
	return c.err
}

func (c *countingPublisher) count(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[text]
}

func TestScheduleAssignsLinearTimestamps(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	interval := 30 * time.Minute

	var tw, li []*model.Post
	for i := 0; i < 4; i++ {
		tw = append(tw, pendingPost(model.PlatformTwitter, fmt.Sprintf("tw-%d", i)))
	}
	for i := 0; i < 3; i++ {
		li = append(li, pendingPost(model.PlatformLinkedIn, fmt.Sprintf("li-%d", i)))
	}
	batch := testBatch(first, interval, map[model.Platform][]*model.Post{
		model.PlatformTwitter:  tw,
		model.PlatformLinkedIn: li,
	})

	reg := NewRegistry()
	s := NewScheduler(reg, NewDispatcher(publish.Registry{}, reg, testLogger()), testLogger())
	jobs := s.Schedule(batch)
	require.Len(t, jobs, 7)

	perPlatform := make(map[model.Platform][]*Job)
	for _, job := range jobs {
		perPlatform[job.Post.Platform] = append(perPlatform[job.Post.Platform], job)
	}
	for p, pj := range perPlatform {
		for i, job := range pj {
			want := first.Add(time.Duration(i) * interval)
			assert.True(t, job.RunAt.Equal(want), "%s job %d at %v, want %v", p, i, job.RunAt, want)
			assert.True(t, job.Post.ScheduledAt.Equal(want))
		}
	}

	// Batch order survives scheduling within each platform.
	for i, job := range perPlatform[model.PlatformTwitter] {
		assert.Equal(t, fmt.Sprintf("tw-%d", i), job.Post.Text)
	}

	// Both platforms start from the same time by construction.
	assert.True(t, perPlatform[model.PlatformTwitter][0].RunAt.Equal(perPlatform[model.PlatformLinkedIn][0].RunAt))

	// All posts are listed after scheduling.
	assert.Len(t, reg.List("", ""), 7)
}

func TestRegistryListFilters(t *testing.T) {
	reg := NewRegistry()
	a := pendingPost(model.PlatformTwitter, "a")
	b := pendingPost(model.PlatformLinkedIn, "b")
	c := pendingPost(model.PlatformTwitter, "c")
	reg.Add(a, b, c)
	reg.UpdateStatus(c, model.StatusFailed, "boom")

	assert.Len(t, reg.List("", ""), 3)
	assert.Len(t, reg.List(model.PlatformTwitter, ""), 2)
	assert.Len(t, reg.List(model.PlatformTwitter, model.StatusPending), 1)

	failed := reg.List("", model.StatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "c", failed[0].Text)
	assert.Equal(t, "boom", failed[0].StatusError)
}

func TestBatchRegistryTakeConsumesOnce(t *testing.T) {
	reg := NewBatchRegistry()
	batch := testBatch(time.Now(), time.Minute, nil)
	reg.Put(batch)

	got, ok := reg.Get(batch.ID)
	require.True(t, ok)
	assert.Same(t, batch, got)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := reg.Take(batch.ID); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins, "exactly one confirmation may consume the batch")

	_, ok = reg.Get(batch.ID)
	assert.False(t, ok)
}

func TestDispatchSuccess(t *testing.T) {
	reg := NewRegistry()
	pub := newCountingPublisher(nil)
	d := NewDispatcher(publish.Registry{model.PlatformTwitter: pub}, reg, testLogger())

	post := pendingPost(model.PlatformTwitter, "hello")
	post.Title = "Title"
	reg.Add(post)

	d.Dispatch(context.Background(), post)

	listed := reg.List("", "")
	require.Len(t, listed, 1)
	assert.Equal(t, model.StatusPosted, listed[0].Status)
	assert.Equal(t, 1, pub.count("Title hello"))
}

func TestDispatchFailureIsTerminal(t *testing.T) {
	reg := NewRegistry()
	pub := newCountingPublisher(errors.New("rate limited"))
	d := NewDispatcher(publish.Registry{model.PlatformTwitter: pub}, reg, testLogger())

	post := pendingPost(model.PlatformTwitter, "hello")
	reg.Add(post)

	d.Dispatch(context.Background(), post)

	listed := reg.List("", "")
	require.Len(t, listed, 1)
	assert.Equal(t, model.StatusFailed, listed[0].Status)
	assert.Contains(t, listed[0].StatusError, "rate limited")
}

func TestDispatchNoPublisher(t *testing.T) {
	reg := NewRegistry()
	d := NewDispatcher(publish.Registry{}, reg, testLogger())

	post := pendingPost(model.PlatformFacebook, "hello")
	reg.Add(post)

	d.Dispatch(context.Background(), post)

	listed := reg.List("", model.StatusFailed)
	require.Len(t, listed, 1)
}

func TestSchedulerFiresJobsOnce(t *testing.T) {
	reg := NewRegistry()
	ok := newCountingPublisher(nil)
	bad := newCountingPublisher(errors.New("down"))
	d := NewDispatcher(publish.Registry{
		model.PlatformTwitter:  ok,
		model.PlatformLinkedIn: bad,
	}, reg, testLogger())

	s := NewScheduler(reg, d, testLogger())
	s.Start()
	defer s.Stop()

	batch := testBatch(time.Now().Add(10*time.Millisecond), 5*time.Millisecond,
		map[model.Platform][]*model.Post{
			model.PlatformTwitter: {
				pendingPost(model.PlatformTwitter, "tw-0"),
				pendingPost(model.PlatformTwitter, "tw-1"),
			},
			model.PlatformLinkedIn: {
				pendingPost(model.PlatformLinkedIn, "li-0"),
			},
		})
	s.Schedule(batch)

	require.Eventually(t, func() bool {
		return len(reg.List("", model.StatusPending)) == 0
	}, 2*time.Second, 10*time.Millisecond, "all jobs should reach a terminal state")

	assert.Len(t, reg.List(model.PlatformTwitter, model.StatusPosted), 2)
	assert.Len(t, reg.List(model.PlatformLinkedIn, model.StatusFailed), 1)

	// A fired job is never re-armed, success or failure.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, ok.count("tw-0"))
	assert.Equal(t, 1, ok.count("tw-1"))
	assert.Equal(t, 1, bad.count("li-0"))
}
