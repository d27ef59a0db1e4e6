package mailer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stuckMailer never completes a send on its own.
type stuckMailer struct {
	started chan struct{}
}

func (m *stuckMailer) Send(ctx context.Context, to, subject, body string) error {
	m.started <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func TestQueue_RunsAllJobsBeforeClose(t *testing.T) {
	q := NewQueue(3, 32, nil)
	q.Start()

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, q.Submit(func(context.Context) { ran.Add(1) }))
	}

	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, int32(20), ran.Load())
}

func TestQueue_SubmitAfterClose(t *testing.T) {
	q := NewQueue(1, 1, nil)
	q.Start()
	require.NoError(t, q.Close(context.Background()))

	assert.ErrorIs(t, q.Submit(func(context.Context) {}), ErrQueueClosed)
	// Dispatch on a closed queue only logs.
	q.Dispatch(func(context.Context) { t.Fatal("must not run") })
}

func TestQueue_FullQueueDoesNotBlock(t *testing.T) {
	q := NewQueue(1, 1, nil)
	q.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, q.Submit(func(context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, q.Submit(func(context.Context) {}))

	done := make(chan error, 1)
	go func() { done <- q.Submit(func(context.Context) {}) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
	q.Dispatch(func(context.Context) { t.Fatal("dropped job must not run") })

	close(release)
	require.NoError(t, q.Close(context.Background()))
}

func TestQueue_PanicDoesNotKillWorker(t *testing.T) {
	q := NewQueue(1, 2, nil)
	q.Start()

	done := make(chan struct{})
	require.NoError(t, q.Submit(func(context.Context) { panic("boom") }))
	q.Dispatch(func(context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second job never ran")
	}
	require.NoError(t, q.Close(context.Background()))
}

func TestQueue_CloseReturnsAtDeadlineWithStuckSend(t *testing.T) {
	q := NewQueue(1, 1, nil)
	q.Start()

	m := &stuckMailer{started: make(chan struct{}, 1)}
	sendErr := make(chan error, 1)
	q.Dispatch(func(ctx context.Context) {
		sendErr <- m.Send(ctx, "a@b.c", "s", "b")
	})
	<-m.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	assert.ErrorIs(t, q.Close(ctx), context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	// the job context is cancelled so the send gives up too
	select {
	case err := <-sendErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("send was not cancelled")
	}
}

func TestQueue_CloseDoesNotWaitForJobIgnoringContext(t *testing.T) {
	q := NewQueue(1, 1, nil)
	q.Start()

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	require.NoError(t, q.Submit(func(context.Context) {
		close(started)
		<-release
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	assert.ErrorIs(t, q.Close(ctx), context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
