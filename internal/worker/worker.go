// Package worker runs one transcription job at a time on a background
// goroutine, reporting stage progress over a channel. It is the surface a
// graphical shell embeds instead of mutating UI state from worker threads.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/tbraun/vidscribe/internal/pipeline"
)

// ErrBusy is returned when a job is submitted while another one is running.
var ErrBusy = errors.New("a job is already running")

// Event is one progress message from the running job.
type Event struct {
	Stage  pipeline.Stage
	Detail string
}

// Job is a handle to one submitted pipeline run.
type Job struct {
	events chan Event
	cancel context.CancelFunc

	done    chan struct{}
	outcome pipeline.Outcome
	err     error
}

// Events streams stage progress; the channel is closed when the job ends.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Cancel stops the job; blocking subprocess calls observe the cancellation
// through their context.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the job finishes and returns its outcome.
func (j *Job) Wait() (pipeline.Outcome, error) {
	<-j.done
	return j.outcome, j.err
}

// RunFunc executes one pipeline request, reporting stages via onStage.
type RunFunc func(ctx context.Context, req pipeline.Request, onStage func(pipeline.Stage, string)) (pipeline.Outcome, error)

// Worker owns the single job slot.
type Worker struct {
	run RunFunc

	mu     sync.Mutex
	active *Job
}

// New wraps a pipeline so each job gets its own stage hook.
func New(p *pipeline.Pipeline) *Worker {
	return &Worker{run: func(ctx context.Context, req pipeline.Request, onStage func(pipeline.Stage, string)) (pipeline.Outcome, error) {
		run := *p
		run.OnStage = onStage
		return run.Run(ctx, req)
	}}
}

// NewWithRunFunc is the test constructor.
func NewWithRunFunc(run RunFunc) *Worker {
	return &Worker{run: run}
}

// Submit starts the request on a background goroutine. Only one job may run
// at a time; submitting while busy fails with ErrBusy.
func (w *Worker) Submit(ctx context.Context, req pipeline.Request) (*Job, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active != nil {
		select {
		case <-w.active.done:
			w.active = nil
		default:
			return nil, ErrBusy
		}
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		events: make(chan Event, 8),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	w.active = job

	go func() {
		defer cancel()
		defer close(job.done)
		defer close(job.events)

		job.outcome, job.err = w.run(jobCtx, req, func(stage pipeline.Stage, detail string) {
			// Drop events nobody is draining rather than stall the pipeline.
			select {
			case job.events <- Event{Stage: stage, Detail: detail}:
			default:
			}
		})
	}()

	return job, nil
}

// Busy reports whether a job is currently running.
func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active == nil {
		return false
	}
	select {
	case <-w.active.done:
		return false
	default:
		return true
	}
}
