package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tbraun/vidscribe/internal/pipeline"
)

func TestSubmitRunsJobAndStreamsEvents(t *testing.T) {
	t.Parallel()

	w := NewWithRunFunc(func(_ context.Context, _ pipeline.Request, onStage func(pipeline.Stage, string)) (pipeline.Outcome, error) {
		onStage(pipeline.StageTranscribing, "a.wav")
		onStage(pipeline.StageWriting, "out")
		return pipeline.Outcome{OutputDir: "out"}, nil
	})

	job, err := w.Submit(context.Background(), pipeline.Request{Input: "a.wav"})
	require.NoError(t, err)

	var stages []pipeline.Stage
	for event := range job.Events() {
		stages = append(stages, event.Stage)
	}
	require.Equal(t, []pipeline.Stage{pipeline.StageTranscribing, pipeline.StageWriting}, stages)

	outcome, err := job.Wait()
	require.NoError(t, err)
	require.Equal(t, "out", outcome.OutputDir)
	require.False(t, w.Busy())
}

func TestSubmitWhileBusyFails(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	w := NewWithRunFunc(func(_ context.Context, _ pipeline.Request, _ func(pipeline.Stage, string)) (pipeline.Outcome, error) {
		<-release
		return pipeline.Outcome{}, nil
	})

	first, err := w.Submit(context.Background(), pipeline.Request{})
	require.NoError(t, err)
	require.True(t, w.Busy())

	_, err = w.Submit(context.Background(), pipeline.Request{})
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	_, err = first.Wait()
	require.NoError(t, err)

	// The slot frees up once the job is done.
	second, err := w.Submit(context.Background(), pipeline.Request{})
	require.NoError(t, err)
	_, err = second.Wait()
	require.NoError(t, err)
}

func TestCancelStopsRunningJob(t *testing.T) {
	t.Parallel()

	w := NewWithRunFunc(func(ctx context.Context, _ pipeline.Request, _ func(pipeline.Stage, string)) (pipeline.Outcome, error) {
		select {
		case <-ctx.Done():
			return pipeline.Outcome{}, ctx.Err()
		case <-time.After(10 * time.Second):
			return pipeline.Outcome{}, errors.New("cancellation never arrived")
		}
	})

	job, err := w.Submit(context.Background(), pipeline.Request{})
	require.NoError(t, err)

	job.Cancel()
	_, err = job.Wait()
	require.ErrorIs(t, err, context.Canceled)
}

func TestJobErrorIsSurfaced(t *testing.T) {
	t.Parallel()

	boom := errors.New("inference failed")
	w := NewWithRunFunc(func(_ context.Context, _ pipeline.Request, _ func(pipeline.Stage, string)) (pipeline.Outcome, error) {
		return pipeline.Outcome{}, boom
	})

	job, err := w.Submit(context.Background(), pipeline.Request{})
	require.NoError(t, err)

	_, err = job.Wait()
	require.ErrorIs(t, err, boom)
}
