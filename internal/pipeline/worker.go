package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rbright/voxtrace/internal/audio"
)

// Job is one buffer queued for processing. Reply receives exactly one
// BatchResult and is then closed.
type Job struct {
	Buffer audio.Buffer
	Reply  chan<- BatchResult
}

// BatchResult pairs the per-utterance outcomes of one buffer with any fatal
// error that stopped the batch early.
type BatchResult struct {
	Outcomes []Outcome
	Err      error
}

// RunWorkers drains jobs with n concurrent workers until the channel closes.
// Once ctx is cancelled, remaining jobs are refused with ctx.Err() instead of
// processed, so every submitter still gets exactly one reply. The caller owns
// the channel and must close it to release the workers. Workers share the
// pipeline; its internal mutex keeps speaker enrollment consistent across
// them.
func RunWorkers(ctx context.Context, n int, p *Pipeline, jobs <-chan Job) {
	if n < 1 {
		n = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for job := range jobs {
				if err := ctx.Err(); err != nil {
					deliver(job, BatchResult{Err: err})
					continue
				}

				outcomes, err := p.Process(ctx, job.Buffer)
				if err != nil {
					p.logger.Error("batch aborted",
						slog.Int("worker", worker),
						slog.String("error", err.Error()))
				}
				deliver(job, BatchResult{Outcomes: outcomes, Err: err})
			}
		}(i)
	}
	wg.Wait()
}

func deliver(job Job, res BatchResult) {
	if job.Reply == nil {
		return
	}
	job.Reply <- res
	close(job.Reply)
}
