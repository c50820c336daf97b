// Package parallel splits a point set into disjoint chunks and runs one task per chunk on a
// bounded worker pool, joining before the frame completes.
package parallel

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/rs/zerolog"
)

// Chunk is the half-open range [Lo, Hi) of positions in a point list.
type Chunk struct {
	Index  int
	Lo, Hi int
}

func (c Chunk) Len() int { return c.Hi - c.Lo }

// Partition splits n items into exactly workers contiguous chunks whose sizes differ by at most
// one. Chunks never overlap and together cover 0..n-1; some are empty when n < workers.
func Partition(n, workers int) []Chunk {
	if workers < 1 {
		workers = 1
	}
	if n < 0 {
		n = 0
	}
	out := make([]Chunk, workers)
	size, extra := n/workers, n%workers
	lo := 0
	for i := range out {
		hi := lo + size
		if i < extra {
			hi++
		}
		out[i] = Chunk{Index: i, Lo: lo, Hi: hi}
		lo = hi
	}
	return out
}

// TaskError wraps a panic recovered from one chunk's task.
type TaskError struct {
	Chunk int
	Value any
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("chunk %d panicked: %v", e.Chunk, e.Value)
}

var ErrClosed = errors.New("pool closed")

// Pool is a fixed-size fork-join runner. Its goroutines idle out on their own and hold no
// references to pattern state between frames.
type Pool struct {
	size   int
	pool   worker.DynamicWorkerPool
	log    zerolog.Logger
	taskID atomic.Int64
	closed atomic.Bool
}

func NewPool(size int, log zerolog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		size: size,
		pool: worker.NewDynamicWorkerPool(size, 256, 1*time.Second),
		log:  log,
	}
}

func (p *Pool) Size() int { return p.size }

// Close stops accepting frames. Tasks already submitted still finish.
func (p *Pool) Close() { p.closed.Store(true) }

// Run submits fn once per chunk and blocks until all of them return. A task that panics or
// returns an error is logged and reported; the other chunks are unaffected.
func (p *Pool) Run(chunks []Chunk, fn func(Chunk) error) []error {
	if p.closed.Load() {
		return []error{ErrClosed}
	}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	for _, c := range chunks {
		if c.Len() <= 0 {
			continue
		}
		wg.Add(1)
		chunk := c
		p.pool.SubmitTask(worker.Task{
			ID: int(p.taskID.Add(1)),
			Do: func() (res any, err error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						te := &TaskError{Chunk: chunk.Index, Value: r}
						p.log.Error().Int("chunk", chunk.Index).Err(te).Msg("worker task")
						fail(te)
					}
				}()
				if err := fn(chunk); err != nil {
					p.log.Warn().Int("chunk", chunk.Index).Err(err).Msg("worker task")
					fail(fmt.Errorf("chunk %d: %w", chunk.Index, err))
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return errs
}
