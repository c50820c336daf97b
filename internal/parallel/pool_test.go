package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversEveryPointOnce(t *testing.T) {
	for n := 0; n <= 67; n++ {
		for workers := 1; workers <= 9; workers++ {
			chunks := Partition(n, workers)
			require.Len(t, chunks, workers)
			hits := make([]int, n)
			next := 0
			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				assert.Equal(t, next, c.Lo, "n=%d workers=%d contiguous", n, workers)
				assert.LessOrEqual(t, c.Lo, c.Hi)
				for j := c.Lo; j < c.Hi; j++ {
					hits[j]++
				}
				next = c.Hi
			}
			assert.Equal(t, n, next)
			for j, h := range hits {
				assert.Equal(t, 1, h, "n=%d workers=%d point %d", n, workers, j)
			}
			maxLen, minLen := 0, n
			for _, c := range chunks {
				maxLen = max(maxLen, c.Len())
				minLen = min(minLen, c.Len())
			}
			assert.LessOrEqual(t, maxLen-minLen, 1)
		}
	}
	assert.Len(t, Partition(10, 0), 1)
}

func TestRunJoinsAllChunks(t *testing.T) {
	p := NewPool(4, zerolog.Nop())
	out := make([]int, 1000)
	var calls atomic.Int32
	for frame := 1; frame <= 3; frame++ {
		errs := p.Run(Partition(len(out), p.Size()), func(c Chunk) error {
			calls.Add(1)
			for i := c.Lo; i < c.Hi; i++ {
				out[i] = frame
			}
			return nil
		})
		require.Empty(t, errs)
		for i, v := range out {
			require.Equal(t, frame, v, "index %d after frame %d", i, frame)
		}
	}
	assert.EqualValues(t, 12, calls.Load())
}

func TestPanickingChunkLeavesOthersValid(t *testing.T) {
	p := NewPool(3, zerolog.Nop())
	out := make([]int, 30)
	chunks := Partition(len(out), 3)
	run := func(frame int) []error {
		return p.Run(chunks, func(c Chunk) error {
			if c.Index == 1 && frame == 1 {
				panic("shader exploded")
			}
			if c.Index == 2 && frame == 1 {
				return errors.New("soft failure")
			}
			for i := c.Lo; i < c.Hi; i++ {
				out[i] = frame
			}
			return nil
		})
	}

	errs := run(1)
	require.Len(t, errs, 2)
	var te *TaskError
	found := false
	for _, err := range errs {
		if errors.As(err, &te) {
			found = true
			assert.Equal(t, 1, te.Chunk)
		}
	}
	assert.True(t, found)
	for i := chunks[0].Lo; i < chunks[0].Hi; i++ {
		assert.Equal(t, 1, out[i])
	}

	// the next frame is unaffected
	require.Empty(t, run(2))
	for _, v := range out {
		assert.Equal(t, 2, v)
	}
}

func TestClosedPool(t *testing.T) {
	p := NewPool(2, zerolog.Nop())
	p.Close()
	errs := p.Run(Partition(4, 2), func(Chunk) error { return nil })
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrClosed)
}
