package source

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"canasta/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowSource struct {
	inFlight, peak int64
	delay          time.Duration
}

func (s *slowSource) Name() string { return "slow" }

func (s *slowSource) Fetch(ctx context.Context, product string) (model.Quotation, error) {
	n := atomic.AddInt64(&s.inFlight, 1)
	defer atomic.AddInt64(&s.inFlight, -1)
	for {
		old := atomic.LoadInt64(&s.peak)
		if n <= old || atomic.CompareAndSwapInt64(&s.peak, old, n) {
			break
		}
	}
	select {
	case <-ctx.Done():
		return model.Quotation{}, ctx.Err()
	case <-time.After(s.delay):
	}
	if product == "caviar" {
		return model.Quotation{}, ErrNotFound
	}
	return model.NewQuotation("slow", product, 100, "", time.Now())
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("producto %d", i)
	}
	return out
}

func TestFetchMany_RejectsOversizeBatch(t *testing.T) {
	_, err := FetchMany(context.Background(), &slowSource{}, names(11), BatchOptions{MaxBatch: 10}, discardLogger())
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestFetchMany_AcceptsFullBatchWithBoundedConcurrency(t *testing.T) {
	src := &slowSource{delay: 10 * time.Millisecond}
	out, err := FetchMany(context.Background(), src, names(10), BatchOptions{MaxBatch: 10, Concurrency: 3}, discardLogger())
	require.NoError(t, err)
	assert.Len(t, out, 10)
	for name, r := range out {
		assert.True(t, r.Found, name)
	}
	assert.LessOrEqual(t, atomic.LoadInt64(&src.peak), int64(3))
}

func TestFetchMany_FailuresBecomeNotFound(t *testing.T) {
	out, err := FetchMany(context.Background(), &slowSource{}, []string{"pan", "caviar", "pan", " "}, BatchOptions{}, discardLogger())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out["pan"].Found)
	assert.False(t, out["caviar"].Found)
	assert.Nil(t, out["caviar"].Quotation)
	assert.Equal(t, "not_found", out["caviar"].Reason)
}

func TestFetchMany_DeadlineMarksPendingAsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	src := &slowSource{delay: time.Second}
	out, err := FetchMany(ctx, src, names(4), BatchOptions{Concurrency: 2}, discardLogger())
	require.NoError(t, err)
	assert.Len(t, out, 4)
	for _, r := range out {
		assert.False(t, r.Found)
		assert.Equal(t, "timeout", r.Reason)
	}
}
