package ingest_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/reblog/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := ingest.NewDomainLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "beyondchats.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces requests to the same domain", func(t *testing.T) {
		t.Parallel()

		limiter := ingest.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "beyondchats.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "beyondchats.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("domains are independent", func(t *testing.T) {
		t.Parallel()

		limiter := ingest.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "beyondchats.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("gives up when context expires", func(t *testing.T) {
		t.Parallel()

		limiter := ingest.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "beyondchats.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "beyondchats.com"))
	})

	t.Run("serves concurrent waiters", func(t *testing.T) {
		t.Parallel()

		limiter := ingest.NewDomainLimiter(100)

		var wg sync.WaitGroup
		var completed atomic.Int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Wait(context.Background(), "beyondchats.com") == nil {
					completed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(5), completed.Load())
	})
}
