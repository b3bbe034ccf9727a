package domain

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumbers_StrictlyIncreasingWithinSameMillisecond(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	numbers := NewOrderNumberGeneratorWithClock(func() time.Time { return frozen })

	assert.Equal(t, "ORD-1700000000000", numbers.Next())
	assert.Equal(t, "ORD-1700000000001", numbers.Next())
	assert.Equal(t, "ORD-1700000000002", numbers.Next())
}

func TestOrderNumbers_ClockGoingBackwards(t *testing.T) {
	now := time.UnixMilli(2_000)
	numbers := NewOrderNumberGeneratorWithClock(func() time.Time { return now })

	first := numbers.Next()
	now = time.UnixMilli(1_000)
	second := numbers.Next()

	assert.Equal(t, "ORD-2000", first)
	assert.Equal(t, "ORD-2001", second)
}

func TestOrderNumbers_UniqueUnderConcurrency(t *testing.T) {
	numbers := NewOrderNumberGenerator()
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, numbers.Next())
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	for n := range seen {
		require.True(t, strings.HasPrefix(n, "ORD-"))
		_, err := strconv.ParseInt(strings.TrimPrefix(n, "ORD-"), 10, 64)
		require.NoError(t, err)
	}
}
