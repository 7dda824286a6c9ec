package greeted

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_MarksOnce(t *testing.T) {
	s := NewMemoryStore(10, 0)
	ctx := context.Background()

	first, err := s.MarkGreeted(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.MarkGreeted(ctx, "a")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := s.MarkGreeted(ctx, "b")
	require.NoError(t, err)
	assert.True(t, other)

	assert.Equal(t, 2, s.Len(ctx))
}

func TestMemoryStore_ConcurrentFirstMessage(t *testing.T) {
	s := NewMemoryStore(10, 0)
	var greetings atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if first, _ := s.MarkGreeted(context.Background(), "chat"); first {
				greetings.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), greetings.Load())
}

func TestMemoryStore_EvictsBeyondCapacity(t *testing.T) {
	s := NewMemoryStore(3, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.MarkGreeted(ctx, fmt.Sprintf("chat-%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.Len(ctx))

	first, err := s.MarkGreeted(ctx, "chat-0")
	require.NoError(t, err)
	assert.True(t, first, "evicted chats are greeted again")
}

func TestMemoryStore_Expires(t *testing.T) {
	s := NewMemoryStore(10, 30*time.Millisecond)
	ctx := context.Background()

	_, err := s.MarkGreeted(ctx, "a")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		first, _ := s.MarkGreeted(ctx, "a")
		return first
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_Close(t *testing.T) {
	s := NewMemoryStore(0, 0)
	_, _ = s.MarkGreeted(context.Background(), "a")

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len(context.Background()))
}
