package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_FormOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	sess, err := s.Begin(ctx, 1, EventApply)
	require.NoError(t, err)
	assert.Equal(t, StateDeviceType, sess.State())

	for _, want := range formSteps[1:] {
		require.NoError(t, sess.Advance(ctx))
		assert.Equal(t, want, sess.State())
	}

	// preview is the last step; confirmation ends the session instead.
	assert.Error(t, sess.Advance(ctx))
	assert.Equal(t, StatePreview, sess.State())
}

func TestSession_SideBranches(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for event, want := range map[string]State{
		EventCheck:     StateCheckStatus,
		EventSetStatus: StateSetStatus,
		EventStats:     StateStatPeriod,
	} {
		sess, err := s.Begin(ctx, 5, event)
		require.NoError(t, err)
		assert.Equal(t, want, sess.State())
		assert.Error(t, sess.Advance(ctx), "side branches are single step")
	}
	assert.Equal(t, 1, s.Len())
}

func TestStore_BeginReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first, err := s.Begin(ctx, 1, EventApply)
	require.NoError(t, err)
	require.NoError(t, first.Advance(ctx))

	second, err := s.Begin(ctx, 1, EventApply)
	require.NoError(t, err)

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, StateDeviceType, s.State(1))
}

func TestStore_End(t *testing.T) {
	s := NewStore()
	_, err := s.Begin(context.Background(), 1, EventCheck)
	require.NoError(t, err)

	s.End(1)
	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.Equal(t, StateIdle, s.State(1))
}

func TestStore_Owners(t *testing.T) {
	s := NewStore()
	s.RememberOwner(3, 300)

	chatID, ok := s.Owner(3)
	assert.True(t, ok)
	assert.Equal(t, int64(300), chatID)

	_, ok = s.Owner(4)
	assert.False(t, ok)
}

func TestStore_LockSerialisesChat(t *testing.T) {
	s := NewStore()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(7)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
