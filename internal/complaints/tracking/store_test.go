package tracking

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"reclamations/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PendingThenComplete(t *testing.T) {
	s := NewStore()

	s.MarkPending("trk-1")
	st, ok := s.Get("trk-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, st.Status)
	assert.Empty(t, st.CaseNumber)

	assert.True(t, s.Complete("trk-1", "RC-1001"))
	st, ok = s.Get("trk-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, st.Status)
	assert.Equal(t, "RC-1001", st.CaseNumber)
}

func TestStore_CompleteWithoutPending(t *testing.T) {
	s := NewStore()

	assert.True(t, s.Complete("trk-2", "RC-2"))
	st, ok := s.Get("trk-2")
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, st.Status)
}

func TestStore_NeverRegresses(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := base
	s.now = func() time.Time { tick = tick.Add(time.Second); return tick }

	s.Complete("trk-3", "RC-3")
	completedAt, _ := s.Get("trk-3")

	s.MarkPending("trk-3")
	st, _ := s.Get("trk-3")
	assert.Equal(t, models.StatusCompleted, st.Status)
	assert.Equal(t, "RC-3", st.CaseNumber)
	assert.Equal(t, completedAt.UpdatedAt, st.UpdatedAt)

	assert.False(t, s.Complete("trk-3", "RC-other"), "first completion wins")
	st, _ = s.Get("trk-3")
	assert.Equal(t, "RC-3", st.CaseNumber)
}

func TestStore_EmptyCaseNumberIgnored(t *testing.T) {
	s := NewStore()
	s.MarkPending("trk-4")
	assert.False(t, s.Complete("trk-4", ""))
	st, _ := s.Get("trk-4")
	assert.Equal(t, models.StatusPending, st.Status)
}

func TestStore_NotFound(t *testing.T) {
	_, ok := NewStore().Get("nope")
	assert.False(t, ok)
}

func TestStore_ConcurrentSameKey(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.MarkPending("shared")
		}()
		go func(i int) {
			defer wg.Done()
			if s.Complete("shared", fmt.Sprintf("RC-%d", i)) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one completion takes effect")
	st, ok := s.Get("shared")
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, st.Status)
}

func TestStore_ConcurrentDistinctKeys(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("trk-%d", i)
			s.MarkPending(id)
			s.Complete(id, "RC-"+id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, s.Len())
	st, _ := s.Get("trk-42")
	assert.Equal(t, "RC-trk-42", st.CaseNumber)
}
