package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/swipekeys/internal/gesture"
)

func TestEventRepository_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	base := time.UnixMilli(1_700_000_000_000)
	events := []*Event{
		{Direction: gesture.Left, Key: "left", Mode: "live", DX: -0.4, DY: 0.01, FiredAt: base},
		{Direction: gesture.Up, Key: "up", Mode: "test", DX: 0.02, DY: -0.3, FiredAt: base.Add(time.Second)},
		{Direction: gesture.Left, Key: "a", Mode: "live", DX: -0.25, DY: 0, FiredAt: base.Add(2 * time.Second)},
	}
	for _, e := range events {
		require.NoError(t, repo.Create(e))
		assert.NotZero(t, e.ID)
	}

	all, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, events[2].ID, all[0].ID, "newest first")
	assert.Equal(t, events[0].ID, all[2].ID)

	first := all[2]
	assert.Equal(t, gesture.Left, first.Direction)
	assert.Equal(t, "left", first.Key)
	assert.Equal(t, "live", first.Mode)
	assert.InDelta(t, -0.4, first.DX, 1e-12)
	assert.True(t, first.FiredAt.Equal(base), "fired_at round-trips at millisecond precision")

	limited, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestEventRepository_Create_DefaultsTime(t *testing.T) {
	s := newTestStore(t)
	e := &Event{Direction: gesture.Down, Mode: "test"}

	require.NoError(t, s.Events().Create(e))
	assert.WithinDuration(t, time.Now(), e.FiredAt, 5*time.Second)
}

func TestEventRepository_Create_RejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	assert.Error(t, s.Events().Create(&Event{Direction: gesture.None, Mode: "test"}))
	assert.Error(t, s.Events().Create(&Event{Direction: gesture.Left, Mode: "dry-run"}))
}

func TestEventRepository_Counts(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	for _, d := range []gesture.Direction{gesture.Left, gesture.Left, gesture.Right} {
		require.NoError(t, repo.Create(&Event{Direction: d, Mode: "test"}))
	}

	counts, err := repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[gesture.Direction]int{
		gesture.Left:  2,
		gesture.Right: 1,
		gesture.Up:    0,
		gesture.Down:  0,
	}, counts)
}

func TestEventRepository_DeleteBefore(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	base := time.UnixMilli(1_700_000_000_000)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Create(&Event{Direction: gesture.Up, Mode: "test", FiredAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	n, err := repo.DeleteBefore(base.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repo.List(0)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
