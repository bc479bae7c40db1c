package editsession

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginSetCancelRestoresPersisted(t *testing.T) {
	persisted := map[string]int{"vis1": 2, "vis2": 3}
	s := New(persisted)
	require.NoError(t, s.Begin())
	require.NoError(t, s.Set("vis1", 4))
	require.NoError(t, s.Set("vis9", 1))
	assert.True(t, s.Dirty())
	assert.Equal(t, map[string]int{"vis1": 4, "vis2": 3, "vis9": 1}, s.Active())
	assert.Equal(t, persisted, s.Responses(SourcePersisted))

	require.NoError(t, s.Cancel())
	assert.Equal(t, Viewing, s.State())
	assert.Equal(t, persisted, s.Active())
	assert.Equal(t, persisted, s.Responses(SourceDraft))
	assert.False(t, s.Dirty())
}

func TestSetOnlyTouchesOneKey(t *testing.T) {
	s := New(map[string]int{"a": 1, "b": 2})
	require.NoError(t, s.Begin())
	require.NoError(t, s.Set("a", 3))
	assert.Equal(t, map[string]int{"a": 3, "b": 2}, s.Responses(SourceDraft))
}

func TestSaveSuccessRefreshesFromSource(t *testing.T) {
	s := New(map[string]int{"a": 1})
	require.NoError(t, s.Begin())
	require.NoError(t, s.Set("a", 4))

	var stored map[string]int
	err := s.Save(context.Background(), func(_ context.Context, draft map[string]int) (map[string]int, error) {
		stored = draft
		return map[string]int{"a": 4, "server": 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 4}, stored)
	assert.Equal(t, Viewing, s.State())
	assert.Equal(t, map[string]int{"a": 4, "server": 2}, s.Active())
	assert.False(t, s.Dirty())
}

func TestSaveFailureKeepsBuffer(t *testing.T) {
	s := New(map[string]int{"a": 1})
	require.NoError(t, s.Begin())
	require.NoError(t, s.Set("a", 4))

	boom := errors.New("db down")
	err := s.Save(context.Background(), func(context.Context, map[string]int) (map[string]int, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Editing, s.State())
	assert.Equal(t, map[string]int{"a": 4}, s.Responses(SourceDraft))
	assert.Equal(t, map[string]int{"a": 1}, s.Responses(SourcePersisted))
}

func TestStateIsSavingDuringSave(t *testing.T) {
	s := New(map[string]int{})
	require.NoError(t, s.Begin())
	err := s.Save(context.Background(), func(_ context.Context, draft map[string]int) (map[string]int, error) {
		assert.Equal(t, Saving, s.State())
		assert.ErrorIs(t, s.Set("x", 1), ErrInvalidTransition)
		return draft, nil
	})
	require.NoError(t, err)
}

func TestInvalidTransitions(t *testing.T) {
	s := New[int](nil)
	assert.ErrorIs(t, s.Set("a", 1), ErrInvalidTransition)
	assert.ErrorIs(t, s.Cancel(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Save(context.Background(), nil), ErrInvalidTransition)

	require.NoError(t, s.Begin())
	assert.ErrorIs(t, s.Begin(), ErrInvalidTransition)
}

func TestBufferIsIsolatedFromCaller(t *testing.T) {
	persisted := map[string]string{"q": "Yes"}
	s := New(persisted)
	persisted["q"] = "No"
	require.NoError(t, s.Begin())

	active := s.Active()
	active["q"] = "mutated"
	assert.Equal(t, map[string]string{"q": "Yes"}, s.Active())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New(map[string]int{"a": 1})
	require.NoError(t, s.Begin())
	require.NoError(t, s.Set("a", 3))

	restored, err := Restore(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, Editing, restored.State())
	assert.Equal(t, map[string]int{"a": 3}, restored.Responses(SourceDraft))
	assert.Equal(t, map[string]int{"a": 1}, restored.Responses(SourcePersisted))

	_, err = Restore(Snapshot[int]{State: "bogus"})
	assert.Error(t, err)
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourcePersisted, src)
	src, err = ParseSource("draft")
	require.NoError(t, err)
	assert.Equal(t, SourceDraft, src)
	_, err = ParseSource("edited")
	assert.Error(t, err)
}
