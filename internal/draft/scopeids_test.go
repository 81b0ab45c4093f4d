package draft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/draft/internal/value"
)

func scopeIDs(stats []TransactionStats) []int64 {
	ids := make([]int64, len(stats))
	for i, s := range stats {
		ids[i] = s.Scope
	}
	return ids
}

func TestScopeIDs_StartAfter(t *testing.T) {
	c := NewScopeIDs(7)
	assert.Equal(t, int64(7), c.Last())
	assert.Equal(t, int64(8), c.next())
	assert.Equal(t, int64(8), c.Last())
}

func TestScopeIDs_NestedScopesNumberedInEntryOrder(t *testing.T) {
	obs := &recordingObserver{}
	ids := NewScopeIDs(0)
	e := New(WithObserver(obs), WithScopeIDs(ids))

	_, err := e.Produce(value.MustParse(`{"a":{"b":1}}`), func(d *Draft) error {
		inner, err := e.Produce(value.MustParse(`{"n":1}`), func(d *Draft) error {
			return d.Set("n", value.Int(2))
		})
		if err != nil {
			return err
		}
		return d.Set("inner", inner)
	})
	require.NoError(t, err)

	_, err = e.Produce(value.MustParse(`{}`), func(*Draft) error { return nil })
	require.NoError(t, err)

	// The nested scope closes before its parent but was entered after it.
	assert.Equal(t, []int64{2, 1, 3}, scopeIDs(obs.stats))
	assert.Equal(t, int64(3), ids.Last())
}

func TestScopeIDs_FailedScopesConsumeIDs(t *testing.T) {
	obs := &recordingObserver{}
	e := New(WithObserver(obs))

	_, err := e.Produce(value.MustParse(`{}`), func(*Draft) error { return errors.New("abort") })
	require.Error(t, err)
	_, err = e.Produce(value.MustParse(`{}`), func(*Draft) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, scopeIDs(obs.stats))
	assert.Equal(t, OutcomeRevoked, obs.stats[0].Outcome)
}

func TestScopeIDs_PerEngine(t *testing.T) {
	first, second := &recordingObserver{}, &recordingObserver{}
	a := New(WithObserver(first))
	b := New(WithObserver(second))

	for range 2 {
		_, err := a.Produce(value.MustParse(`{}`), func(*Draft) error { return nil })
		require.NoError(t, err)
	}
	_, err := b.Produce(value.MustParse(`{}`), func(*Draft) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, scopeIDs(first.stats))
	assert.Equal(t, []int64{1}, scopeIDs(second.stats))
}
