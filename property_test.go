package doublets_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/doublets"
	"github.com/hupe1980/doublets/testutil"
)

// TestRandomOperations replays random operation streams against the store
// and a reference model, checking the store after every step.
func TestRandomOperations(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42} {
		t.Run("", func(t *testing.T) {
			rng := testutil.NewRNG(seed)
			links := newStore(t, doublets.WithGrowthStep(8))
			model := testutil.NewModel()
			c := links.Constants()

			for i, op := range rng.Ops(1000, testutil.DefaultMix) {
				switch op.Kind {
				case testutil.OpCreate:
					id, err := links.Create()
					require.NoError(t, err)
					require.Equal(t, model.Create(), id, "op %d", i)

				case testutil.OpUpdate:
					id, ok := model.Pick(op.Link)
					if !ok {
						continue
					}
					s, tg := model.Endpoint(op.Source), model.Endpoint(op.Target)
					_, err := links.Update(id, s, tg)
					require.NoError(t, err, "op %d", i)
					model.Update(id, s, tg)

				case testutil.OpDelete:
					id, ok := model.Pick(op.Link)
					if !ok {
						continue
					}
					_, err := links.Delete(id)
					require.NoError(t, err, "op %d", i)
					model.Delete(id)
				}

				if i%100 == 0 {
					assertMatchesModel(t, links, model)
				}
			}

			assertMatchesModel(t, links, model)
			assert.Equal(t, uint64(model.Len()), links.Count(c.AnyQuery()))
		})
	}
}

func assertMatchesModel(t *testing.T, links *doublets.Links[uint64], model *testutil.Model) {
	t.Helper()
	c := links.Constants()

	report, err := links.Verify(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(model.Len()), report.Live)

	ids := func(q doublets.Query[uint64]) []uint64 {
		var out []uint64
		_, err := links.Each(q, func(l doublets.Link[uint64]) (doublets.Control, error) {
			out = append(out, l.ID)
			return doublets.Continue, nil
		})
		require.NoError(t, err)
		return out
	}

	require.Equal(t, model.Match(nil, nil), ids(c.AnyQuery()))

	for _, id := range model.IDs() {
		want, _ := model.Get(id)
		got, err := links.Get(id)
		require.NoError(t, err)
		require.Equal(t, doublets.Link[uint64]{ID: want.ID, Source: want.Source, Target: want.Target}, got)

		s, tg := want.Source, want.Target
		require.Equal(t, model.Match(&s, nil), ids(c.Query(c.Any, s, c.Any)), "source %d", s)
		require.Equal(t, model.Match(nil, &tg), ids(c.Query(c.Any, c.Any, tg)), "target %d", tg)
		require.Equal(t, model.Match(&s, &tg), ids(c.Query(c.Any, s, tg)), "pair %d -> %d", s, tg)
		require.Equal(t, uint64(len(model.Match(&s, nil))), links.Count(c.Query(c.Any, s, c.Any)))
		require.Equal(t, uint64(len(model.Match(&s, &tg))), links.Count(c.Query(c.Any, s, tg)))
	}
}

// TestCreateDeleteRestoresState checks that deleting a fresh link leaves
// counts and the next id unchanged.
func TestCreateDeleteRestoresState(t *testing.T) {
	links := newStore(t)
	c := links.Constants()
	rng := testutil.NewRNG(11)

	for range 200 {
		_, err := links.Create()
		require.NoError(t, err)
	}
	for range 100 {
		_, err := links.Delete(uint64(rng.Intn(200)) + 1)
		if err != nil {
			require.ErrorIs(t, err, doublets.ErrNotFound)
		}
	}

	before := links.Stats()
	count := links.Count(c.AnyQuery())

	id, err := links.Create()
	require.NoError(t, err)
	_, err = links.Delete(id)
	require.NoError(t, err)

	after := links.Stats()
	assert.Equal(t, count, links.Count(c.AnyQuery()))
	assert.Equal(t, before.Allocated, after.Allocated)
	assert.Equal(t, before.Free, after.Free)

	next, err := links.Create()
	require.NoError(t, err)
	assert.Equal(t, id, next)
}

// TestDeleteAllResetsIndices checks that a fully drained store indexes
// nothing and hands out every id again before growing.
func TestDeleteAllResetsIndices(t *testing.T) {
	links := newStore(t)
	c := links.Constants()

	for range 64 {
		_, err := links.Create()
		require.NoError(t, err)
	}
	for id := uint64(1); id <= 64; id++ {
		_, err := links.Update(id, 1, 64)
		require.NoError(t, err)
	}
	for id := uint64(1); id <= 64; id++ {
		_, err := links.Delete(id)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(0), links.Count(c.Query(c.Any, 1, c.Any)))
	assert.Equal(t, uint64(0), links.Count(c.Query(c.Any, c.Any, 64)))
	assert.Equal(t, uint64(0), links.CountAll())

	seen := make(map[uint64]bool)
	for range 64 {
		id, err := links.Create()
		require.NoError(t, err)
		assert.LessOrEqual(t, id, uint64(64))
		seen[id] = true
	}
	assert.Len(t, seen, 64)
	assert.Equal(t, uint64(64), links.Stats().Allocated)
}
