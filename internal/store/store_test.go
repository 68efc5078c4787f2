package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/retype/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "retype.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertSession(t *testing.T, st *Store, lang string, end time.Time, chars []model.CharStats) int64 {
	t.Helper()
	stats := model.SessionStats{
		StartedAt:         end.Add(-30 * time.Second),
		EndedAt:           end,
		Lang:              lang,
		Source:            "generated",
		TextLen:           50,
		WPM:               200,
		Accuracy:          96,
		Errors:            2,
		Progress:          100,
		CorrectNonSpace:   40,
		IncorrectNonSpace: 2,
		DurationMs:        30000,
	}
	id, err := st.InsertSession(context.Background(), stats, chars)
	require.NoError(t, err)
	return id
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	base := time.Unix(1700000000, 0).UTC()
	first := insertSession(t, st, "en", base, nil)
	second := insertSession(t, st, "de", base.Add(time.Minute), nil)
	third := insertSession(t, st, "en", base.Add(2*time.Minute), nil)

	all, err := st.ListSessions(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{first, second, third}, []int64{all[0].SessionID, all[1].SessionID, all[2].SessionID})
	assert.NotEmpty(t, all[0].UUID)
	assert.NotEqual(t, all[0].UUID, all[1].UUID)
	assert.Equal(t, 200, all[0].WPM)
	assert.Equal(t, 96, all[0].Accuracy)
	assert.Equal(t, "generated", all[0].Source)
	assert.True(t, all[0].EndedAt.Equal(base))

	en, err := st.ListSessions(context.Background(), model.StatsConfig{Lang: "en", Last: 1})
	require.NoError(t, err)
	require.Len(t, en, 1)
	assert.Equal(t, third, en[0].SessionID)

	since := base.Add(30 * time.Second)
	recent, err := st.ListSessions(context.Background(), model.StatsConfig{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestCharAggregates(t *testing.T) {
	st := openTestStore(t)
	base := time.Unix(1700000000, 0).UTC()
	a := insertSession(t, st, "en", base, []model.CharStats{
		{Char: "a", Correct: 5, Incorrect: 1, LatencySumMs: 500, LatencyCount: 5},
		{Char: "b", Correct: 2},
	})
	b := insertSession(t, st, "en", base.Add(time.Minute), []model.CharStats{
		{Char: "a", Correct: 3, Incorrect: 2, LatencySumMs: 300, LatencyCount: 3},
	})

	aggs, err := st.ListCharAggregatesForSessions(context.Background(), []int64{a, b})
	require.NoError(t, err)
	byChar := map[string]model.CharAggregate{}
	for _, agg := range aggs {
		byChar[agg.Char] = agg
	}
	assert.Equal(t, model.CharAggregate{Char: "a", Correct: 8, Incorrect: 3, LatencySumMs: 800, LatencyCount: 8}, byChar["a"])
	assert.Equal(t, 2, byChar["b"].Correct)

	perSession, err := st.ListCharStatsBySession(context.Background(), []int64{a, b})
	require.NoError(t, err)
	require.Len(t, perSession, 2)
	assert.Equal(t, 2, perSession[b]["a"].Incorrect)
	assert.NotContains(t, perSession[b], "b")

	weak, err := st.GetWeakChars(context.Background(), 1, "en")
	require.NoError(t, err)
	require.Len(t, weak, 1)
	assert.Equal(t, "a", weak[0].Char)
	assert.Equal(t, 2, weak[0].Incorrect)

	none, err := st.GetWeakChars(context.Background(), 0, "en")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInsertSessionKeepsGivenID(t *testing.T) {
	st := openTestStore(t)
	_, err := st.InsertSession(context.Background(), model.SessionStats{
		ID:        "fixed-id",
		StartedAt: time.Unix(0, 0),
		EndedAt:   time.Unix(10, 0),
	}, nil)
	require.NoError(t, err)
	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "fixed-id", sessions[0].UUID)
}
