package stats

import (
	"context"

	"github.com/verte-zerg/retype/internal/model"
)

const (
	// topCharCount is how many of the most practiced characters a report lists.
	topCharCount = 5
	// trendWindow smooths per-character accuracy across sessions.
	trendWindow = 3
)

// Source is the slice of the store a report reads from.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error)
	ListCharStatsBySession(ctx context.Context, sessionIDs []int64) (map[int64]map[string]model.CharAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Summary  Summary
	CharAggs []model.CharAggregate
	TopChars []string
	// CharTrends holds the smoothed accuracy (0-100) of each character over
	// the sessions it appeared in, oldest first.
	CharTrends map[string][]float64
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	ids := sessionIDs(sessions)
	charAggs, err := src.ListCharAggregatesForSessions(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	perSession, err := src.ListCharStatsBySession(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions:   sessions,
		Summary:    Summarize(sessions),
		CharAggs:   charAggs,
		TopChars:   TopCharsByFrequency(charAggs, topCharCount),
		CharTrends: CharTrends(sessions, perSession, trendWindow),
	}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
