package stats

import "github.com/verte-zerg/retype/internal/model"

// CharTrends builds, for every character seen in perSession, its accuracy in
// each session that contained it, in session order, smoothed over window.
func CharTrends(sessions []model.SessionAggregate, perSession map[int64]map[string]model.CharAggregate, window int) map[string][]float64 {
	raw := map[string][]float64{}
	for _, s := range sessions {
		for ch, agg := range perSession[s.SessionID] {
			if agg.Correct+agg.Incorrect == 0 {
				continue
			}
			raw[ch] = append(raw[ch], CharAccuracy(agg)*100)
		}
	}
	out := make(map[string][]float64, len(raw))
	for ch, values := range raw {
		out[ch] = MovingAverage(values, window)
	}
	return out
}
