package models

import "sort"

// Recommend picks up to limit upcoming events for userID, scored by how often
// the event's type appears in the user's own history (organized + joined),
// earliest date breaking score ties. The user's own and already-joined events
// are excluded.
func Recommend(all, history []Event, userID, today string, limit int) []Event {
	typeFreq := make(map[string]int)
	for _, ev := range history {
		if ev.Type != "" {
			typeFreq[ev.Type]++
		}
	}

	type scored struct {
		ev    Event
		score int
	}
	var candidates []scored
	for _, ev := range all {
		if ev.UserID == userID {
			continue
		}
		if _, joined := ev.Participants[userID]; joined {
			continue
		}
		if ev.Date < today {
			continue
		}
		candidates = append(candidates, scored{ev, typeFreq[ev.Type]})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].ev.Date < candidates[j].ev.Date
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Event, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.ev)
	}
	return out
}
