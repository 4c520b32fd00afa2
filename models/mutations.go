package models

import "time"

// Pure mutation functions for the event record. The Mongo repository applies
// these inside its conditional-update loop; tests exercise them directly.
//
// errUnchanged signals that the mutation is a no-op and no write is needed.

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

const errUnchanged = errSentinel("unchanged")

// applyJoin registers p on e. Idempotent per identity: an existing entry
// leaves the record untouched. A full event rejects the join rather than
// clamping the counter below zero.
func applyJoin(e *Event, p Participation) error {
	if e.Participants == nil {
		e.Participants = make(map[string]Participation)
	}
	if _, ok := e.Participants[p.UserID]; ok {
		return errUnchanged
	}
	if e.SpotsRemaining <= 0 {
		return ErrEventFull
	}
	e.SpotsRemaining--
	e.Participants[p.UserID] = p
	return nil
}

// applyCancel is the inverse of applyJoin: restores one spot and removes the
// participation entry. There is no ceiling on SpotsRemaining; a concurrent
// capacity edit can legitimately leave it above the original.
func applyCancel(e *Event, userID string) error {
	if _, ok := e.Participants[userID]; !ok {
		return ErrNotJoined
	}
	e.SpotsRemaining++
	delete(e.Participants, userID)
	return nil
}

// applyCheckIn flags the caller's own entry. Missing entry is a silent no-op;
// repeated check-ins are idempotent.
func applyCheckIn(e *Event, userID string) error {
	p, ok := e.Participants[userID]
	if !ok || p.CheckedIn {
		return errUnchanged
	}
	p.CheckedIn = true
	e.Participants[userID] = p
	return nil
}

// applyAttendance moves the entry's status from unset to a terminal value.
// The one-time transition guard prevents re-stamping (and the point re-award
// that would follow).
func applyAttendance(e *Event, userID, status string, now time.Time) error {
	p, ok := e.Participants[userID]
	if !ok {
		return ErrNotJoined
	}
	if p.Status != "" {
		return ErrAlreadyMarked
	}
	p.Status = status
	p.CompletedAt = now.UnixMilli()
	p.MonthKey = MonthKey(now)
	e.Participants[userID] = p
	return nil
}

// applyLikeToggle adds or removes userID's like and keeps the counter in step
// with the likedBy map.
func applyLikeToggle(p *Post, userID string) {
	if p.LikedBy == nil {
		p.LikedBy = make(map[string]bool)
	}
	if p.LikedBy[userID] {
		p.Likes--
		delete(p.LikedBy, userID)
	} else {
		p.Likes++
		p.LikedBy[userID] = true
	}
}

// ApplyPointsDelta collapses a signed delta into the monthly balance:
// reset-then-apply when the stored month tag is stale. No floor or ceiling.
// The SQL repository mirrors this with a guarded UPDATE pair; this form backs
// the in-memory fakes and the ledger tests.
func ApplyPointsDelta(u *User, delta int, now time.Time) {
	month := MonthKey(now)
	if u.PointsMonth != month {
		u.Points = 0
		u.PointsMonth = month
	}
	u.Points += delta
}

// NextStreak evaluates the login-streak state machine for one day.
// Returns the new streak, whether a +50 bonus applies, and whether anything
// changed (lastLogin == today means the day was already counted).
func NextStreak(lastLogin string, streak int, now time.Time) (newStreak int, bonus, changed bool) {
	today := DateKey(now)
	if lastLogin == today {
		return streak, false, false
	}
	if lastLogin == DateKey(now.AddDate(0, 0, -1)) {
		newStreak = streak + 1
		return newStreak, newStreak >= 2, true
	}
	return 1, false, true
}
