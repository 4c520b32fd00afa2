package models

import (
	"errors"
	"testing"
	"time"
)

func newTestEvent(spots int) *Event {
	return &Event{
		ID:             "e-1",
		Name:           "Beach Cleanup",
		Date:           "2026-09-15",
		SpotsRemaining: spots,
		Participants:   map[string]Participation{},
	}
}

func part(uid string) Participation {
	return Participation{UserID: uid, FirstName: "Pat", LastName: "Lee", Email: uid + "@x.com", JoinedAt: 1}
}

/* ---------- join / cancel ---------- */

// joining twice with the same identity leaves the record untouched
func TestJoin_Idempotent(t *testing.T) {
	e := newTestEvent(5)

	if err := applyJoin(e, part("u1")); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if e.SpotsRemaining != 4 {
		t.Fatalf("spots=%d want 4", e.SpotsRemaining)
	}

	err := applyJoin(e, part("u1"))
	if !errors.Is(err, errUnchanged) {
		t.Fatalf("second join err=%v want unchanged", err)
	}
	if e.SpotsRemaining != 4 || len(e.Participants) != 1 {
		t.Fatalf("second join mutated record: spots=%d participants=%d", e.SpotsRemaining, len(e.Participants))
	}
}

// join then cancel restores both the counter and the roster
func TestJoinCancel_Inverse(t *testing.T) {
	e := newTestEvent(3)

	if err := applyJoin(e, part("u1")); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := applyCancel(e, "u1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if e.SpotsRemaining != 3 {
		t.Fatalf("spots=%d want 3", e.SpotsRemaining)
	}
	if _, ok := e.Participants["u1"]; ok {
		t.Fatalf("participant still present after cancel")
	}
}

// a full event rejects new joins; the counter never goes below zero
func TestJoin_FullRejected(t *testing.T) {
	e := newTestEvent(1)

	if err := applyJoin(e, part("u1")); err != nil {
		t.Fatalf("join: %v", err)
	}
	err := applyJoin(e, part("u2"))
	if !errors.Is(err, ErrEventFull) {
		t.Fatalf("err=%v want ErrEventFull", err)
	}
	if e.SpotsRemaining != 0 {
		t.Fatalf("spots=%d want 0", e.SpotsRemaining)
	}
	if _, ok := e.Participants["u2"]; ok {
		t.Fatalf("rejected join still landed on roster")
	}

	// an existing participant re-joining a full event is still a no-op, not full
	if err := applyJoin(e, part("u1")); !errors.Is(err, errUnchanged) {
		t.Fatalf("re-join on full event err=%v want unchanged", err)
	}
}

func TestCancel_NotJoined(t *testing.T) {
	e := newTestEvent(2)
	if err := applyCancel(e, "ghost"); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("err=%v want ErrNotJoined", err)
	}
	if e.SpotsRemaining != 2 {
		t.Fatalf("spots=%d want 2", e.SpotsRemaining)
	}
}

// cancel has no ceiling: a capacity edit between join and cancel may leave
// the counter above where it started
func TestCancel_NoCeiling(t *testing.T) {
	e := newTestEvent(0)
	e.Participants["u1"] = part("u1")

	e.SpotsRemaining = 10 // organizer raised capacity meanwhile
	if err := applyCancel(e, "u1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if e.SpotsRemaining != 11 {
		t.Fatalf("spots=%d want 11", e.SpotsRemaining)
	}
}

/* ---------- check-in / attendance ---------- */

func TestCheckIn(t *testing.T) {
	e := newTestEvent(5)
	e.Participants["u1"] = part("u1")

	if err := applyCheckIn(e, "u1"); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if !e.Participants["u1"].CheckedIn {
		t.Fatalf("not flagged checked in")
	}

	// repeat and unknown user are both silent no-ops
	if err := applyCheckIn(e, "u1"); !errors.Is(err, errUnchanged) {
		t.Fatalf("repeat err=%v want unchanged", err)
	}
	if err := applyCheckIn(e, "ghost"); !errors.Is(err, errUnchanged) {
		t.Fatalf("unknown err=%v want unchanged", err)
	}
}

func TestAttendance_OneTimeTransition(t *testing.T) {
	e := newTestEvent(5)
	e.Participants["u1"] = part("u1")
	now := time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC)

	if err := applyAttendance(e, "u1", StatusFinished, now); err != nil {
		t.Fatalf("mark: %v", err)
	}
	got := e.Participants["u1"]
	if got.Status != StatusFinished || got.MonthKey != "2026-09" || got.CompletedAt == 0 {
		t.Fatalf("stamp wrong: %+v", got)
	}

	// second mark, any status, is rejected
	if err := applyAttendance(e, "u1", StatusDidNotAttend, now); !errors.Is(err, ErrAlreadyMarked) {
		t.Fatalf("re-mark err=%v want ErrAlreadyMarked", err)
	}
	if err := applyAttendance(e, "ghost", StatusFinished, now); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("unknown err=%v want ErrNotJoined", err)
	}
}

/* ---------- likes ---------- */

func TestLikeToggle(t *testing.T) {
	p := &Post{ID: "p1"}

	applyLikeToggle(p, "u1")
	if p.Likes != 1 || !p.LikedBy["u1"] {
		t.Fatalf("after like: %+v", p)
	}
	applyLikeToggle(p, "u2")
	if p.Likes != 2 {
		t.Fatalf("likes=%d want 2", p.Likes)
	}
	applyLikeToggle(p, "u1")
	if p.Likes != 1 || p.LikedBy["u1"] {
		t.Fatalf("after unlike: %+v", p)
	}
}

/* ---------- points ledger ---------- */

// a stale month tag zeroes the balance before the delta lands
func TestPointsDelta_MonthlyReset(t *testing.T) {
	u := &User{Points: 500, PointsMonth: "2026-08"}
	sep := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	ApplyPointsDelta(u, 10, sep)
	if u.Points != 10 || u.PointsMonth != "2026-09" {
		t.Fatalf("after reset: points=%d month=%s", u.Points, u.PointsMonth)
	}

	// same month: plain accumulation, negatives included
	ApplyPointsDelta(u, 300, sep)
	ApplyPointsDelta(u, -300, sep)
	if u.Points != 10 {
		t.Fatalf("points=%d want 10", u.Points)
	}
}

// balances may go negative; there is no floor
func TestPointsDelta_NoFloor(t *testing.T) {
	u := &User{Points: 100, PointsMonth: "2026-09"}
	now := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	ApplyPointsDelta(u, PointsEventDeleted, now)
	if u.Points != -200 {
		t.Fatalf("points=%d want -200", u.Points)
	}
}

// fresh user, zero-value month tag: first delta lands on the current month
func TestPointsDelta_FreshUser(t *testing.T) {
	u := &User{}
	now := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	ApplyPointsDelta(u, PointsEventCreated, now)
	if u.Points != 300 || u.PointsMonth != "2026-09" {
		t.Fatalf("fresh user: %+v", u)
	}
}

/* ---------- login streak ---------- */

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastLogin  string
		streak     int
		wantStreak int
		wantBonus  bool
		wantChange bool
	}{
		{"same day counts once", "2026-09-10", 4, 4, false, false},
		{"consecutive day extends", "2026-09-09", 4, 5, true, true},
		{"second day earns bonus", "2026-09-09", 1, 2, true, true},
		{"gap resets to one", "2026-09-07", 9, 1, false, true},
		{"first login ever", "", 0, 1, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, bonus, changed := NextStreak(tc.lastLogin, tc.streak, now)
			if got != tc.wantStreak || bonus != tc.wantBonus || changed != tc.wantChange {
				t.Fatalf("got (%d,%v,%v) want (%d,%v,%v)",
					got, bonus, changed, tc.wantStreak, tc.wantBonus, tc.wantChange)
			}
		})
	}
}

// month boundary: streak survives the points reset
func TestStreakAcrossMonthBoundary(t *testing.T) {
	u := &User{Points: 800, PointsMonth: "2026-08", LoginStreak: 6, LastLoginDate: "2026-08-31"}
	sep1 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	next, bonus, changed := NextStreak(u.LastLoginDate, u.LoginStreak, sep1)
	if next != 7 || !bonus || !changed {
		t.Fatalf("streak across boundary: (%d,%v,%v)", next, bonus, changed)
	}

	ApplyPointsDelta(u, PointsStreakDay, sep1)
	if u.Points != PointsStreakDay || u.PointsMonth != "2026-09" {
		t.Fatalf("bonus landed on stale balance: %+v", u)
	}
}
