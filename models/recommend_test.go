package models

import "testing"

func ev(id, typ, date, owner string, joined ...string) Event {
	e := Event{ID: id, Name: id, Type: typ, Date: date, UserID: owner, Participants: map[string]Participation{}}
	for _, uid := range joined {
		e.Participants[uid] = Participation{UserID: uid}
	}
	return e
}

func TestRecommend_PrefersFamiliarTypes(t *testing.T) {
	history := []Event{
		ev("h1", "environment", "2026-08-01", "other"),
		ev("h2", "environment", "2026-08-10", "other"),
		ev("h3", "education", "2026-08-12", "other"),
	}
	all := []Event{
		ev("tutoring", "education", "2026-09-20", "other"),
		ev("cleanup", "environment", "2026-09-25", "other"),
		ev("gala", "fundraising", "2026-09-18", "other"),
	}

	got := Recommend(all, history, "me", "2026-09-01", 5)
	if len(got) != 3 {
		t.Fatalf("got %d events", len(got))
	}
	if got[0].ID != "cleanup" || got[1].ID != "tutoring" || got[2].ID != "gala" {
		t.Fatalf("order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRecommend_ExcludesOwnJoinedAndPast(t *testing.T) {
	all := []Event{
		ev("mine", "environment", "2026-09-20", "me"),
		ev("joined", "environment", "2026-09-21", "other", "me"),
		ev("past", "environment", "2026-08-01", "other"),
		ev("open", "environment", "2026-09-22", "other"),
	}

	got := Recommend(all, nil, "me", "2026-09-01", 5)
	if len(got) != 1 || got[0].ID != "open" {
		t.Fatalf("got %+v", got)
	}
}

func TestRecommend_TieBreaksByDateAndCapsLimit(t *testing.T) {
	all := []Event{
		ev("late", "x", "2026-09-30", "other"),
		ev("early", "x", "2026-09-05", "other"),
		ev("mid", "x", "2026-09-15", "other"),
	}

	got := Recommend(all, nil, "me", "2026-09-01", 2)
	if len(got) != 2 {
		t.Fatalf("limit not applied: %d", len(got))
	}
	if got[0].ID != "early" || got[1].ID != "mid" {
		t.Fatalf("order: %s, %s", got[0].ID, got[1].ID)
	}
}
