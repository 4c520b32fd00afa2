package models

import (
	"errors"
	"time"
)

// Participation is the sub-record for one identity registered in one event.
// Its presence in Event.Participants is the sole source of truth for
// "is this user registered".
type Participation struct {
	UserID      string `json:"userId" bson:"userId"`
	FirstName   string `json:"firstName" bson:"firstName"`
	LastName    string `json:"lastName" bson:"lastName"`
	Email       string `json:"email" bson:"email"`
	JoinedAt    int64  `json:"joinedAt" bson:"joinedAt"` // unix millis
	CheckedIn   bool   `json:"checkedIn,omitempty" bson:"checkedIn,omitempty"`
	Status      string `json:"status,omitempty" bson:"status,omitempty"` // "", StatusFinished, StatusDidNotAttend
	CompletedAt int64  `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	MonthKey    string `json:"monthKey,omitempty" bson:"monthKey,omitempty"`
}

const (
	StatusFinished     = "finished"
	StatusDidNotAttend = "did_not_attend"
)

type Event struct {
	ID             string                   `json:"id" bson:"id"` // UUID, immutable
	Name           string                   `json:"name" bson:"name"`
	Organization   string                   `json:"organization" bson:"organization"`
	Description    string                   `json:"description" bson:"description"`
	Instructions   string                   `json:"instructions" bson:"instructions"`
	Location       string                   `json:"location" bson:"location"`
	Latitude       *float64                 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude      *float64                 `json:"longitude,omitempty" bson:"longitude,omitempty"`
	Date           string                   `json:"date" bson:"date"` // YYYY-MM-DD
	Time           string                   `json:"time" bson:"time"`
	Type           string                   `json:"type" bson:"type"`
	MinAge         int                      `json:"minAge" bson:"minAge"`
	SpotsRemaining int                      `json:"spotsRemaining" bson:"spotsRemaining"`
	OrganizerName  string                   `json:"organizerName" bson:"organizerName"`
	OrganizerEmail string                   `json:"organizerEmail" bson:"organizerEmail"`
	OrganizerPhone string                   `json:"organizerPhone" bson:"organizerPhone"`
	FlyerURL       string                   `json:"flyerURL,omitempty" bson:"flyerURL,omitempty"`
	UserID         string                   `json:"userId" bson:"userId"` // creator
	CreatedAt      int64                    `json:"createdAt" bson:"createdAt"`
	Participants   map[string]Participation `json:"participants,omitempty" bson:"participants,omitempty"`
	Version        int64                    `json:"-" bson:"version"` // CAS token, never exposed
}

type User struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Password        string  `json:"-"`
	VerifyToken     string  `json:"-"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	PhotoURL        string  `json:"photoURL"`
	Description     string  `json:"description"`
	Organization    string  `json:"organization"`
	Verified        bool    `json:"verified"`
	VolunteerHours  float64 `json:"totalVolunteerHours"`
	Points          int     `json:"points"`
	PointsMonth     string  `json:"pointsMonth"` // YYYY-MM the balance applies to
	LoginStreak     int     `json:"loginStreak"`
	LastLoginDate   string  `json:"lastLoginDate"` // YYYY-MM-DD
}

type Post struct {
	ID         string          `json:"id" bson:"id"`
	Content    string          `json:"content" bson:"content"`
	AuthorName string          `json:"authorName" bson:"authorName"`
	UserID     string          `json:"userId" bson:"userId"`
	Timestamp  int64           `json:"timestamp" bson:"timestamp"`
	Likes      int             `json:"likes" bson:"likes"`
	LikedBy    map[string]bool `json:"likedBy,omitempty" bson:"likedBy,omitempty"`
	MediaURL   string          `json:"mediaURL,omitempty" bson:"mediaURL,omitempty"`
	MediaType  string          `json:"mediaType,omitempty" bson:"mediaType,omitempty"` // "image" or "video"
	Version    int64           `json:"-" bson:"version"`
}

type Challenge struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Time        string `json:"time" bson:"time"`
	Difficulty  string `json:"difficulty" bson:"difficulty"`
	Impact      string `json:"impact" bson:"impact"`
}

type ChallengeSet struct {
	MonthKey    string      `json:"monthKey" bson:"monthKey"`
	GeneratedAt int64       `json:"generatedAt" bson:"generatedAt"`
	Challenges  []Challenge `json:"challenges" bson:"challenges"`
}

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Photo  string `json:"photo"`
}

// Point deltas applied by the ledger. One place so the magnitudes stay in sync
// with the tests.
const (
	PointsEventCreated   = 300
	PointsEventDeleted   = -300
	PointsEventFinished  = 200
	PointsStreakDay      = 50
	PointsTriviaCorrect  = 10
	PointsDailyWordSolve = 25
)

// Errors surfaced by repositories; handlers map these to HTTP statuses.
var (
	ErrEventGone     = errors.New("event no longer exists")
	ErrEventFull     = errors.New("event has no spots remaining")
	ErrNotJoined     = errors.New("not a participant of this event")
	ErrAlreadyMarked = errors.New("attendance already marked")
	ErrUnauthorized  = errors.New("not authorized")
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("record changed concurrently, retries exhausted")
)

// MonthKey returns the calendar-month tag (YYYY-MM) used for the points
// ledger and completed-event counters.
func MonthKey(t time.Time) string { return t.Format("2006-01") }

// DateKey returns the calendar-day tag (YYYY-MM-DD) used for streaks and the
// daily word game.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

type EventRepository interface {
	GetAll() ([]Event, error)
	GetByID(id string) (Event, error)
	ListByOrganizer(userID string) ([]Event, error)
	ListJoined(userID string) ([]Event, error)
	Create(e *Event) error
	Update(e *Event) error
	Delete(id string) error

	// Roster + capacity mutations, each a single conditional update over the
	// whole event record.
	Join(eventID string, p Participation) (Event, error)
	Cancel(eventID, userID string) (Event, error)
	CheckIn(eventID, userID string) error
	MarkAttendance(eventID, userID, status string, now time.Time) (Participation, error)
}

type UserRepository interface {
	Create(u *User) error
	Verify(token string) error
	ValidateCredentials(email, plain string) (User, error)
	GetByID(id string) (User, error)
	UpdateProfile(id, description, organization, photoURL string) error
	AddHours(id string, hours float64) (float64, error)
	RemoveHours(id string, hours float64) (float64, error)

	// ApplyPointsDelta performs the lazy monthly reset, then increments the
	// balance atomically. The delta may be negative.
	ApplyPointsDelta(id string, delta int, now time.Time) error
	TouchLoginStreak(id string, now time.Time) (streak int, bonusAwarded bool, err error)
	IncrCompletedEvents(id, monthKey string, delta int) error
	Leaderboard() ([]LeaderboardEntry, error)
}

type PostRepository interface {
	List() ([]Post, error)
	GetByID(id string) (Post, error)
	Create(p *Post) error
	UpdateContent(id, userID, content string) error
	Delete(id, userID string) error
	ToggleLike(postID, userID string) (Post, error)
}

type ChallengeRepository interface {
	GetMonth(monthKey string) (ChallengeSet, error)
	SetMonth(set ChallengeSet) error
}
