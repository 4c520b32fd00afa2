package routes

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"volunteen/models"
)

/* ---------- in-memory repositories for handler tests ---------- */

type mockEventRepo struct {
	mu    sync.Mutex
	Items map[string]models.Event
}

func (m *mockEventRepo) GetAll() ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Event, 0, len(m.Items))
	for _, e := range m.Items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEventRepo) GetByID(id string) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[id]
	if !ok {
		return models.Event{}, models.ErrEventGone
	}
	return e, nil
}

func (m *mockEventRepo) ListByOrganizer(userID string) ([]models.Event, error) {
	all, _ := m.GetAll()
	var out []models.Event
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) ListJoined(userID string) ([]models.Event, error) {
	all, _ := m.GetAll()
	var out []models.Event
	for _, e := range all {
		if _, ok := e.Participants[userID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) Create(e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Participants == nil {
		e.Participants = map[string]models.Participation{}
	}
	m.Items[e.ID] = *e
	return nil
}

func (m *mockEventRepo) Update(e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.Items[e.ID]
	if !ok {
		return models.ErrEventGone
	}
	// same field set the real repo writes: editable attributes only, the
	// roster and bookkeeping stay put
	upd := old
	upd.Name = e.Name
	upd.Organization = e.Organization
	upd.Description = e.Description
	upd.Instructions = e.Instructions
	upd.Location = e.Location
	upd.Date = e.Date
	upd.Time = e.Time
	upd.Type = e.Type
	upd.MinAge = e.MinAge
	upd.SpotsRemaining = e.SpotsRemaining
	upd.OrganizerName = e.OrganizerName
	upd.OrganizerEmail = e.OrganizerEmail
	upd.OrganizerPhone = e.OrganizerPhone
	if e.FlyerURL != "" {
		upd.FlyerURL = e.FlyerURL
	}
	if e.Latitude != nil {
		upd.Latitude = e.Latitude
	}
	if e.Longitude != nil {
		upd.Longitude = e.Longitude
	}
	m.Items[e.ID] = upd
	return nil
}

func (m *mockEventRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Items[id]; !ok {
		return models.ErrEventGone
	}
	delete(m.Items, id)
	return nil
}

func (m *mockEventRepo) Join(eventID string, p models.Participation) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[eventID]
	if !ok {
		return models.Event{}, models.ErrEventGone
	}
	if e.Participants == nil {
		e.Participants = map[string]models.Participation{}
	}
	if _, ok := e.Participants[p.UserID]; ok {
		return e, nil
	}
	if e.SpotsRemaining <= 0 {
		return models.Event{}, models.ErrEventFull
	}
	e.SpotsRemaining--
	p.JoinedAt = time.Now().UnixMilli()
	e.Participants[p.UserID] = p
	m.Items[eventID] = e
	return e, nil
}

func (m *mockEventRepo) Cancel(eventID, userID string) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[eventID]
	if !ok {
		return models.Event{}, models.ErrEventGone
	}
	if _, ok := e.Participants[userID]; !ok {
		return models.Event{}, models.ErrNotJoined
	}
	e.SpotsRemaining++
	delete(e.Participants, userID)
	m.Items[eventID] = e
	return e, nil
}

func (m *mockEventRepo) CheckIn(eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[eventID]
	if !ok {
		return models.ErrEventGone
	}
	if p, ok := e.Participants[userID]; ok {
		p.CheckedIn = true
		e.Participants[userID] = p
		m.Items[eventID] = e
	}
	return nil
}

func (m *mockEventRepo) MarkAttendance(eventID, userID, status string, now time.Time) (models.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[eventID]
	if !ok {
		return models.Participation{}, models.ErrEventGone
	}
	p, ok := e.Participants[userID]
	if !ok {
		return models.Participation{}, models.ErrNotJoined
	}
	if p.Status != "" {
		return models.Participation{}, models.ErrAlreadyMarked
	}
	p.Status = status
	p.CompletedAt = now.UnixMilli()
	p.MonthKey = models.MonthKey(now)
	e.Participants[userID] = p
	m.Items[eventID] = e
	return p, nil
}

type mockUserRepo struct {
	mu        sync.Mutex
	Users     map[string]models.User
	Completed map[string]int // userID|monthKey -> count
	nextID    int
}

func (m *mockUserRepo) Create(u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		m.nextID++
		u.ID = "u-" + strconv.Itoa(m.nextID)
	}
	u.VerifyToken = "token-" + u.ID
	m.Users[u.ID] = *u
	return nil
}

func (m *mockUserRepo) Verify(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.Users {
		if u.VerifyToken == token {
			u.Verified = true
			u.VerifyToken = ""
			m.Users[id] = u
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *mockUserRepo) ValidateCredentials(email, plain string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email && u.Password == plain {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (m *mockUserRepo) GetByID(id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) UpdateProfile(id, description, organization, photoURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Description, u.Organization, u.PhotoURL = description, organization, photoURL
	m.Users[id] = u
	return nil
}

func (m *mockUserRepo) AddHours(id string, hours float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	u.VolunteerHours += hours
	m.Users[id] = u
	return u.VolunteerHours, nil
}

func (m *mockUserRepo) RemoveHours(id string, hours float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	u.VolunteerHours -= hours
	if u.VolunteerHours < 0 {
		u.VolunteerHours = 0
	}
	m.Users[id] = u
	return u.VolunteerHours, nil
}

func (m *mockUserRepo) ApplyPointsDelta(id string, delta int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return models.ErrNotFound
	}
	models.ApplyPointsDelta(&u, delta, now)
	m.Users[id] = u
	return nil
}

func (m *mockUserRepo) TouchLoginStreak(id string, now time.Time) (int, bool, error) {
	m.mu.Lock()
	u, ok := m.Users[id]
	if !ok {
		m.mu.Unlock()
		return 0, false, models.ErrNotFound
	}
	next, bonus, changed := models.NextStreak(u.LastLoginDate, u.LoginStreak, now)
	if !changed {
		m.mu.Unlock()
		return u.LoginStreak, false, nil
	}
	u.LoginStreak = next
	u.LastLoginDate = models.DateKey(now)
	m.Users[id] = u
	m.mu.Unlock()

	if bonus {
		if err := m.ApplyPointsDelta(id, models.PointsStreakDay, now); err != nil {
			return next, false, err
		}
	}
	return next, bonus, nil
}

func (m *mockUserRepo) IncrCompletedEvents(id, monthKey string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed[id+"|"+monthKey] += delta
	return nil
}

func (m *mockUserRepo) Leaderboard() ([]models.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LeaderboardEntry
	for _, u := range m.Users {
		if u.Points > 0 {
			out = append(out, models.LeaderboardEntry{
				Name:   u.FirstName + " " + u.LastName,
				Points: u.Points,
				Photo:  u.PhotoURL,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

type mockPostRepo struct {
	mu    sync.Mutex
	Items map[string]models.Post
}

func (m *mockPostRepo) List() ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Post, 0, len(m.Items))
	for _, p := range m.Items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

func (m *mockPostRepo) GetByID(id string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Items[id]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	return p, nil
}

func (m *mockPostRepo) Create(p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[p.ID] = *p
	return nil
}

func (m *mockPostRepo) UpdateContent(id, userID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Items[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.UserID != userID {
		return models.ErrUnauthorized
	}
	p.Content = content
	m.Items[id] = p
	return nil
}

func (m *mockPostRepo) Delete(id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Items[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.UserID != userID {
		return models.ErrUnauthorized
	}
	delete(m.Items, id)
	return nil
}

func (m *mockPostRepo) ToggleLike(postID, userID string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Items[postID]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	if p.LikedBy == nil {
		p.LikedBy = map[string]bool{}
	}
	if p.LikedBy[userID] {
		p.Likes--
		delete(p.LikedBy, userID)
	} else {
		p.Likes++
		p.LikedBy[userID] = true
	}
	m.Items[postID] = p
	return p, nil
}

type mockChallengeRepo struct {
	mu   sync.Mutex
	Sets map[string]models.ChallengeSet
}

func (m *mockChallengeRepo) GetMonth(monthKey string) (models.ChallengeSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.Sets[monthKey]
	if !ok {
		return models.ChallengeSet{}, models.ErrNotFound
	}
	return set, nil
}

func (m *mockChallengeRepo) SetMonth(set models.ChallengeSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets[set.MonthKey] = set
	return nil
}

/* ---------- scripted text backend ---------- */

type scriptedAI struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func (f *scriptedAI) Generate(userText, systemMessage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return "ok", nil
	}
	r := f.replies[f.calls%len(f.replies)]
	f.calls++
	return r, nil
}
